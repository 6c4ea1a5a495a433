package containers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/process/processtest"
)

type fixedCounter struct {
	count int
	err   error
	names []string
}

func (c *fixedCounter) Count(_ context.Context, name string) (int, error) {
	c.names = append(c.names, name)
	return c.count, c.err
}

func TestDecide(t *testing.T) {
	assert.Equal(t, ActionCreateAndRun, Decide("fedora", 0).Action)
	assert.Equal(t, ActionResume, Decide("fedora", 1).Action)
	assert.Equal(t, ActionResume, Decide("fedora", 2).Action)
	assert.Equal(t, 2, Decide("fedora", 2).Count)
}

func TestResolveCreatesWhenNoInstance(t *testing.T) {
	runner := processtest.New()
	counter := &fixedCounter{count: 0}
	r := NewResolver(counter, NewLauncher(runner, nil, DefaultOptions(), zaptest.NewLogger(t)), zaptest.NewLogger(t))

	launch, err := r.Resolve(context.Background(), "Fedora", ModeTerminal)
	require.NoError(t, err)

	assert.Equal(t, []string{"fedora"}, counter.names)
	assert.Equal(t, ActionCreateAndRun, launch.Action)
	started := runner.Started()
	require.Len(t, started, 1)
	assert.Equal(t,
		"kitty sudo docker run --name fedora -h 10-slib -e LANG=C.UTF-8 -it fedora /bin/bash -l",
		started[0].String())
}

func TestResolveResumesExistingInstance(t *testing.T) {
	runner := processtest.New()
	r := NewResolver(&fixedCounter{count: 2}, NewLauncher(runner, nil, DefaultOptions(), zaptest.NewLogger(t)), zaptest.NewLogger(t))

	launch, err := r.Resolve(context.Background(), "fedora", ModeTerminal)
	require.NoError(t, err)

	assert.Equal(t, ActionResume, launch.Action)
	assert.Equal(t, 2, launch.Count)
	started := runner.Started()
	require.Len(t, started, 1)
	assert.Equal(t, "kitty sudo docker start fedora -i", started[0].String())
	for _, call := range runner.Calls() {
		assert.NotContains(t, call, " run ")
	}
}

func TestResolveCounterFailureAbortsLaunch(t *testing.T) {
	runner := processtest.New()
	r := NewResolver(&fixedCounter{err: ErrCounter}, NewLauncher(runner, nil, DefaultOptions(), zaptest.NewLogger(t)), zaptest.NewLogger(t))

	_, err := r.Resolve(context.Background(), "fedora", ModeTerminal)
	assert.ErrorIs(t, err, ErrCounter)
	assert.Empty(t, runner.Started())
}

func TestResolveLaunchFailure(t *testing.T) {
	runner := processtest.New().FailStart(errors.New("kitty: not found"))
	r := NewResolver(&fixedCounter{}, NewLauncher(runner, nil, DefaultOptions(), zaptest.NewLogger(t)), zaptest.NewLogger(t))

	_, err := r.Resolve(context.Background(), "fedora", ModeTerminal)
	assert.ErrorIs(t, err, ErrLaunch)
	assert.Contains(t, err.Error(), "kitty: not found")
}

func TestResolveRejectsBadInput(t *testing.T) {
	counter := &fixedCounter{}
	r := NewResolver(counter, NewLauncher(processtest.New(), nil, DefaultOptions(), zaptest.NewLogger(t)), zaptest.NewLogger(t))

	_, err := r.Resolve(context.Background(), "fedora", Mode("window"))
	assert.Error(t, err)

	_, err = r.Resolve(context.Background(), "--privileged", ModeTerminal)
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.Empty(t, counter.names)
}

func TestDecideDoesNotLaunch(t *testing.T) {
	runner := processtest.New()
	r := NewResolver(&fixedCounter{count: 1}, NewLauncher(runner, nil, DefaultOptions(), zaptest.NewLogger(t)), zaptest.NewLogger(t))

	d, err := r.Decide(context.Background(), "Debian")
	require.NoError(t, err)
	assert.Equal(t, Decision{Action: ActionResume, Name: "debian", Count: 1}, d)
	assert.Empty(t, runner.Started())
}
