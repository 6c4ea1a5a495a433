package containers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/process"
	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/process/processtest"
)

const fedoraPipeline = "pkexec docker ps -a --format {{.Names}} | grep -F -x -- fedora | wc -l"

func TestCounterStagesDefault(t *testing.T) {
	c := NewCounter(processtest.New(), DefaultOptions())

	stages := c.Stages("fedora")
	require.Len(t, stages, 3)
	assert.Equal(t, fedoraPipeline, processtest.Line(stages...))
	assert.Equal(t, []int{1}, stages[1].OKExitCodes)
}

func TestCounterStagesLegacy(t *testing.T) {
	opts := DefaultOptions()
	opts.Source = SourceImages
	opts.Match = MatchSubstring
	c := NewCounter(processtest.New(), opts)

	assert.Equal(t, "pkexec docker images | grep -F -- fedora | wc -l", processtest.Line(c.Stages("fedora")...))
}

func TestCounterStagesImagesExact(t *testing.T) {
	opts := DefaultOptions()
	opts.Source = SourceImages
	c := NewCounter(processtest.New(), opts)

	assert.Equal(t,
		"pkexec docker images --format {{.Repository}} | grep -F -x -- fedora | wc -l",
		processtest.Line(c.Stages("fedora")...))
}

func TestCountImagesExactResumes(t *testing.T) {
	opts := DefaultOptions()
	opts.Source = SourceImages
	runner := processtest.New().On(
		"pkexec docker images --format {{.Repository}} | grep -F -x -- fedora | wc -l",
		processtest.Response{Output: "1\n"},
	)
	c := NewCounter(runner, opts)

	n, err := c.Count(context.Background(), "fedora")
	require.NoError(t, err)
	assert.Equal(t, ActionResume, Decide("fedora", n).Action)
}

func TestCountIsRepeatable(t *testing.T) {
	runner := processtest.New().On(fedoraPipeline, processtest.Response{Output: "3\n"})
	c := NewCounter(runner, DefaultOptions())

	first, err := c.Count(context.Background(), "fedora")
	require.NoError(t, err)
	second, err := c.Count(context.Background(), "fedora")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 3, second)
	calls := runner.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, calls[0], calls[1])
	assert.Equal(t, c.Stages("fedora"), c.Stages("fedora"))
}

func TestCounterStagesUnelevated(t *testing.T) {
	opts := DefaultOptions()
	opts.ListElevate = ""
	opts.Tool = "podman"
	c := NewCounter(processtest.New(), opts)

	assert.Equal(t, "podman ps -a --format {{.Names}} | grep -F -x -- fedora | wc -l", processtest.Line(c.Stages("fedora")...))
}

func TestCount(t *testing.T) {
	runner := processtest.New().On(fedoraPipeline, processtest.Response{Output: "      2\n"})
	c := NewCounter(runner, DefaultOptions())

	n, err := c.Count(context.Background(), "Fedora")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{fedoraPipeline}, runner.Calls())
}

func TestCountZero(t *testing.T) {
	runner := processtest.New().On(fedoraPipeline, processtest.Response{Output: "0\n"})
	c := NewCounter(runner, DefaultOptions())

	n, err := c.Count(context.Background(), "fedora")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCountUnparseable(t *testing.T) {
	for _, out := range []string{"", "   \n", "lots\n", "-3\n"} {
		runner := processtest.New().On(fedoraPipeline, processtest.Response{Output: out})
		c := NewCounter(runner, DefaultOptions())

		_, err := c.Count(context.Background(), "fedora")
		assert.ErrorIs(t, err, ErrCounter, "output %q", out)
		assert.ErrorIs(t, err, process.ErrDecode, "output %q", out)
	}
}

func TestCountStageFailure(t *testing.T) {
	runner := processtest.New().On(fedoraPipeline, processtest.Response{
		Err: processtest.ExitError("pkexec", 126, "Not authorized"),
	})
	c := NewCounter(runner, DefaultOptions())

	_, err := c.Count(context.Background(), "fedora")
	assert.ErrorIs(t, err, ErrCounter)
	assert.ErrorIs(t, err, process.ErrExit)
}

func TestCountInvalidName(t *testing.T) {
	runner := processtest.New()
	c := NewCounter(runner, DefaultOptions())

	for _, name := range []string{"", "  ", "-rm", "a b", "ubuntu;reboot"} {
		_, err := c.Count(context.Background(), name)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
	assert.Empty(t, runner.Calls())
}

func TestParseCount(t *testing.T) {
	n, err := ParseCount(" 14\n")
	require.NoError(t, err)
	assert.Equal(t, 14, n)
}

func TestNormalize(t *testing.T) {
	n, err := Normalize("  Ubuntu ")
	require.NoError(t, err)
	assert.Equal(t, "ubuntu", n)

	n, err = Normalize("my_app.v2-dev")
	require.NoError(t, err)
	assert.Equal(t, "my_app.v2-dev", n)
}
