package containers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/containers"
	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/containers/presets"
	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/process/processtest"
)

const ubuntuCount = "pkexec docker ps -a --format {{.Names}} | grep -F -x -- ubuntu | wc -l"

func newTestProvider(t *testing.T, runner *processtest.Runner) *Provider {
	logger := zaptest.NewLogger(t)
	opts := containers.DefaultOptions()
	resolver := containers.NewResolver(
		containers.NewCounter(runner, opts),
		containers.NewLauncher(runner, nil, opts, logger),
		logger,
	)
	return NewProvider(resolver, presets.Defaults(), "")
}

func TestDefinition(t *testing.T) {
	def := newTestProvider(t, processtest.New()).Definition()

	assert.Equal(t, "containers", def.ID)
	assert.Len(t, def.Tools, 4)
}

func TestPresetsTool(t *testing.T) {
	p := newTestProvider(t, processtest.New())

	result, err := p.Execute(context.Background(), "containers.presets", nil, nil)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, 3, result.Data["count"])
}

func TestCountTool(t *testing.T) {
	runner := processtest.New().On(ubuntuCount, processtest.Response{Output: "1\n"})
	p := newTestProvider(t, runner)

	result, err := p.Execute(context.Background(), "containers.count", map[string]interface{}{"name": "Ubuntu"}, nil)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, 1, result.Data["count"])
}

func TestDecideTool(t *testing.T) {
	runner := processtest.New().On(ubuntuCount, processtest.Response{Output: "0\n"})
	p := newTestProvider(t, runner)

	result, err := p.Execute(context.Background(), "containers.decide", map[string]interface{}{"name": "ubuntu"}, nil)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, containers.ActionCreateAndRun, result.Data["action"])
	assert.Empty(t, runner.Started())
}

func TestLaunchTool(t *testing.T) {
	runner := processtest.New().On(ubuntuCount, processtest.Response{Output: "3\n"})
	p := newTestProvider(t, runner)

	result, err := p.Execute(context.Background(), "containers.launch", map[string]interface{}{"name": "ubuntu"}, nil)
	require.NoError(t, err)
	require.True(t, result.Success)

	launch := result.Data["launch"].(*containers.Launch)
	assert.Equal(t, containers.ActionResume, launch.Action)
	assert.Equal(t, containers.ModeTerminal, launch.Mode)
	require.Len(t, runner.Started(), 1)
	assert.Equal(t, "kitty sudo docker start ubuntu -i", runner.Started()[0].String())
}

func TestLaunchToolFailures(t *testing.T) {
	p := newTestProvider(t, processtest.New())

	result, err := p.Execute(context.Background(), "containers.launch", map[string]interface{}{}, nil)
	require.NoError(t, err)
	assert.False(t, result.Success)

	result, err = p.Execute(context.Background(), "containers.launch", map[string]interface{}{"name": "ubuntu"}, nil)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, *result.Error, "container instance count failed")

	result, err = p.Execute(context.Background(), "containers.launch", map[string]interface{}{"name": "ubuntu", "mode": "window"}, nil)
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestUnknownTool(t *testing.T) {
	p := newTestProvider(t, processtest.New())

	_, err := p.Execute(context.Background(), "containers.remove", nil, nil)
	assert.Error(t, err)
}
