package containers

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/process"
)

// TestCountExactMatchWithRealTools stands in for the container tool with
// printf so the grep and wc stages run for real.
func TestCountExactMatchWithRealTools(t *testing.T) {
	for _, tool := range []string{"printf", "grep", "wc"} {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%s not available", tool)
		}
	}

	runner := process.NewExec(zaptest.NewLogger(t), 10*time.Second)
	listing := "fedora-dev\\nfedora\\nubuntu\\nmyfedora\\n"

	tests := []struct {
		match Match
		want  int
	}{
		{MatchExact, 1},
		{MatchSubstring, 3},
	}
	for _, tt := range tests {
		t.Run(string(tt.match), func(t *testing.T) {
			c := &Counter{runner: runner, opts: Options{Match: tt.match}}
			stages := c.Stages("fedora")
			stages[0] = process.Command{Name: "printf", Args: []string{listing}}

			out, err := runner.Pipeline(context.Background(), stages...)
			require.NoError(t, err)
			n, err := ParseCount(out)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}

	t.Run("no match", func(t *testing.T) {
		c := &Counter{runner: runner, opts: Options{Match: MatchExact}}
		stages := c.Stages("debian")
		stages[0] = process.Command{Name: "printf", Args: []string{listing}}

		out, err := runner.Pipeline(context.Background(), stages...)
		require.NoError(t, err)
		n, err := ParseCount(out)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

// TestCountImagesWithRealTools feeds a repository-only image listing, the
// shape produced by images --format {{.Repository}}, through exact matching.
func TestCountImagesWithRealTools(t *testing.T) {
	for _, tool := range []string{"printf", "grep", "wc"} {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%s not available", tool)
		}
	}

	runner := process.NewExec(zaptest.NewLogger(t), 10*time.Second)
	c := &Counter{runner: runner, opts: Options{Source: SourceImages, Match: MatchExact}}
	stages := c.Stages("fedora")
	require.Equal(t, []string{"images", "--format", "{{.Repository}}"}, stages[0].Args)
	stages[0] = process.Command{Name: "printf", Args: []string{"fedora\\nfedora-dev\\nubuntu\\n"}}

	out, err := runner.Pipeline(context.Background(), stages...)
	require.NoError(t, err)
	n, err := ParseCount(out)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
