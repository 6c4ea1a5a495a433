package containers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/process"
)

var (
	// ErrCounter is returned when the instance count cannot be obtained
	ErrCounter = errors.New("container instance count failed")
	// ErrInvalidName is returned for names that cannot be passed to the tool
	ErrInvalidName = errors.New("invalid container name")
)

// InstanceCounter counts local instances matching a name
type InstanceCounter interface {
	Count(ctx context.Context, name string) (int, error)
}

// Counter counts instances with a list | filter | count pipeline
type Counter struct {
	runner process.Runner
	opts   Options
}

// NewCounter creates a counter
func NewCounter(runner process.Runner, opts Options) *Counter {
	return &Counter{runner: runner, opts: opts}
}

// Stages returns the pipeline used to count name. Exact matching needs one
// bare name per line, so the image listing is narrowed to repository names
// unless substring matching over the full table was asked for.
func (c *Counter) Stages(name string) []process.Command {
	var list process.Command
	switch {
	case c.opts.Source == SourceImages && c.opts.Match == MatchSubstring:
		list = elevated(c.opts.ListElevate, c.opts.Tool, "images")
	case c.opts.Source == SourceImages:
		list = elevated(c.opts.ListElevate, c.opts.Tool, "images", "--format", "{{.Repository}}")
	default:
		list = elevated(c.opts.ListElevate, c.opts.Tool, "ps", "-a", "--format", "{{.Names}}")
	}

	grepArgs := []string{"-F"}
	if c.opts.Match != MatchSubstring {
		grepArgs = append(grepArgs, "-x")
	}
	grepArgs = append(grepArgs, "--", name)

	return []process.Command{
		list,
		// grep exits 1 when nothing matches, which is a count of zero
		{Name: "grep", Args: grepArgs, OKExitCodes: []int{1}},
		{Name: "wc", Args: []string{"-l"}},
	}
}

// Count returns the number of listing lines matching the lowercased name
func (c *Counter) Count(ctx context.Context, name string) (int, error) {
	normalized, err := Normalize(name)
	if err != nil {
		return 0, err
	}

	out, err := c.runner.Pipeline(ctx, c.Stages(normalized)...)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCounter, err)
	}

	count, err := ParseCount(out)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCounter, process.DecodeFailure("wc", out, err))
	}
	return count, nil
}

// ParseCount parses the output of wc -l
func ParseCount(out string) (int, error) {
	trimmed := strings.TrimSpace(out)
	if trimmed == "" {
		return 0, errors.New("empty count")
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count %d", n)
	}
	return n, nil
}
