// Package processtest provides a scripted process.Runner for tests.
package processtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/process"
)

// Response is the scripted result of a command line
type Response struct {
	Output string
	Err    error
	// Delay blocks the call until it elapses or ctx is done
	Delay time.Duration
}

// Runner answers commands from a table keyed by their shell rendering
// ("a b | c d"). Unknown command lines fail as spawn errors.
type Runner struct {
	mu        sync.Mutex
	responses map[string]Response
	calls     []string
	started   []process.Command
	startErr  error
	nextPID   int
}

var _ process.Runner = (*Runner)(nil)

// New creates an empty fake runner
func New() *Runner {
	return &Runner{responses: make(map[string]Response), nextPID: 1000}
}

// On scripts the response for a command line
func (r *Runner) On(line string, resp Response) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[line] = resp
	return r
}

// FailStart makes every Start call return err
func (r *Runner) FailStart(err error) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.startErr = err
	return r
}

// Output implements process.Runner
func (r *Runner) Output(ctx context.Context, cmd process.Command) (string, error) {
	return r.Pipeline(ctx, cmd)
}

// Pipeline implements process.Runner
func (r *Runner) Pipeline(ctx context.Context, stages ...process.Command) (string, error) {
	line := Line(stages...)

	r.mu.Lock()
	r.calls = append(r.calls, line)
	resp, ok := r.responses[line]
	r.mu.Unlock()

	if !ok {
		return "", &process.Error{
			Program:  stages[0].Name,
			Args:     stages[0].Args,
			Kind:     process.KindSpawn,
			ExitCode: -1,
			Err:      fmt.Errorf("no scripted response for %q", line),
		}
	}
	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-ctx.Done():
			return "", &process.Error{Program: stages[0].Name, Kind: process.KindCanceled, ExitCode: -1, Err: ctx.Err()}
		}
	}
	return resp.Output, resp.Err
}

// Start implements process.Runner
func (r *Runner) Start(_ context.Context, cmd process.Command) (*process.Process, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, cmd.String())
	if r.startErr != nil {
		return nil, r.startErr
	}
	r.started = append(r.started, cmd)
	r.nextPID++
	return &process.Process{PID: r.nextPID, Command: cmd.String(), StartedAt: time.Now()}, nil
}

// Calls returns every command line seen, in order
func (r *Runner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Started returns the commands passed to Start
func (r *Runner) Started() []process.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]process.Command(nil), r.started...)
}

// Line renders stages the way the fake keys them
func Line(stages ...process.Command) string {
	parts := make([]string, len(stages))
	for i, s := range stages {
		parts[i] = s.String()
	}
	return strings.Join(parts, " | ")
}

// ExitError builds the error a stage exiting with code would produce
func ExitError(program string, code int, stderr string) error {
	return &process.Error{
		Program:  program,
		Kind:     process.KindExit,
		ExitCode: code,
		Stderr:   stderr,
		Err:      fmt.Errorf("exit status %d", code),
	}
}
