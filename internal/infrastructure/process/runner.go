package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/monitoring"
)

const (
	// maxStderr caps how much diagnostic output is kept per stage
	maxStderr = 4 * 1024
	// waitDelay bounds how long Wait blocks on inherited pipes after a kill
	waitDelay = 2 * time.Second
)

// Command describes one external program invocation
type Command struct {
	Name string
	Args []string
	// Env is appended to the backend's environment
	Env []string
	// Stdin feeds the first stage of a pipeline; ignored on later stages
	Stdin io.Reader
	// OKExitCodes lists non-zero exit codes that are not failures (grep exits 1 on no match)
	OKExitCodes []int
}

// String renders the command the way a shell trace would
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Argv returns the full argument vector including the program name
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// Process is a detached command that has been spawned
type Process struct {
	PID       int       `json:"pid"`
	Command   string    `json:"command"`
	StartedAt time.Time `json:"started_at"`
}

// Runner is the single primitive every external interaction goes through
type Runner interface {
	// Output runs one command and returns its decoded stdout
	Output(ctx context.Context, cmd Command) (string, error)
	// Pipeline runs stages connected stdout-to-stdin and returns the last stage's stdout
	Pipeline(ctx context.Context, stages ...Command) (string, error)
	// Start spawns a detached command and returns without waiting for it
	Start(ctx context.Context, cmd Command) (*Process, error)
}

// Exec runs commands with os/exec
type Exec struct {
	logger  *zap.Logger
	metrics *monitoring.Metrics
	timeout time.Duration
}

var _ Runner = (*Exec)(nil)

// NewExec creates a runner; timeout <= 0 leaves blocking calls bounded only by ctx
func NewExec(logger *zap.Logger, timeout time.Duration) *Exec {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exec{
		logger:  logger,
		timeout: timeout,
	}
}

// WithMetrics attaches a metrics collector
func (e *Exec) WithMetrics(metrics *monitoring.Metrics) *Exec {
	e.metrics = metrics
	return e
}

// WithTimeout returns a copy of the runner using a different timeout
func (e *Exec) WithTimeout(timeout time.Duration) *Exec {
	clone := *e
	clone.timeout = timeout
	return &clone
}

// Output runs one command and returns its decoded stdout
func (e *Exec) Output(ctx context.Context, cmd Command) (string, error) {
	return e.Pipeline(ctx, cmd)
}

// Pipeline runs stages connected stdout-to-stdin. Every stage is started
// before any output is read, so producers larger than a pipe buffer stream
// through instead of blocking.
func (e *Exec) Pipeline(ctx context.Context, stages ...Command) (string, error) {
	if len(stages) == 0 {
		return "", errors.New("process: empty pipeline")
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	timer := monitoring.NewTimer(e.metrics, programLabel(stages[0].Name))
	e.trace(stages)

	cmds := make([]*exec.Cmd, len(stages))
	stderrs := make([]*cappedBuffer, len(stages))
	for i, stage := range stages {
		cmd := exec.CommandContext(ctx, stage.Name, stage.Args...)
		if len(stage.Env) > 0 {
			cmd.Env = append(os.Environ(), stage.Env...)
		}
		cmd.WaitDelay = waitDelay
		stderrs[i] = &cappedBuffer{limit: maxStderr}
		cmd.Stderr = stderrs[i]
		cmds[i] = cmd
	}
	if stages[0].Stdin != nil {
		cmds[0].Stdin = stages[0].Stdin
	}

	// Parent copies of the pipe ends; children inherit their own
	var parentEnds []*os.File
	closeParentEnds := func() {
		for _, f := range parentEnds {
			f.Close()
		}
		parentEnds = nil
	}

	for i := 0; i < len(cmds)-1; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			closeParentEnds()
			timer.Stop(string(KindSpawn))
			return "", &Error{Program: stages[i].Name, Args: stages[i].Args, Kind: KindSpawn, Err: err}
		}
		cmds[i].Stdout = w
		cmds[i+1].Stdin = r
		parentEnds = append(parentEnds, r, w)
	}

	var stdout bytes.Buffer
	cmds[len(cmds)-1].Stdout = &stdout

	for i, cmd := range cmds {
		if err := cmd.Start(); err != nil {
			closeParentEnds()
			for _, started := range cmds[:i] {
				started.Process.Kill()
				started.Wait()
			}
			perr := e.classify(ctx, stages[i], err, stderrs[i])
			timer.Stop(string(perr.Kind))
			e.logger.Debug("Process spawn failed", zap.String("program", stages[i].Name), zap.Error(perr))
			return "", perr
		}
	}
	closeParentEnds()

	var firstErr *Error
	for i, cmd := range cmds {
		if err := cmd.Wait(); err != nil {
			perr := e.classify(ctx, stages[i], err, stderrs[i])
			if perr != nil && firstErr == nil {
				firstErr = perr
			}
		}
	}

	if firstErr != nil {
		timer.Stop(string(firstErr.Kind))
		e.logger.Debug("Process failed",
			zap.String("program", firstErr.Program),
			zap.String("kind", string(firstErr.Kind)),
			zap.Error(firstErr),
		)
		return "", firstErr
	}

	timer.Stop("ok")
	return Decode(stdout.Bytes()), nil
}

// Start spawns a detached command. The child is not bound to ctx: it outlives
// the request that launched it, and its exit is only logged.
func (e *Exec) Start(ctx context.Context, c Command) (*Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Program: c.Name, Args: c.Args, Kind: KindCanceled, Err: err}
	}

	e.trace([]Command{c})

	cmd := exec.Command(c.Name, c.Args...)
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	detach(cmd)

	if err := cmd.Start(); err != nil {
		e.metrics.RecordProcess(programLabel(c.Name), string(KindSpawn), 0)
		return nil, &Error{Program: c.Name, Args: c.Args, Kind: KindSpawn, Err: err}
	}
	e.metrics.RecordProcess(programLabel(c.Name), "ok", 0)

	proc := &Process{
		PID:       cmd.Process.Pid,
		Command:   c.String(),
		StartedAt: time.Now(),
	}

	go func() {
		err := cmd.Wait()
		fields := []zap.Field{
			zap.String("program", c.Name),
			zap.Int("pid", proc.PID),
			zap.Duration("ran_for", time.Since(proc.StartedAt)),
		}
		if err != nil {
			e.logger.Info("Detached process exited with error", append(fields, zap.Error(err))...)
			return
		}
		e.logger.Debug("Detached process exited", fields...)
	}()

	return proc, nil
}

// classify turns an exec error into an *Error, or nil for accepted exit codes
func (e *Exec) classify(ctx context.Context, stage Command, err error, stderr *cappedBuffer) *Error {
	perr := &Error{Program: stage.Name, Args: stage.Args, Err: err, Stderr: stderr.String()}

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		perr.Kind = KindTimeout
		perr.Err = fmt.Errorf("exceeded %s", e.timeout)
	case errors.Is(ctx.Err(), context.Canceled):
		perr.Kind = KindCanceled
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			if code > 0 && slices.Contains(stage.OKExitCodes, code) {
				return nil
			}
			perr.Kind = KindExit
			perr.ExitCode = code
			perr.Err = nil
			if code < 0 {
				perr.Err = err
			}
		} else {
			perr.Kind = KindSpawn
		}
	}
	return perr
}

func (e *Exec) trace(stages []Command) {
	if ce := e.logger.Check(zap.DebugLevel, "Running"); ce != nil {
		parts := make([]string, len(stages))
		for i, s := range stages {
			parts[i] = s.String()
		}
		ce.Write(zap.String("cmd", "+ "+strings.Join(parts, " | ")))
	}
}

func programLabel(name string) string {
	return filepath.Base(name)
}

// cappedBuffer keeps the first limit bytes written and drops the rest
type cappedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	return Decode(b.buf.Bytes())
}
