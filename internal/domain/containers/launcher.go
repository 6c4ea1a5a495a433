package containers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/containers/session"
	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/process"
	"github.com/GriffinCanCode/SystemManager/backend/internal/shared/id"
)

// ErrLaunch is returned when the launch command could not be spawned
var ErrLaunch = errors.New("container launch failed")

// Mode selects where the interactive session runs
type Mode string

const (
	// ModeTerminal spawns the command detached inside a terminal emulator
	ModeTerminal Mode = "terminal"
	// ModePTY hosts the command in a backend PTY session
	ModePTY Mode = "pty"
)

// Validate rejects unknown modes
func (m Mode) Validate() error {
	switch m {
	case ModeTerminal, ModePTY:
		return nil
	default:
		return fmt.Errorf("unknown launch mode %q", m)
	}
}

// SessionHost starts PTY sessions
type SessionHost interface {
	Create(spec session.Spec) (*session.Info, error)
}

// Launch records one spawn attempt
type Launch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Action    Action    `json:"action"`
	Count     int       `json:"count"`
	Mode      Mode      `json:"mode"`
	Argv      []string  `json:"argv"`
	PID       int       `json:"pid,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

// Launcher turns decisions into spawned commands
type Launcher struct {
	runner   process.Runner
	sessions SessionHost
	opts     Options
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// NewLauncher creates a launcher; sessions may be nil when pty mode is unused
func NewLauncher(runner process.Runner, sessions SessionHost, opts Options, logger *zap.Logger) *Launcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Launcher{runner: runner, sessions: sessions, opts: opts, logger: logger}
}

// WithMetrics attaches a metrics collector
func (l *Launcher) WithMetrics(m *monitoring.Metrics) *Launcher {
	l.metrics = m
	return l
}

// Interactive returns the elevated container command for a decision
func (l *Launcher) Interactive(d Decision) process.Command {
	switch d.Action {
	case ActionResume:
		return elevated(l.opts.LaunchElevate, l.opts.Tool, "start", d.Name, "-i")
	default:
		return elevated(l.opts.LaunchElevate, l.opts.Tool,
			"run", "--name", d.Name,
			"-h", l.opts.Hostname,
			"-e", "LANG="+l.opts.Locale,
			"-it", d.Name,
			l.opts.Shell, "-l")
	}
}

// Command returns the full command spawned for a decision in a mode
func (l *Launcher) Command(d Decision, mode Mode) process.Command {
	inner := l.Interactive(d)
	if mode == ModePTY || l.opts.Terminal == "" {
		return inner
	}
	return process.Command{Name: l.opts.Terminal, Args: inner.Argv()}
}

// Launch spawns the command for d. The caller observes only whether the spawn
// succeeded; the session itself is never waited on.
func (l *Launcher) Launch(ctx context.Context, d Decision, mode Mode) (*Launch, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}

	cmd := l.Command(d, mode)
	launch := &Launch{
		ID:        id.NewLaunchID().String(),
		Name:      d.Name,
		Action:    d.Action,
		Count:     d.Count,
		Mode:      mode,
		Argv:      cmd.Argv(),
		StartedAt: time.Now(),
	}

	var err error
	switch mode {
	case ModePTY:
		err = l.launchPTY(launch)
	default:
		err = l.launchTerminal(ctx, cmd, launch)
	}
	if err != nil {
		l.metrics.RecordLaunch(string(d.Action), string(mode), "failed")
		l.logger.Error("Launch failed",
			zap.String("name", d.Name),
			zap.String("action", string(d.Action)),
			zap.Strings("argv", launch.Argv),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
	}

	l.metrics.RecordLaunch(string(d.Action), string(mode), "started")
	l.logger.Info("Launched container",
		zap.String("launch", launch.ID),
		zap.String("name", d.Name),
		zap.String("action", string(d.Action)),
		zap.String("mode", string(mode)),
		zap.Int("pid", launch.PID),
		zap.String("session", launch.SessionID))
	return launch, nil
}

func (l *Launcher) launchTerminal(ctx context.Context, cmd process.Command, launch *Launch) error {
	proc, err := l.runner.Start(ctx, cmd)
	if err != nil {
		return err
	}
	launch.PID = proc.PID
	launch.StartedAt = proc.StartedAt
	return nil
}

func (l *Launcher) launchPTY(launch *Launch) error {
	if l.sessions == nil {
		return errors.New("pty sessions are not available")
	}
	info, err := l.sessions.Create(session.Spec{Argv: launch.Argv, Label: launch.Name})
	if err != nil {
		return err
	}
	launch.PID = info.PID
	launch.SessionID = info.ID
	launch.StartedAt = info.StartedAt
	return nil
}
