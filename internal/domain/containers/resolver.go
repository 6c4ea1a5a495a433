package containers

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Action is the lifecycle branch taken for a name
type Action string

const (
	// ActionResume starts an existing instance and attaches to it
	ActionResume Action = "resume"
	// ActionCreateAndRun creates a new instance from the image and runs a shell
	ActionCreateAndRun Action = "create_and_run"
)

// Decision is the outcome of counting instances for a name
type Decision struct {
	Action Action `json:"action"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
}

// Decide maps an instance count to an action
func Decide(name string, count int) Decision {
	action := ActionCreateAndRun
	if count > 0 {
		action = ActionResume
	}
	return Decision{Action: action, Name: name, Count: count}
}

// Resolver counts instances and launches the matching action
type Resolver struct {
	counter  InstanceCounter
	launcher *Launcher
	logger   *zap.Logger
}

// NewResolver creates a resolver
func NewResolver(counter InstanceCounter, launcher *Launcher, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{counter: counter, launcher: launcher, logger: logger}
}

// Count returns the current instance count for name
func (r *Resolver) Count(ctx context.Context, name string) (int, error) {
	return r.counter.Count(ctx, name)
}

// Decide counts instances and returns the action without launching anything
func (r *Resolver) Decide(ctx context.Context, name string) (Decision, error) {
	normalized, err := Normalize(name)
	if err != nil {
		return Decision{}, err
	}
	count, err := r.counter.Count(ctx, normalized)
	if err != nil {
		return Decision{}, err
	}
	d := Decide(normalized, count)
	r.logger.Info("Instances that exist",
		zap.String("name", normalized),
		zap.Int("count", count),
		zap.String("action", string(d.Action)))
	return d, nil
}

// Resolve decides and launches. A counter failure aborts before any launch.
func (r *Resolver) Resolve(ctx context.Context, name string, mode Mode) (*Launch, error) {
	if r.launcher == nil {
		return nil, fmt.Errorf("%w: no launcher configured", ErrLaunch)
	}
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	d, err := r.Decide(ctx, name)
	if err != nil {
		return nil, err
	}
	return r.launcher.Launch(ctx, d, mode)
}
