package process

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/resilience"
)

// Guard wraps a Runner with one circuit breaker per program. Only spawn
// failures and timeouts count against a program: a non-zero exit means the
// program ran, which is the caller's business.
type Guard struct {
	inner    Runner
	settings resilience.Settings
	logger   *zap.Logger
	breakers sync.Map // program -> *resilience.Breaker
}

var _ Runner = (*Guard)(nil)

// NewGuard trips a program's breaker after threshold consecutive spawn
// failures or timeouts, and probes it again after cooldown.
func NewGuard(inner Runner, logger *zap.Logger, threshold uint32, cooldown time.Duration) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	if threshold == 0 {
		threshold = 3
	}
	g := &Guard{inner: inner, logger: logger}
	g.settings = resilience.Settings{
		Timeout: cooldown,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to resilience.State) {
			g.logger.Warn("Program breaker changed state",
				zap.String("program", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		},
	}
	return g
}

// Output implements Runner
func (g *Guard) Output(ctx context.Context, cmd Command) (string, error) {
	return g.Pipeline(ctx, cmd)
}

// Pipeline implements Runner; the breaker is chosen by the first stage
func (g *Guard) Pipeline(ctx context.Context, stages ...Command) (string, error) {
	if len(stages) == 0 {
		return g.inner.Pipeline(ctx, stages...)
	}
	out, err := resilience.Call(g.breaker(stages[0].Name), func() (string, error) {
		return g.inner.Pipeline(ctx, stages...)
	})
	return out, unavailable(stages[0], err)
}

// Start implements Runner
func (g *Guard) Start(ctx context.Context, cmd Command) (*Process, error) {
	proc, err := resilience.Call(g.breaker(cmd.Name), func() (*Process, error) {
		return g.inner.Start(ctx, cmd)
	})
	return proc, unavailable(cmd, err)
}

// Status reports every breaker that has seen traffic, by program
func (g *Guard) Status() []resilience.Status {
	out := []resilience.Status{}
	if g == nil {
		return out
	}
	g.breakers.Range(func(_, value interface{}) bool {
		out = append(out, value.(*resilience.Breaker).Status())
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (g *Guard) breaker(program string) *resilience.Breaker {
	name := programLabel(program)
	if b, ok := g.breakers.Load(name); ok {
		return b.(*resilience.Breaker)
	}
	b, _ := g.breakers.LoadOrStore(name, resilience.New(name, g.settings))
	return b.(*resilience.Breaker)
}

func countsAsSuccess(err error) bool {
	switch KindOf(err) {
	case KindSpawn, KindTimeout:
		return false
	default:
		return true
	}
}

func unavailable(cmd Command, err error) error {
	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		return &Error{Program: cmd.Name, Args: cmd.Args, Kind: KindUnavailable, Err: err}
	}
	return err
}
