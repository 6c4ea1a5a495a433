package packages

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CatalogBuilder builds a fresh catalog
type CatalogBuilder interface {
	Build(ctx context.Context) (*Catalog, error)
}

// Store holds the most recent catalog
type Store struct {
	builder CatalogBuilder
	logger  *zap.Logger
	group   singleflight.Group
	warming atomic.Bool

	mu      sync.RWMutex
	current *Catalog
	lastErr error
}

// NewStore creates an empty store
func NewStore(builder CatalogBuilder, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{builder: builder, logger: logger}
}

// Current returns the last successfully built catalog
func (s *Store) Current() (*Catalog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != nil
}

// LastError returns the error of the most recent build, if it failed
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Refresh rebuilds the catalog. Callers arriving while a build is running
// share its result. The build runs detached from any one caller, so a caller
// that gives up returns ctx.Err() without failing the others. A failed build
// keeps the previous catalog.
func (s *Store) Refresh(ctx context.Context) (*Catalog, error) {
	ch := s.group.DoChan("catalog", func() (interface{}, error) {
		catalog, err := s.builder.Build(context.WithoutCancel(ctx))

		s.mu.Lock()
		defer s.mu.Unlock()
		s.lastErr = err
		if err != nil {
			return nil, err
		}
		s.current = catalog
		return catalog, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			s.logger.Debug("Joined in-flight catalog build")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Catalog), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Get returns the current catalog, building one first if none exists yet
func (s *Store) Get(ctx context.Context) (*Catalog, error) {
	if catalog, ok := s.Current(); ok {
		return catalog, nil
	}
	return s.Refresh(ctx)
}

// Warming reports whether the startup build is still running
func (s *Store) Warming() bool {
	return s.warming.Load()
}

// Warm builds the first catalog in the background
func (s *Store) Warm(ctx context.Context) {
	s.warming.Store(true)
	go func() {
		defer s.warming.Store(false)
		if _, err := s.Refresh(ctx); err != nil {
			s.logger.Warn("Initial catalog build failed", zap.Error(err))
		}
	}()
}
