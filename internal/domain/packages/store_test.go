package packages

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubBuilder struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (b *stubBuilder) Build(ctx context.Context) (*Catalog, error) {
	b.calls.Add(1)
	select {
	case <-time.After(b.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if b.err != nil {
		return nil, b.err
	}
	return &Catalog{
		Entries: []Entry{{Repository: "fedora", Packages: []string{"bash"}}},
		BuiltAt: time.Now(),
	}, nil
}

func TestStoreRefresh(t *testing.T) {
	s := NewStore(&stubBuilder{}, zaptest.NewLogger(t))

	_, ok := s.Current()
	assert.False(t, ok)

	catalog, err := s.Refresh(context.Background())
	require.NoError(t, err)

	current, ok := s.Current()
	require.True(t, ok)
	assert.Same(t, catalog, current)
	assert.NoError(t, s.LastError())
}

func TestStoreKeepsPreviousCatalogOnFailure(t *testing.T) {
	builder := &stubBuilder{}
	s := NewStore(builder, zaptest.NewLogger(t))

	first, err := s.Refresh(context.Background())
	require.NoError(t, err)

	builder.err = errors.New("dnf unavailable")
	_, err = s.Refresh(context.Background())
	require.Error(t, err)

	current, ok := s.Current()
	require.True(t, ok)
	assert.Same(t, first, current)
	assert.EqualError(t, s.LastError(), "dnf unavailable")
}

func TestStoreCollapsesConcurrentRefreshes(t *testing.T) {
	builder := &stubBuilder{delay: 100 * time.Millisecond}
	s := NewStore(builder, zaptest.NewLogger(t))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Refresh(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Less(t, builder.calls.Load(), int32(5))
}

func TestStoreGetBuildsOnce(t *testing.T) {
	builder := &stubBuilder{}
	s := NewStore(builder, zaptest.NewLogger(t))

	_, err := s.Get(context.Background())
	require.NoError(t, err)
	_, err = s.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), builder.calls.Load())
}

func TestStoreWarm(t *testing.T) {
	s := NewStore(&stubBuilder{}, zaptest.NewLogger(t))
	s.Warm(context.Background())

	assert.Eventually(t, func() bool {
		_, ok := s.Current()
		return ok
	}, time.Second, 10*time.Millisecond)
}

func TestStoreCanceledCallerDoesNotFailOthers(t *testing.T) {
	builder := &stubBuilder{delay: 200 * time.Millisecond}
	s := NewStore(builder, zaptest.NewLogger(t))

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := s.Get(ctxA)
		errA <- err
	}()

	// let A start the build before B joins it
	require.Eventually(t, func() bool { return builder.calls.Load() == 1 }, time.Second, time.Millisecond)

	type result struct {
		catalog *Catalog
		err     error
	}
	resB := make(chan result, 1)
	go func() {
		catalog, err := s.Get(context.Background())
		resB <- result{catalog, err}
	}()

	time.Sleep(20 * time.Millisecond)
	cancelA()

	assert.ErrorIs(t, <-errA, context.Canceled)

	b := <-resB
	require.NoError(t, b.err)
	require.NotNil(t, b.catalog)
	assert.Equal(t, int32(1), builder.calls.Load())

	current, ok := s.Current()
	require.True(t, ok)
	assert.Same(t, b.catalog, current)
}

func TestStoreBuildSurvivesCanceledSoleCaller(t *testing.T) {
	builder := &stubBuilder{delay: 50 * time.Millisecond}
	s := NewStore(builder, zaptest.NewLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, err := s.Refresh(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Eventually(t, func() bool {
		_, ok := s.Current()
		return ok
	}, time.Second, 10*time.Millisecond)
}

func TestStoreWarming(t *testing.T) {
	s := NewStore(&stubBuilder{delay: 100 * time.Millisecond}, zaptest.NewLogger(t))
	assert.False(t, s.Warming())

	s.Warm(context.Background())
	assert.True(t, s.Warming())

	assert.Eventually(t, func() bool { return !s.Warming() }, time.Second, 10*time.Millisecond)
	_, ok := s.Current()
	assert.True(t, ok)
}
