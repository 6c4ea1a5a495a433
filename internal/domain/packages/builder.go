package packages

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/monitoring"
)

// DefaultWorkers bounds concurrent repoquery processes
const DefaultWorkers = 4

// Builder assembles a Catalog from an enumerator and a querier
type Builder struct {
	lister  RepositoryLister
	querier PackageQuerier
	filter  *Filter
	workers int
	logger  *zap.Logger
	metrics *monitoring.Metrics
	now     func() time.Time
}

// NewBuilder creates a catalog builder
func NewBuilder(lister RepositoryLister, querier PackageQuerier, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		lister:  lister,
		querier: querier,
		workers: DefaultWorkers,
		logger:  logger,
		now:     time.Now,
	}
}

// WithWorkers sets how many repositories are queried at once
func (b *Builder) WithWorkers(n int) *Builder {
	if n > 0 {
		b.workers = n
	}
	return b
}

// WithFilter restricts which repositories are queried
func (b *Builder) WithFilter(f *Filter) *Builder {
	b.filter = f
	return b
}

// WithMetrics attaches a metrics collector
func (b *Builder) WithMetrics(m *monitoring.Metrics) *Builder {
	b.metrics = m
	return b
}

// Build enumerates repositories and queries each of them. A failed query
// skips that repository; a failed enumeration or a done context fails the
// whole build.
func (b *Builder) Build(ctx context.Context) (*Catalog, error) {
	start := b.now()

	repos, err := b.lister.List(ctx)
	if err != nil {
		b.logger.Error("Repository enumeration failed", zap.Error(err))
		b.metrics.RecordCatalogError()
		return nil, err
	}

	catalog := &Catalog{}
	var selected []Repository
	for _, repo := range repos {
		if !b.filter.Allows(repo.ID) {
			catalog.Excluded = append(catalog.Excluded, repo.ID)
			continue
		}
		selected = append(selected, repo)
	}

	results := make([][]string, len(selected))
	errs := make([]error, len(selected))

	// Query errors are collected per slot so one bad repository never
	// cancels its siblings.
	var g errgroup.Group
	g.SetLimit(b.workers)
	for i, repo := range selected {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			results[i], errs[i] = b.querier.Query(ctx, repo.ID)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		b.metrics.RecordCatalogError()
		return nil, err
	}

	for i, repo := range selected {
		if errs[i] != nil {
			b.logger.Warn("Skipping repository",
				zap.String("repository", repo.ID),
				zap.Error(errs[i]))
			catalog.Failures = append(catalog.Failures, newFailure(repo.ID, errs[i]))
			continue
		}
		packages := results[i]
		if packages == nil {
			packages = []string{}
		}
		catalog.Entries = append(catalog.Entries, Entry{Repository: repo.ID, Packages: packages})
	}

	catalog.BuiltAt = b.now()
	b.metrics.RecordCatalog(len(catalog.Entries), catalog.PackageCount(), len(catalog.Failures))
	b.logger.Info("Catalog built",
		zap.Int("repositories", len(catalog.Entries)),
		zap.Int("packages", catalog.PackageCount()),
		zap.Int("failures", len(catalog.Failures)),
		zap.Int("excluded", len(catalog.Excluded)),
		zap.Duration("duration", catalog.BuiltAt.Sub(start)))

	return catalog, nil
}
