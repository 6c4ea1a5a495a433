package packages

import (
	"context"
	"fmt"
	"strings"

	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/process"
)

// DefaultQueryFormat asks repoquery for the package name only
const DefaultQueryFormat = "%{name}"

// PackageQuerier lists the package names available in one repository
type PackageQuerier interface {
	Query(ctx context.Context, repository string) ([]string, error)
}

// Querier queries repositories through the package manager
type Querier struct {
	runner  process.Runner
	manager string
	format  string
}

// NewQuerier creates a querier for the given package manager binary
func NewQuerier(runner process.Runner, manager string) *Querier {
	return &Querier{runner: runner, manager: manager, format: DefaultQueryFormat}
}

// Query runs `<pkgmgr> repoquery --repo <id> -q --qf %{name}`
func (q *Querier) Query(ctx context.Context, repository string) ([]string, error) {
	if strings.TrimSpace(repository) == "" {
		return nil, fmt.Errorf("repository id is required")
	}

	out, err := q.runner.Output(ctx, process.Command{
		Name: q.manager,
		Args: []string{"repoquery", "--repo", repository, "-q", "--qf", q.format},
	})
	if err != nil {
		return nil, fmt.Errorf("query repository %s: %w", repository, err)
	}
	return ParsePackageList(out), nil
}

// ParsePackageList splits repoquery output into names, dropping the single
// empty element left by the final newline. Order and duplicates are kept.
func ParsePackageList(out string) []string {
	names := strings.Split(out, "\n")
	if n := len(names); names[n-1] == "" {
		names = names[:n-1]
	}
	return names
}
