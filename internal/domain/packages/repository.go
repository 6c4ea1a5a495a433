package packages

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/process"
)

// ErrEnumeration is returned when the repository list cannot be obtained
var ErrEnumeration = errors.New("repository enumeration failed")

// leadingToken matches the repository id column of repolist output
var leadingToken = regexp.MustCompile(`^\S+`)

// Repository is a configured package repository
type Repository struct {
	ID string `json:"id"`
}

// RepositoryLister lists configured repositories
type RepositoryLister interface {
	List(ctx context.Context) ([]Repository, error)
}

// Enumerator lists repositories through the package manager
type Enumerator struct {
	runner  process.Runner
	manager string
}

// NewEnumerator creates an enumerator for the given package manager binary
func NewEnumerator(runner process.Runner, manager string) *Enumerator {
	return &Enumerator{runner: runner, manager: manager}
}

// List runs `<pkgmgr> repolist` and parses its output
func (e *Enumerator) List(ctx context.Context) ([]Repository, error) {
	out, err := e.runner.Output(ctx, process.Command{
		Name: e.manager,
		Args: []string{"repolist"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnumeration, err)
	}
	return ParseRepoList(out), nil
}

// ParseRepoList extracts the leading token of every line that starts with a
// non-space character and drops the first one, which is the header row.
func ParseRepoList(out string) []Repository {
	var repos []Repository
	header := true
	for _, line := range strings.Split(out, "\n") {
		id := leadingToken.FindString(line)
		if id == "" {
			continue
		}
		if header {
			header = false
			continue
		}
		repos = append(repos, Repository{ID: id})
	}
	return repos
}
