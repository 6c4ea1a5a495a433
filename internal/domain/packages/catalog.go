package packages

import (
	"time"

	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/process"
)

// Catalog maps repositories to the package names they provide, in
// enumerator order. Packages are not deduplicated across repositories.
type Catalog struct {
	Entries  []Entry   `json:"repositories"`
	Failures []Failure `json:"failures,omitempty"`
	Excluded []string  `json:"excluded,omitempty"`
	BuiltAt  time.Time `json:"built_at"`
}

// Entry is one repository and its packages
type Entry struct {
	Repository string   `json:"id"`
	Packages   []string `json:"packages"`
}

// Failure records a repository that was skipped because its query failed
type Failure struct {
	Repository string `json:"repository"`
	Kind       string `json:"kind,omitempty"`
	Message    string `json:"error"`
	Err        error  `json:"-"`
}

func newFailure(repository string, err error) Failure {
	return Failure{
		Repository: repository,
		Kind:       string(process.KindOf(err)),
		Message:    err.Error(),
		Err:        err,
	}
}

// Packages returns the package list of a repository
func (c *Catalog) Packages(repository string) ([]string, bool) {
	for _, e := range c.Entries {
		if e.Repository == repository {
			return e.Packages, true
		}
	}
	return nil, false
}

// Repositories returns the repository ids in catalog order
func (c *Catalog) Repositories() []string {
	ids := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		ids[i] = e.Repository
	}
	return ids
}

// Map returns the plain repository -> packages view
func (c *Catalog) Map() map[string][]string {
	m := make(map[string][]string, len(c.Entries))
	for _, e := range c.Entries {
		m[e.Repository] = e.Packages
	}
	return m
}

// PackageCount returns the number of package entries across repositories
func (c *Catalog) PackageCount() int {
	n := 0
	for _, e := range c.Entries {
		n += len(e.Packages)
	}
	return n
}

// Partial reports whether any repository was skipped after a failed query
func (c *Catalog) Partial() bool {
	return len(c.Failures) > 0
}
