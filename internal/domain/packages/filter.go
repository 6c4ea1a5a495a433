package packages

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter selects repositories by doublestar glob. An empty include list
// admits everything; exclude always wins.
type Filter struct {
	include []string
	exclude []string
}

// NewFilter validates the patterns and builds a filter
func NewFilter(include, exclude []string) (*Filter, error) {
	for _, pattern := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid repository pattern %q", pattern)
		}
	}
	return &Filter{include: include, exclude: exclude}, nil
}

// Allows reports whether the repository should be queried
func (f *Filter) Allows(id string) bool {
	if f == nil {
		return true
	}
	for _, pattern := range f.exclude {
		if matched, _ := doublestar.Match(pattern, id); matched {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, pattern := range f.include {
		if matched, _ := doublestar.Match(pattern, id); matched {
			return true
		}
	}
	return false
}
