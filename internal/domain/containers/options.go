package containers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/process"
)

// Source selects what the counter lists
type Source string

const (
	// SourceContainers lists container instances by name
	SourceContainers Source = "containers"
	// SourceImages lists local images (legacy behavior)
	SourceImages Source = "images"
)

// Match selects how listing lines are compared with the name
type Match string

const (
	// MatchExact keeps whole lines equal to the name
	MatchExact Match = "exact"
	// MatchSubstring keeps lines containing the name anywhere
	MatchSubstring Match = "substring"
)

// Options configures the container tool invocations
type Options struct {
	Tool          string
	ListElevate   string
	LaunchElevate string
	Terminal      string
	Hostname      string
	Locale        string
	Shell         string
	Source        Source
	Match         Match
}

// DefaultOptions returns the kitty/sudo/docker commands with exact matching
// against container instances
func DefaultOptions() Options {
	return Options{
		Tool:          "docker",
		ListElevate:   "pkexec",
		LaunchElevate: "sudo",
		Terminal:      "kitty",
		Hostname:      "10-slib",
		Locale:        "C.UTF-8",
		Shell:         "/bin/bash",
		Source:        SourceContainers,
		Match:         MatchExact,
	}
}

// elevated prefixes the tool with an elevation helper, if one is set
func elevated(helper, tool string, args ...string) process.Command {
	if helper == "" {
		return process.Command{Name: tool, Args: args}
	}
	return process.Command{Name: helper, Args: append([]string{tool}, args...)}
}

// validName is the container name grammar docker accepts for --name
var validName = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]*$`)

// Normalize lowercases a container name and checks it is usable both as an
// image reference and a container name.
func Normalize(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return "", fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if !validName.MatchString(n) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return n, nil
}
