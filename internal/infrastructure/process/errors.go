package process

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies why a process invocation failed
type Kind string

const (
	KindSpawn       Kind = "spawn"
	KindExit        Kind = "exit"
	KindTimeout     Kind = "timeout"
	KindCanceled    Kind = "canceled"
	KindDecode      Kind = "decode"
	// KindUnavailable means the program's breaker is open
	KindUnavailable Kind = "unavailable"
)

var (
	ErrSpawn       = errors.New("process could not be spawned")
	ErrExit        = errors.New("process exited with failure")
	ErrTimeout     = errors.New("process timed out")
	ErrCanceled    = errors.New("process canceled")
	ErrDecode      = errors.New("process output could not be decoded")
	// ErrUnavailable is returned without running anything while a program is failing fast
	ErrUnavailable = errors.New("process temporarily unavailable")
)

// Error describes a failed invocation of a single program
type Error struct {
	Program  string
	Args     []string
	Kind     Kind
	ExitCode int
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s", e.Program, e.sentinel().Error())
	if e.Kind == KindExit {
		fmt.Fprintf(&sb, " (code %d)", e.ExitCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		fmt.Fprintf(&sb, ": %s", firstLine(msg))
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind
func (e *Error) Is(target error) bool {
	return target == e.sentinel()
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindSpawn:
		return ErrSpawn
	case KindTimeout:
		return ErrTimeout
	case KindCanceled:
		return ErrCanceled
	case KindDecode:
		return ErrDecode
	case KindUnavailable:
		return ErrUnavailable
	default:
		return ErrExit
	}
}

// DecodeFailure reports output that could not be interpreted as expected
func DecodeFailure(program, output string, err error) *Error {
	return &Error{
		Program: program,
		Kind:    KindDecode,
		Err:     fmt.Errorf("unexpected output %q: %w", truncate(output, 64), err),
	}
}

// KindOf returns the kind of a process error, or "" for anything else
func KindOf(err error) Kind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return ""
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
