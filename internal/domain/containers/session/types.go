package session

import (
	"errors"
	"os"
	"os/exec"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned for unknown session ids
	ErrNotFound = errors.New("session not found")
	// ErrClosed is returned when writing to a session whose process has exited
	ErrClosed = errors.New("session is closed")
)

const (
	defaultCols   = 80
	defaultRows   = 24
	bufferSize    = 1024 * 1024
	readChunk     = 4096
	subscriberCap = 64
)

// Spec describes the process to host
type Spec struct {
	Argv  []string
	Env   []string
	Label string
	Cols  int
	Rows  int
}

// Session is a process running under a PTY
type Session struct {
	ID        string
	Label     string
	Argv      []string
	Cols      int
	Rows      int
	StartedAt time.Time

	cmd  *exec.Cmd
	ptmx *os.File

	output *Buffer

	mu          sync.RWMutex
	closed      bool
	exitCode    int
	endedAt     time.Time
	subscribers map[chan []byte]struct{}
	done        chan struct{}
}

// Info is the public representation of a session
type Info struct {
	ID        string     `json:"id"`
	Label     string     `json:"label"`
	Argv      []string   `json:"argv"`
	PID       int        `json:"pid"`
	Cols      int        `json:"cols"`
	Rows      int        `json:"rows"`
	StartedAt time.Time  `json:"started_at"`
	Active    bool       `json:"active"`
	ExitCode  *int       `json:"exit_code,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

func (s *Session) info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := Info{
		ID:        s.ID,
		Label:     s.Label,
		Argv:      s.Argv,
		Cols:      s.Cols,
		Rows:      s.Rows,
		StartedAt: s.StartedAt,
		Active:    !s.closed,
	}
	if s.cmd.Process != nil {
		info.PID = s.cmd.Process.Pid
	}
	if s.closed && !s.endedAt.IsZero() {
		code, ended := s.exitCode, s.endedAt
		info.ExitCode = &code
		info.EndedAt = &ended
	}
	return info
}
