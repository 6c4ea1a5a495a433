package session

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/creack/pty"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/SystemManager/backend/internal/shared/id"
)

// Manager manages PTY sessions
type Manager struct {
	sessions sync.Map // map[string]*Session
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// NewManager creates a new session manager
func NewManager(logger *zap.Logger, metrics *monitoring.Metrics) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{logger: logger, metrics: metrics}
}

// Create starts spec.Argv under a new PTY
func (m *Manager) Create(spec Spec) (*Info, error) {
	if len(spec.Argv) == 0 {
		return nil, errors.New("session: empty argv")
	}
	if spec.Cols <= 0 {
		spec.Cols = defaultCols
	}
	if spec.Rows <= 0 {
		spec.Rows = defaultRows
	}

	cmd := exec.Command(spec.Argv[0], spec.Argv[1:]...)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	cmd.Env = append(cmd.Env, spec.Env...)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(spec.Rows),
		Cols: uint16(spec.Cols),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start PTY: %w", err)
	}

	session := &Session{
		ID:          id.NewSessionID().String(),
		Label:       spec.Label,
		Argv:        append([]string(nil), spec.Argv...),
		Cols:        spec.Cols,
		Rows:        spec.Rows,
		StartedAt:   time.Now(),
		cmd:         cmd,
		ptmx:        ptmx,
		output:      NewBuffer(bufferSize),
		subscribers: make(map[chan []byte]struct{}),
		done:        make(chan struct{}),
	}

	m.sessions.Store(session.ID, session)
	m.updateGauge()
	m.logger.Info("Session started",
		zap.String("session", session.ID),
		zap.String("label", session.Label),
		zap.Strings("argv", session.Argv),
		zap.Int("pid", cmd.Process.Pid))

	go m.readOutput(session)
	go m.monitorProcess(session)

	info := session.info()
	return &info, nil
}

// readOutput copies PTY output into the buffer and live subscribers
func (m *Manager) readOutput(session *Session) {
	buf := make([]byte, readChunk)
	for {
		n, err := session.ptmx.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			session.output.Write(chunk)
			session.publish(chunk)
		}
		if err != nil {
			break
		}
	}
}

// monitorProcess waits for the process to exit and marks the session closed
func (m *Manager) monitorProcess(session *Session) {
	err := session.cmd.Wait()

	code := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	} else if err != nil {
		code = -1
	}

	session.mu.Lock()
	session.closed = true
	session.exitCode = code
	session.endedAt = time.Now()
	for ch := range session.subscribers {
		close(ch)
		delete(session.subscribers, ch)
	}
	session.mu.Unlock()

	session.ptmx.Close()
	close(session.done)
	m.updateGauge()

	m.logger.Info("Session ended",
		zap.String("session", session.ID),
		zap.Int("exit_code", code))
}

func (m *Manager) get(sessionID string) (*Session, error) {
	value, ok := m.sessions.Load(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	return value.(*Session), nil
}

// Write sends input to a session
func (m *Manager) Write(sessionID string, input []byte) error {
	session, err := m.get(sessionID)
	if err != nil {
		return err
	}

	session.mu.RLock()
	closed := session.closed
	session.mu.RUnlock()

	if closed {
		return fmt.Errorf("%w: %s", ErrClosed, sessionID)
	}

	_, err = session.ptmx.Write(input)
	return err
}

// Read drains buffered output from a session
func (m *Manager) Read(sessionID string) ([]byte, error) {
	session, err := m.get(sessionID)
	if err != nil {
		return nil, err
	}
	return session.output.ReadAll(), nil
}

// Resize changes terminal dimensions
func (m *Manager) Resize(sessionID string, cols, rows int) error {
	if cols <= 0 || rows <= 0 {
		return fmt.Errorf("invalid size %dx%d", cols, rows)
	}
	session, err := m.get(sessionID)
	if err != nil {
		return err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.closed {
		return fmt.Errorf("%w: %s", ErrClosed, sessionID)
	}

	session.Cols = cols
	session.Rows = rows

	return pty.Setsize(session.ptmx, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
}

// Subscribe returns a channel receiving every output chunk from now on. The
// channel is closed when the session ends or cancel is called. Slow
// subscribers drop chunks rather than stall the reader.
func (m *Manager) Subscribe(sessionID string) (<-chan []byte, func(), error) {
	session, err := m.get(sessionID)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan []byte, subscriberCap)

	session.mu.Lock()
	if session.closed {
		session.mu.Unlock()
		close(ch)
		return ch, func() {}, nil
	}
	session.subscribers[ch] = struct{}{}
	session.mu.Unlock()

	cancel := func() {
		session.mu.Lock()
		defer session.mu.Unlock()
		if _, ok := session.subscribers[ch]; ok {
			delete(session.subscribers, ch)
			close(ch)
		}
	}
	return ch, cancel, nil
}

func (s *Session) publish(chunk []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subscribers {
		select {
		case ch <- chunk:
		default:
		}
	}
}

// Done returns a channel closed when the session's process exits
func (m *Manager) Done(sessionID string) (<-chan struct{}, error) {
	session, err := m.get(sessionID)
	if err != nil {
		return nil, err
	}
	return session.done, nil
}

// Kill terminates a session and forgets it
func (m *Manager) Kill(sessionID string) error {
	session, err := m.get(sessionID)
	if err != nil {
		return err
	}

	session.mu.RLock()
	closed := session.closed
	session.mu.RUnlock()

	if !closed && session.cmd.Process != nil {
		_ = session.cmd.Process.Kill()
	}

	m.sessions.Delete(sessionID)
	m.updateGauge()
	m.logger.Info("Session killed", zap.String("session", sessionID))
	return nil
}

// List returns all known sessions
func (m *Manager) List() []Info {
	sessions := []Info{}
	m.sessions.Range(func(_, value interface{}) bool {
		sessions = append(sessions, value.(*Session).info())
		return true
	})
	return sessions
}

// Get retrieves session info
func (m *Manager) Get(sessionID string) (*Info, error) {
	session, err := m.get(sessionID)
	if err != nil {
		return nil, err
	}
	info := session.info()
	return &info, nil
}

// Shutdown kills every session
func (m *Manager) Shutdown() {
	m.sessions.Range(func(key, _ interface{}) bool {
		_ = m.Kill(key.(string))
		return true
	})
}

func (m *Manager) updateGauge() {
	if m.metrics == nil {
		return
	}
	active := 0
	m.sessions.Range(func(_, value interface{}) bool {
		session := value.(*Session)
		session.mu.RLock()
		if !session.closed {
			active++
		}
		session.mu.RUnlock()
		return true
	})
	m.metrics.SetSessionsActive(active)
}
