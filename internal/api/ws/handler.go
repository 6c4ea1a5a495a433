package ws

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/containers/session"
	"github.com/GriffinCanCode/SystemManager/backend/internal/shared/types"
	"github.com/GriffinCanCode/SystemManager/backend/internal/shared/utils"
)

const (
	// exitWait bounds how long the stream waits for an exit code after output ends
	exitWait = 2 * time.Second
	// closeWait bounds how long a client may take to answer the close frame
	closeWait = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // The panel is served from a different local origin
	},
}

// Handler streams PTY sessions over WebSocket
type Handler struct {
	sessions *session.Manager
	logger   *zap.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(sessions *session.Manager, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{sessions: sessions, logger: logger}
}

// conn serializes writes; gorilla allows one concurrent writer
type conn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (c *conn) send(data interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.WriteJSON(data)
}

func (c *conn) sendOutput(chunk []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.WriteMessage(websocket.BinaryMessage, chunk)
}

func (c *conn) sendError(msg string) error {
	return c.send(map[string]interface{}{
		"type":      "error",
		"message":   msg,
		"timestamp": time.Now().Unix(),
	})
}

// HandleSession upgrades the request and attaches it to a session. Output is
// sent as binary frames; input, resize and ping arrive as JSON text frames.
func (h *Handler) HandleSession(c *gin.Context) {
	sessionID := c.Param("id")
	if err := utils.ValidateID(sessionID, "session_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if h.sessions == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "pty sessions are not enabled"})
		return
	}

	info, err := h.sessions.Get(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
		return
	}
	output, cancel, err := h.sessions.Subscribe(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
		return
	}
	defer cancel()

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer ws.Close()

	cn := &conn{Conn: ws}
	logger := h.logger.With(zap.String("session", sessionID))
	logger.Debug("Session stream attached")

	cn.send(map[string]interface{}{
		"type":    "attached",
		"session": info,
	})

	pumped := make(chan struct{})
	go func() {
		defer close(pumped)
		h.pump(cn, sessionID, output)
	}()

	h.readLoop(cn, sessionID, logger)
	cancel()
	<-pumped
	logger.Debug("Session stream detached")
}

// pump forwards output until the subscription closes, then reports the exit.
// Once it returns the read side gets a deadline, so a client that never
// answers the close frame cannot hold the handler open.
func (h *Handler) pump(cn *conn, sessionID string, output <-chan []byte) {
	defer func() {
		cn.SetReadDeadline(time.Now().Add(closeWait))
	}()

	for chunk := range output {
		if err := cn.sendOutput(chunk); err != nil {
			return
		}
	}

	if done, err := h.sessions.Done(sessionID); err == nil {
		select {
		case <-done:
		case <-time.After(exitWait):
		}
	}

	frame := map[string]interface{}{
		"type":      "exit",
		"timestamp": time.Now().Unix(),
	}
	if info, err := h.sessions.Get(sessionID); err == nil && info.ExitCode != nil {
		frame["exit_code"] = *info.ExitCode
	}
	cn.send(frame)
	cn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
		time.Now().Add(time.Second))
}

func (h *Handler) readLoop(cn *conn, sessionID string, logger *zap.Logger) {
	for {
		var msg types.WSMessage
		if err := cn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("WebSocket read ended", zap.Error(err))
			}
			return
		}

		switch msg.Type {
		case "input":
			if err := utils.ValidateInput(msg.Data); err != nil {
				cn.sendError(err.Error())
				continue
			}
			if err := h.sessions.Write(sessionID, []byte(msg.Data)); err != nil {
				cn.sendError(err.Error())
				if errors.Is(err, session.ErrNotFound) {
					return
				}
			}
		case "resize":
			if err := h.sessions.Resize(sessionID, msg.Cols, msg.Rows); err != nil {
				cn.sendError(err.Error())
			}
		case "ping":
			cn.send(map[string]interface{}{"type": "pong"})
		default:
			cn.sendError("unknown message type")
		}
	}
}
