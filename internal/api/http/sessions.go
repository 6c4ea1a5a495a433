package http

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/SystemManager/backend/internal/shared/types"
	"github.com/GriffinCanCode/SystemManager/backend/internal/shared/utils"
)

var errNoSessions = errors.New("pty sessions are not enabled")

func (h *Handlers) sessionID(c *gin.Context) (string, bool) {
	if h.sessions == nil {
		fail(c, http.StatusNotFound, errNoSessions)
		return "", false
	}
	id := c.Param("id")
	if err := utils.ValidateID(id, "session_id", true); err != nil {
		fail(c, http.StatusBadRequest, err)
		return "", false
	}
	return id, true
}

// ListSessions lists PTY sessions
func (h *Handlers) ListSessions(c *gin.Context) {
	if h.sessions == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "sessions": []interface{}{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"sessions": h.sessions.List(),
	})
}

// GetSession returns one session
func (h *Handlers) GetSession(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	info, err := h.sessions.Get(id)
	if err != nil {
		h.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": info})
}

// KillSession terminates a session
func (h *Handlers) KillSession(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	if err := h.sessions.Kill(id); err != nil {
		h.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session_id": id})
}

// SessionInput writes keystrokes to a session
func (h *Handlers) SessionInput(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req types.InputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := utils.ValidateInput(req.Input); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := h.sessions.Write(id, []byte(req.Input)); err != nil {
		h.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "written": len(req.Input)})
}

// ResizeSession changes the PTY dimensions
func (h *Handlers) ResizeSession(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req types.ResizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := h.sessions.Resize(id, req.Cols, req.Rows); err != nil {
		h.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "cols": req.Cols, "rows": req.Rows})
}

// SessionOutput drains buffered output
func (h *Handlers) SessionOutput(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	output, err := h.sessions.Read(id)
	if err != nil {
		h.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"output":        string(output),
		"output_base64": base64.StdEncoding.EncodeToString(output),
		"length":        len(output),
	})
}
