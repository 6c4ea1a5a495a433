package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxLogBatch bounds how many front-end entries one request may carry
const maxLogBatch = 500

// UILogEntry represents a log entry from the panel front end
type UILogEntry struct {
	ID        string                 `json:"id"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context"`
	Timestamp string                 `json:"timestamp"`
}

// UILogStreamRequest represents a batch of logs from the front end
type UILogStreamRequest struct {
	Source  string       `json:"source"`
	Entries []UILogEntry `json:"entries"`
}

// StreamLogs writes front-end log entries into the backend log
func (h *Handlers) StreamLogs(c *gin.Context) {
	var req UILogStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid log request format"})
		return
	}

	if req.Source == "" {
		req.Source = "ui"
	}
	if len(req.Entries) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No log entries provided"})
		return
	}
	if len(req.Entries) > maxLogBatch {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Too many log entries"})
		return
	}

	logger := h.requestLogger(c).With(zap.String("source", req.Source))
	for _, entry := range req.Entries {
		logUIEntry(logger, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"entries_received": len(req.Entries),
		"timestamp":        time.Now().Unix(),
	})
}

func logUIEntry(logger *zap.Logger, entry UILogEntry) {
	fields := make([]zap.Field, 0, len(entry.Context)+2)
	fields = append(fields,
		zap.String("ui_log_id", entry.ID),
		zap.String("ui_timestamp", entry.Timestamp),
	)

	for key, value := range entry.Context {
		switch v := value.(type) {
		case string:
			fields = append(fields, zap.String(key, v))
		case float64:
			fields = append(fields, zap.Float64(key, v))
		case bool:
			fields = append(fields, zap.Bool(key, v))
		default:
			fields = append(fields, zap.Any(key, v))
		}
	}

	switch entry.Level {
	case "error":
		logger.Error(entry.Message, fields...)
	case "warn":
		logger.Warn(entry.Message, fields...)
	case "debug", "verbose":
		logger.Debug(entry.Message, fields...)
	default:
		logger.Info(entry.Message, fields...)
	}
}
