package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/containers"
	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/containers/session"
	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/packages"
	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/process"
	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/tracing"
)

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, containers.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrClosed):
		return http.StatusConflict
	case errors.Is(err, process.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, process.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, containers.ErrLaunch),
		errors.Is(err, containers.ErrCounter),
		errors.Is(err, packages.ErrEnumeration),
		process.KindOf(err) != "":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the standard error body
func fail(c *gin.Context, status int, err error) {
	body := gin.H{
		"success": false,
		"error":   err.Error(),
	}
	if kind := process.KindOf(err); kind != "" {
		body["kind"] = kind
	}
	c.JSON(status, body)
}

// failErr writes err with the status its type maps to. Server and upstream
// failures are logged under the request's trace id and attached to its span.
func (h *Handlers) failErr(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.requestLogger(c).Warn("Request failed",
			zap.String("route", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err),
		)
		_ = c.Error(err)
	}
	fail(c, status, err)
}

// requestLogger returns the handler logger tagged with the request's trace id
func (h *Handlers) requestLogger(c *gin.Context) *zap.Logger {
	return tracing.Logger(c.Request.Context(), h.logger)
}
