package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/SystemManager/backend/internal/shared/types"
	"github.com/GriffinCanCode/SystemManager/backend/internal/shared/utils"
)

// DiscoverRequest is a free-text service search
type DiscoverRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit"`
}

// ListServices lists all available services
func (h *Handlers) ListServices(c *gin.Context) {
	var category *types.Category
	if raw := c.Query("category"); raw != "" {
		if err := utils.ValidateID(raw, "category", false); err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}
		cat := types.Category(raw)
		category = &cat
	}

	c.JSON(http.StatusOK, gin.H{
		"services": h.registry.List(category),
		"stats":    h.registry.Stats(),
	})
}

// DiscoverServices finds services relevant to a query
func (h *Handlers) DiscoverServices(c *gin.Context) {
	var req DiscoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if req.Limit <= 0 {
		req.Limit = 5
	}

	c.JSON(http.StatusOK, gin.H{
		"query":    req.Query,
		"services": h.registry.Discover(req.Query, req.Limit),
	})
}

// ExecuteService executes a service tool
func (h *Handlers) ExecuteService(c *gin.Context) {
	var req types.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	if err := utils.ValidateToolID(req.ToolID, "tool_id", true); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	appCtx := &types.Context{}
	if req.Client != nil {
		if err := utils.ValidateID(*req.Client, "client", false); err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}
		appCtx.Client = req.Client
	}
	if traceID := tracing.TraceID(c.Request.Context()); traceID != "" {
		requestID := traceID.String()
		appCtx.RequestID = &requestID
	}

	result, err := h.registry.Execute(c.Request.Context(), req.ToolID, req.Params, appCtx)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
