package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/containers"
)

// ListPresets returns the container buttons
func (h *Handlers) ListPresets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"presets": h.presets,
		"mode":    h.launchMode,
	})
}

// CountInstances returns the instance count for a name
func (h *Handlers) CountInstances(c *gin.Context) {
	name, err := containers.Normalize(c.Param("name"))
	if err != nil {
		h.failErr(c, err)
		return
	}

	count, err := h.resolver.Count(c.Request.Context(), name)
	if err != nil {
		h.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"name":    name,
		"count":   count,
	})
}

// DecideLaunch reports what a launch would do without spawning anything
func (h *Handlers) DecideLaunch(c *gin.Context) {
	decision, err := h.resolver.Decide(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"decision": decision,
	})
}

// LaunchContainer resumes or creates the container and starts it
func (h *Handlers) LaunchContainer(c *gin.Context) {
	mode := h.launchMode
	if m := c.Query("mode"); m != "" {
		mode = containers.Mode(m)
	}
	if err := mode.Validate(); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	launch, err := h.resolver.Resolve(c.Request.Context(), c.Param("name"), mode)
	if err != nil {
		h.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"launch":  launch,
	})
}
