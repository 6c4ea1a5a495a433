package http

import "github.com/gin-gonic/gin"

// Register mounts every endpoint on r. guard runs in front of the routes that
// spawn external programs on behalf of the caller (refresh and launch).
func (h *Handlers) Register(r gin.IRouter, guard ...gin.HandlerFunc) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	r.GET("/catalog", h.GetCatalog)
	r.POST("/catalog/refresh", append(guard, h.RefreshCatalog)...)
	r.GET("/repositories", h.ListRepositories)
	r.GET("/repositories/:id/packages", h.QueryRepository)

	r.GET("/containers/presets", h.ListPresets)
	r.GET("/containers/:name/count", h.CountInstances)
	r.GET("/containers/:name/decision", h.DecideLaunch)
	r.POST("/containers/:name/launch", append(guard, h.LaunchContainer)...)

	r.GET("/sessions", h.ListSessions)
	r.GET("/sessions/:id", h.GetSession)
	r.DELETE("/sessions/:id", h.KillSession)
	r.POST("/sessions/:id/input", h.SessionInput)
	r.POST("/sessions/:id/resize", h.ResizeSession)
	r.GET("/sessions/:id/output", h.SessionOutput)

	r.GET("/services", h.ListServices)
	r.POST("/services/discover", h.DiscoverServices)
	r.POST("/services/execute", h.ExecuteService)

	r.POST("/logs", h.StreamLogs)
}
