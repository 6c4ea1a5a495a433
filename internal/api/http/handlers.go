package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/containers"
	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/containers/presets"
	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/containers/session"
	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/packages"
	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/service"
	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/process"
	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/SystemManager/backend/internal/shared/utils"
)

// Version is reported by the status endpoints
const Version = "0.3.0"

// Deps are the components the handlers serve
type Deps struct {
	Registry   *service.Registry
	Catalog    *packages.Store
	Lister     packages.RepositoryLister
	Querier    packages.PackageQuerier
	Resolver   *containers.Resolver
	Presets    []presets.Preset
	Sessions   *session.Manager
	Guards     []*process.Guard
	Metrics    *monitoring.Metrics
	Logger     *zap.Logger
	LaunchMode containers.Mode
}

// Handlers contains all HTTP handlers
type Handlers struct {
	registry   *service.Registry
	catalog    *packages.Store
	lister     packages.RepositoryLister
	querier    packages.PackageQuerier
	resolver   *containers.Resolver
	presets    []presets.Preset
	sessions   *session.Manager
	guards     []*process.Guard
	metrics    *monitoring.Metrics
	logger     *zap.Logger
	launchMode containers.Mode
	hasher     *utils.Hasher

	etagMu      sync.Mutex
	etagCatalog *packages.Catalog
	etag        string
}

// NewHandlers creates a new handler set
func NewHandlers(d Deps) *Handlers {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	mode := d.LaunchMode
	if mode == "" {
		mode = containers.ModeTerminal
	}
	return &Handlers{
		registry:   d.Registry,
		catalog:    d.Catalog,
		lister:     d.Lister,
		querier:    d.Querier,
		resolver:   d.Resolver,
		presets:    d.Presets,
		sessions:   d.Sessions,
		guards:     d.Guards,
		metrics:    d.Metrics,
		logger:     logger,
		launchMode: mode,
		hasher:     utils.DefaultHasher(),
	}
}

// Root handles the status check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "System Manager backend",
		"version": Version,
	})
}

// Health handles the detailed health check
func (h *Handlers) Health(c *gin.Context) {
	catalog := gin.H{"ready": false, "warming": h.catalog.Warming()}
	if current, ok := h.catalog.Current(); ok {
		catalog = gin.H{
			"ready":        true,
			"built_at":     current.BuiltAt,
			"repositories": len(current.Entries),
			"packages":     current.PackageCount(),
			"failures":     len(current.Failures),
		}
	}
	if err := h.catalog.LastError(); err != nil {
		catalog["last_error"] = err.Error()
	}

	sessions := 0
	if h.sessions != nil {
		sessions = len(h.sessions.List())
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"timestamp":        time.Now().Unix(),
		"catalog":          catalog,
		"sessions":         sessions,
		"breakers":         h.breakers(),
		"service_registry": h.registry.Stats(),
		"metrics":          h.metrics.Snapshot(),
	})
}

func (h *Handlers) breakers() []resilience.Status {
	out := []resilience.Status{}
	for _, g := range h.guards {
		out = append(out, g.Status()...)
	}
	return out
}
