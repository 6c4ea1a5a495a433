package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/packages"
	"github.com/GriffinCanCode/SystemManager/backend/internal/shared/utils"
)

// retryAfterSeconds is suggested to clients polling during the startup build
const retryAfterSeconds = "5"

var errCatalogWarming = errors.New("catalog not ready: initial build in progress")

// GetCatalog returns the current catalog, or one repository with ?repo=.
// While the startup build runs it answers 503 instead of blocking; with no
// startup build it builds on demand.
func (h *Handlers) GetCatalog(c *gin.Context) {
	catalog, ok := h.catalog.Current()
	if !ok {
		if h.catalog.Warming() {
			c.Header("Retry-After", retryAfterSeconds)
			fail(c, http.StatusServiceUnavailable, errCatalogWarming)
			return
		}
		var err error
		catalog, err = h.catalog.Get(c.Request.Context())
		if err != nil {
			fail(c, http.StatusServiceUnavailable, fmt.Errorf("catalog not ready: %w", err))
			return
		}
	}

	if repo := c.Query("repo"); repo != "" {
		if err := utils.ValidateRepositoryID(repo); err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}
		pkgs, ok := catalog.Packages(repo)
		if !ok {
			fail(c, http.StatusNotFound, fmt.Errorf("repository not in catalog: %s", repo))
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"repository": repo,
			"packages":   pkgs,
			"count":      len(pkgs),
			"built_at":   catalog.BuiltAt,
		})
		return
	}

	if etag := h.catalogETag(c, catalog); etag != "" {
		c.Header("ETag", etag)
		if c.GetHeader("If-None-Match") == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	c.JSON(http.StatusOK, catalogBody(catalog))
}

// RefreshCatalog rebuilds the catalog and returns it
func (h *Handlers) RefreshCatalog(c *gin.Context) {
	catalog, err := h.catalog.Refresh(c.Request.Context())
	if err != nil {
		h.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogBody(catalog))
}

// ListRepositories enumerates configured repositories
func (h *Handlers) ListRepositories(c *gin.Context) {
	repos, err := h.lister.List(c.Request.Context())
	if err != nil {
		h.failErr(c, err)
		return
	}
	if repos == nil {
		repos = []packages.Repository{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"repositories": repos,
		"count":        len(repos),
	})
}

// QueryRepository lists the packages of one repository without touching the catalog
func (h *Handlers) QueryRepository(c *gin.Context) {
	repo := c.Param("id")
	if err := utils.ValidateRepositoryID(repo); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	pkgs, err := h.querier.Query(c.Request.Context(), repo)
	if err != nil {
		h.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"repository": repo,
		"packages":   pkgs,
		"count":      len(pkgs),
	})
}

func (h *Handlers) catalogETag(c *gin.Context, catalog *packages.Catalog) string {
	h.etagMu.Lock()
	defer h.etagMu.Unlock()

	if h.etagCatalog == catalog {
		return h.etag
	}
	etag, err := h.hasher.ETag(catalog)
	if err != nil {
		h.requestLogger(c).Warn("Failed to hash catalog", zap.Error(err))
		return ""
	}
	h.etagCatalog, h.etag = catalog, etag
	return etag
}

func catalogBody(c *packages.Catalog) gin.H {
	failures := c.Failures
	if failures == nil {
		failures = []packages.Failure{}
	}
	entries := c.Entries
	if entries == nil {
		entries = []packages.Entry{}
	}
	return gin.H{
		"success":       true,
		"repositories":  entries,
		"failures":      failures,
		"excluded":      c.Excluded,
		"partial":       c.Partial(),
		"package_count": c.PackageCount(),
		"built_at":      c.BuiltAt,
	}
}
