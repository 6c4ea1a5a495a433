package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/SystemManager/backend/internal/api/http"
	"github.com/GriffinCanCode/SystemManager/backend/internal/api/middleware"
	"github.com/GriffinCanCode/SystemManager/backend/internal/api/ws"
	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/containers"
	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/containers/presets"
	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/containers/session"
	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/packages"
	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/service"
	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/process"
	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/tracing"
	containerProvider "github.com/GriffinCanCode/SystemManager/backend/internal/providers/containers"
	packageProvider "github.com/GriffinCanCode/SystemManager/backend/internal/providers/packages"
	systemProvider "github.com/GriffinCanCode/SystemManager/backend/internal/providers/system"
)

// shutdownTimeout bounds how long in-flight requests may take to finish
const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	httpSrv  *http.Server
	registry *service.Registry
	catalog  *packages.Store
	sessions *session.Manager
	tracer   *tracing.Tracer
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// Components are the domain services assembled from configuration. The CLI
// builds the same set without the HTTP layer.
type Components struct {
	Metrics  *monitoring.Metrics
	Guards   []*process.Guard
	Lister   packages.RepositoryLister
	Querier  packages.PackageQuerier
	Catalog  *packages.Store
	Sessions *session.Manager
	Launcher *containers.Launcher
	Resolver *containers.Resolver
	Presets  []presets.Preset
	Mode     containers.Mode
	// Programs are the external executables the domains shell out to
	Programs []string
}

// Build wires the package and container domains from cfg
func Build(cfg *config.Config, logger *zap.Logger, metrics *monitoring.Metrics) (*Components, error) {
	base := process.NewExec(logger.Named("process"), 0).WithMetrics(metrics)

	pkgRunner := process.NewGuard(base.WithTimeout(cfg.Packages.Timeout), logger, cfg.Breaker.Threshold, cfg.Breaker.Cooldown)
	ctrRunner := process.NewGuard(base.WithTimeout(cfg.Containers.Timeout), logger, cfg.Breaker.Threshold, cfg.Breaker.Cooldown)

	filter, err := packages.NewFilter(cfg.Packages.Include, cfg.Packages.Exclude)
	if err != nil {
		return nil, fmt.Errorf("repository filter: %w", err)
	}

	lister := packages.NewEnumerator(pkgRunner, cfg.Packages.Manager)
	querier := packages.NewQuerier(pkgRunner, cfg.Packages.Manager)
	builder := packages.NewBuilder(lister, querier, logger.Named("catalog")).
		WithWorkers(cfg.Packages.Workers).
		WithFilter(filter).
		WithMetrics(metrics)
	catalog := packages.NewStore(builder, logger.Named("catalog"))

	list, err := presets.Load(cfg.Containers.Presets)
	if err != nil {
		return nil, fmt.Errorf("container presets: %w", err)
	}

	opts := containers.Options{
		Tool:          cfg.Containers.Tool,
		ListElevate:   cfg.Containers.ListElevate,
		LaunchElevate: cfg.Containers.LaunchElevate,
		Terminal:      cfg.Containers.Terminal,
		Hostname:      cfg.Containers.Hostname,
		Locale:        cfg.Containers.Locale,
		Shell:         cfg.Containers.Shell,
		Source:        containers.Source(cfg.Containers.ListSource),
		Match:         containers.Match(cfg.Containers.Match),
	}
	sessions := session.NewManager(logger.Named("session"), metrics)
	counter := containers.NewCounter(ctrRunner, opts)
	launcher := containers.NewLauncher(ctrRunner, sessions, opts, logger.Named("launcher")).WithMetrics(metrics)
	resolver := containers.NewResolver(counter, launcher, logger.Named("containers"))

	return &Components{
		Metrics:  metrics,
		Guards:   []*process.Guard{pkgRunner, ctrRunner},
		Lister:   lister,
		Querier:  querier,
		Catalog:  catalog,
		Sessions: sessions,
		Launcher: launcher,
		Resolver: resolver,
		Presets:  list,
		Mode:     containers.Mode(cfg.Containers.LaunchMode),
		Programs: []string{
			cfg.Packages.Manager,
			cfg.Containers.ListElevate,
			cfg.Containers.Tool,
			cfg.Containers.LaunchElevate,
			cfg.Containers.Terminal,
		},
	}, nil
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger := logging.NewFromSettings(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("Initializing System Manager backend",
		zap.String("port", cfg.Server.Port),
		zap.String("package_manager", cfg.Packages.Manager),
		zap.String("container_tool", cfg.Containers.Tool),
		zap.String("launch_mode", cfg.Containers.LaunchMode),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("backend", logger.Logger)

	comp, err := Build(cfg, logger.Logger, metrics)
	if err != nil {
		tracer.Close()
		return nil, err
	}

	registry := service.NewRegistry()
	registerProviders(registry, comp, logger.Logger)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	var guard []gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
		guard = append(guard, middleware.GlobalRateLimit(middleware.LaunchRateLimitConfig()))
	}

	handlers := apihttp.NewHandlers(apihttp.Deps{
		Registry:   registry,
		Catalog:    comp.Catalog,
		Lister:     comp.Lister,
		Querier:    comp.Querier,
		Resolver:   comp.Resolver,
		Presets:    comp.Presets,
		Sessions:   comp.Sessions,
		Guards:     comp.Guards,
		Metrics:    metrics,
		Logger:     logger.Named("api"),
		LaunchMode: comp.Mode,
	})
	handlers.Register(router, guard...)

	wsHandler := ws.NewHandler(comp.Sessions, logger.Named("ws"))
	router.GET("/sessions/:id/stream", wsHandler.HandleSession)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Packages.Warm {
		comp.Catalog.Warm(context.Background())
	}

	logger.Info("Server initialized successfully")

	return &Server{
		router:   router,
		registry: registry,
		catalog:  comp.Catalog,
		sessions: comp.Sessions,
		tracer:   tracer,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// Router exposes the configured engine
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves until ctx is canceled, then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	// PTY sessions are children of this process; terminal-mode launches are not
	s.sessions.Shutdown()
	s.tracer.Close()

	s.logger.Sync()
	return nil
}

func registerProviders(registry *service.Registry, comp *Components, logger *zap.Logger) {
	providers := []service.Provider{
		packageProvider.NewProvider(comp.Catalog, comp.Lister, comp.Querier),
		containerProvider.NewProvider(comp.Resolver, comp.Presets, comp.Mode),
		systemProvider.NewProvider(comp.Programs, comp.Guards...),
	}
	for _, p := range providers {
		if err := registry.Register(p); err != nil {
			logger.Warn("Failed to register provider",
				zap.String("service", p.Definition().ID),
				zap.Error(err))
		}
	}
}
