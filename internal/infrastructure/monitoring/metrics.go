package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// External process metrics
	ProcessRuns     *prometheus.CounterVec
	ProcessDuration *prometheus.HistogramVec

	// Catalog metrics
	CatalogBuilds       *prometheus.CounterVec
	CatalogRepositories prometheus.Gauge
	CatalogPackages     prometheus.Gauge
	CatalogFailures     prometheus.Gauge

	// Container metrics
	Launches       *prometheus.CounterVec
	SessionsActive prometheus.Gauge

	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot Snapshot

	mu sync.RWMutex
}

// Snapshot holds current metric values for the JSON health endpoint
type Snapshot struct {
	TotalRequests  int64   `json:"total_requests"`
	TotalErrors    int64   `json:"total_errors"`
	ProcessRuns    int64   `json:"process_runs"`
	ProcessErrors  int64   `json:"process_errors"`
	Launches       int64   `json:"launches"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	LastCatalogAge float64 `json:"last_catalog_age_seconds"`

	lastCatalog time.Time
}

// NewMetrics creates a new metrics collector backed by its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sysmgr_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sysmgr_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "path"},
		),

		ProcessRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sysmgr_process_runs_total",
				Help: "Total number of external process invocations",
			},
			[]string{"program", "outcome"},
		),
		ProcessDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sysmgr_process_duration_seconds",
				Help:    "External process duration in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"program"},
		),

		CatalogBuilds: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sysmgr_catalog_builds_total",
				Help: "Total number of catalog builds",
			},
			[]string{"status"},
		),
		CatalogRepositories: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sysmgr_catalog_repositories",
				Help: "Number of repositories in the current catalog",
			},
		),
		CatalogPackages: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sysmgr_catalog_packages",
				Help: "Number of package entries in the current catalog",
			},
		),
		CatalogFailures: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sysmgr_catalog_failed_repositories",
				Help: "Number of repositories skipped by the last catalog build",
			},
		),

		Launches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sysmgr_container_launches_total",
				Help: "Total number of container launch attempts",
			},
			[]string{"decision", "mode", "status"},
		),
		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sysmgr_sessions_active",
				Help: "Number of active PTY sessions",
			},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "sysmgr_uptime_seconds",
			Help: "Backend uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Handler exposes the registry in Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRequests++
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordProcess records one external process invocation
func (m *Metrics) RecordProcess(program, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ProcessRuns.WithLabelValues(program, outcome).Inc()
	m.ProcessDuration.WithLabelValues(program).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.ProcessRuns++
	if outcome != "ok" {
		m.snapshot.ProcessErrors++
	}
	m.mu.Unlock()
}

// RecordCatalog records the shape of a finished catalog build
func (m *Metrics) RecordCatalog(repositories, packages, failures int) {
	if m == nil {
		return
	}
	status := "complete"
	if failures > 0 {
		status = "partial"
	}
	m.CatalogBuilds.WithLabelValues(status).Inc()
	m.CatalogRepositories.Set(float64(repositories))
	m.CatalogPackages.Set(float64(packages))
	m.CatalogFailures.Set(float64(failures))

	m.mu.Lock()
	m.snapshot.lastCatalog = time.Now()
	m.mu.Unlock()
}

// RecordCatalogError records a catalog build that produced nothing
func (m *Metrics) RecordCatalogError() {
	if m == nil {
		return
	}
	m.CatalogBuilds.WithLabelValues("failed").Inc()
}

// RecordLaunch records a container launch attempt
func (m *Metrics) RecordLaunch(decision, mode, status string) {
	if m == nil {
		return
	}
	m.Launches.WithLabelValues(decision, mode, status).Inc()

	m.mu.Lock()
	m.snapshot.Launches++
	m.mu.Unlock()
}

// SetSessionsActive sets the number of active PTY sessions
func (m *Metrics) SetSessionsActive(count int) {
	if m == nil {
		return
	}
	m.SessionsActive.Set(float64(count))
}

// Snapshot returns a copy of the JSON-facing counters
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := m.snapshot
	snap.UptimeSeconds = time.Since(m.startTime).Seconds()
	if !snap.lastCatalog.IsZero() {
		snap.LastCatalogAge = time.Since(snap.lastCatalog).Seconds()
	}
	return snap
}
