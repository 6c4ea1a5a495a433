// Package monitoring provides Prometheus metrics for the system manager backend.
//
// Every Metrics value owns its registry, so tests and the CLI can build as
// many as they like without colliding on the default registerer.
//
// Tracked:
//   - HTTP requests (by route template)
//   - External process invocations (program, outcome, duration)
//   - Catalog builds and the size of the current catalog
//   - Container launches by decision and mode, active PTY sessions
//
// All Record* methods are safe on a nil *Metrics.
package monitoring
