// Package config provides 12-factor configuration management for the system manager backend.
//
// Configuration is loaded from environment variables with sensible defaults.
// Flags in cmd/server override the listen address.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Packages: Package manager binary, query timeout, fan-out workers, repository globs
//   - Containers: Container tool, elevation helpers, terminal emulator, launch defaults
//   - Breaker: When a program that cannot start or keeps timing out fails fast
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST, LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - PKG_MANAGER, PKG_TIMEOUT, PKG_WORKERS, PKG_WARM, PKG_REPO_INCLUDE, PKG_REPO_EXCLUDE
//   - CONTAINER_TOOL, CONTAINER_LIST_ELEVATE, CONTAINER_LAUNCH_ELEVATE, CONTAINER_TERMINAL
//   - CONTAINER_HOSTNAME, CONTAINER_LOCALE, CONTAINER_SHELL, CONTAINER_TIMEOUT
//   - CONTAINER_LIST_SOURCE, CONTAINER_MATCH, CONTAINER_LAUNCH_MODE, CONTAINER_PRESETS
//   - BREAKER_THRESHOLD, BREAKER_COOLDOWN
package config
