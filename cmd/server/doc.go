// Package main is the entry point for the System Manager backend server.
//
// The server backs the Oreon System Manager panel: it builds the package
// repository catalog from the system package manager and resumes or creates
// development containers on request.
//
// Architecture:
//
//	Panel (GTK / web) → Go Backend → dnf repolist / repoquery
//	                              → pkexec docker ps | grep | wc
//	                              → kitty sudo docker start|run
//
// The server provides:
//   - REST API for the catalog, repositories and container launches
//   - WebSocket streaming for PTY-hosted container sessions
//   - Service provider registry
//   - Prometheus metrics and rate limiting
//
// Configuration:
//   - Environment variables (12-factor), see internal/infrastructure/config
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Production mode
//	./server -port 8000
//
//	# Development mode (colored logs)
//	./server -dev -launch-mode pty
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
