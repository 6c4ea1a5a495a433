// Package logging provides structured logging using uber/zap.
//
// This package offers production-ready logging with two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Output goes to stderr by default so the sysmgr CLI can keep stdout for
// catalog data.
//
// Example Usage:
//
//	logger := logging.NewFromSettings("info", false)
//	logger.Info("Catalog built", zap.Int("repositories", 12))
//	logger.Warn("Repository query failed", zap.String("repo", id), zap.Error(err))
package logging
