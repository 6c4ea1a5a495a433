// Package service provides the registry that exposes the backend's
// capabilities as named tools ("packages.catalog", "containers.launch").
//
// Providers register a Definition listing their tools; Execute routes a
// tool id to the provider named by its prefix. The HTTP layer and the CLI
// both go through the registry, so a front end can drive every operation
// with a single execute call.
//
// Example Usage:
//
//	registry := service.NewRegistry()
//	registry.Register(packagesProvider)
//	result, err := registry.Execute(ctx, "packages.query", map[string]interface{}{"repository": "fedora"}, nil)
package service
