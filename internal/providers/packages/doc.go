// Package packages exposes the repository catalog through the service registry.
//
// Tools:
//   - packages.catalog: current catalog, or one repository with "repository"
//   - packages.refresh: rebuild the catalog
//   - packages.repositories: enumerate repositories
//   - packages.query: package names of one repository
package packages
