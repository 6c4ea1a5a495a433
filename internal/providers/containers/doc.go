// Package containers exposes the container lifecycle resolver through the
// service registry.
//
// Tools:
//   - containers.presets: preset container buttons
//   - containers.count: instance count for a name
//   - containers.decide: resume or create, without launching
//   - containers.launch: decide and launch ("mode" is terminal or pty)
package containers
