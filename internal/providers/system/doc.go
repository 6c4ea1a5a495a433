// Package system provides the system service: host information and a
// preflight check of the external programs (package manager, elevation
// helpers, container tool, terminal emulator) the panel depends on.
package system
