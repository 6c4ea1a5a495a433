// Package containers decides whether a container button resumes an existing
// instance or creates a new one, and launches the result.
//
// Counter runs the three-stage pipeline
//
//	<elevate> <tool> ps -a --format {{.Names}} | grep -F -x -- <name> | wc -l
//
// and parses the count. Resolver turns the count into a Decision
// (count > 0 resumes, 0 creates) and hands it to Launcher, which either
// spawns the interactive command detached inside a terminal emulator or
// hosts it in a backend PTY session.
//
// Nothing is cached: every launch counts again.
package containers
