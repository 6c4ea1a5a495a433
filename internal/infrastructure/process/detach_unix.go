//go:build unix

package process

import (
	"os/exec"
	"syscall"
)

// detach puts the child in its own session so it survives the backend and
// never receives the backend's terminal signals.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
