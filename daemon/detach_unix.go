//go:build !windows

package daemon

import (
	"os/exec"
	"syscall"
)

// detach configures cmd to start in its own session, so it survives the
// launching client's exit (§4.9 "spawns a detached child").
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
