//go:build unix

package launcher

import (
	"os/exec"
	"syscall"
)

// setupProcessAttributes starts the game in its own session so it survives
// the launcher's terminal.
func setupProcessAttributes(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
