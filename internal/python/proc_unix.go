//go:build unix

package python

import (
	"os/exec"
	"syscall"
)

// isolate starts the interpreter in its own process group so cancellation
// also reaches any processes the script spawned
func isolate(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
