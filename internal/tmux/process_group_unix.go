//go:build !windows

package tmux

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// configureProcessGroup starts tmux in its own process group and makes
// context cancellation kill the whole group, so a cancelled call never
// leaves a client process behind.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return killProcessGroup(cmd.Process.Pid)
	}
}

// killProcessGroup sends SIGKILL to the group led by pgid.
func killProcessGroup(pgid int) error {
	err := unix.Kill(-pgid, unix.SIGKILL)
	if err == unix.ESRCH {
		return nil
	}
	return err
}
