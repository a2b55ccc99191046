//go:build windows

package tmux

import "os/exec"

// configureProcessGroup is a no-op on Windows; exec.CommandContext's default
// Kill already terminates the single child.
func configureProcessGroup(cmd *exec.Cmd) {}
