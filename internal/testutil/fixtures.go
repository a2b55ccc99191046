// Package testutil holds fixtures shared by shelluse tests: an isolated
// tmux server for integration tests and a scriptable fake tmux binary for
// runner tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// HasTmux reports whether a real tmux binary is on PATH.
func HasTmux() bool {
	_, err := exec.LookPath("tmux")
	return err == nil
}

// TmuxServer is a private tmux server reachable only through its socket,
// so tests never touch the user's sessions.
type TmuxServer struct {
	Socket string
	t      *testing.T
}

// NewTmuxServer starts nothing by itself; the server comes up with the
// first NewSession call and is killed on test cleanup. Skips the test when
// tmux is not installed.
func NewTmuxServer(t *testing.T) *TmuxServer {
	t.Helper()
	if runtime.GOOS == "windows" || !HasTmux() {
		t.Skip("tmux not installed")
	}

	// Unix socket paths are length limited; t.TempDir() can be too deep.
	dir, err := os.MkdirTemp("", "su")
	if err != nil {
		t.Fatalf("creating socket dir: %v", err)
	}
	s := &TmuxServer{Socket: filepath.Join(dir, "tmux.sock"), t: t}
	t.Cleanup(func() {
		_ = exec.Command("tmux", "-S", s.Socket, "kill-server").Run()
		_ = os.RemoveAll(dir)
	})
	return s
}

// NewSession creates a detached 80x24 session running command.
func (s *TmuxServer) NewSession(name, command string) {
	s.t.Helper()
	args := []string{"-S", s.Socket, "new-session", "-d", "-s", name, "-x", "80", "-y", "24"}
	if command != "" {
		args = append(args, command)
	}
	out, err := exec.Command("tmux", args...).CombinedOutput()
	if err != nil {
		s.t.Fatalf("new-session %s: %v: %s", name, err, out)
	}
}

// PaneInMode reports whether the session's active pane is in copy mode.
func (s *TmuxServer) PaneInMode(name string) bool {
	s.t.Helper()
	out, err := exec.Command("tmux", "-S", s.Socket, "display-message", "-p", "-t", name, "#{pane_in_mode}").Output()
	if err != nil {
		s.t.Fatalf("display-message %s: %v", name, err)
	}
	return len(out) > 0 && out[0] == '1'
}

// Buffers lists the paste buffer names currently held by the server.
func (s *TmuxServer) Buffers() []string {
	s.t.Helper()
	out, _ := exec.Command("tmux", "-S", s.Socket, "list-buffers", "-F", "#{buffer_name}").Output()
	return strings.Fields(string(out))
}
