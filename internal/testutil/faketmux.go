package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// fakeTmuxScript records its argv and stdin, then replies according to
// FAKE_TMUX_* environment variables.
const fakeTmuxScript = `#!/bin/sh
: > "$FAKE_TMUX_DIR/args"
for a in "$@"; do
	printf '%s\n' "$a" >> "$FAKE_TMUX_DIR/args"
done
cat > "$FAKE_TMUX_DIR/stdin"
if [ -n "$FAKE_TMUX_SLEEP" ]; then
	sleep "$FAKE_TMUX_SLEEP"
fi
printf '%s' "$FAKE_TMUX_STDOUT"
printf '%s' "$FAKE_TMUX_STDERR" >&2
exit "${FAKE_TMUX_EXIT:-0}"
`

// FakeTmux is a shell script standing in for the tmux binary.
type FakeTmux struct {
	Path string
	dir  string
	t    *testing.T
}

// NewFakeTmux writes the fake binary into a temp dir and points
// FAKE_TMUX_DIR at it. Uses t.Setenv, so callers must not be parallel.
func NewFakeTmux(t *testing.T) *FakeTmux {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tmux is a POSIX shell script")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "tmux")
	if err := os.WriteFile(path, []byte(fakeTmuxScript), 0755); err != nil { //nolint:gosec // test binary must be executable
		t.Fatalf("writing fake tmux: %v", err)
	}
	t.Setenv("FAKE_TMUX_DIR", dir)
	for _, k := range []string{"FAKE_TMUX_STDOUT", "FAKE_TMUX_STDERR", "FAKE_TMUX_EXIT", "FAKE_TMUX_SLEEP"} {
		t.Setenv(k, "")
	}
	return &FakeTmux{Path: path, dir: dir, t: t}
}

// Reply sets what the next invocations print and their exit status.
func (f *FakeTmux) Reply(stdout, stderr string, exit string) {
	f.t.Setenv("FAKE_TMUX_STDOUT", stdout)
	f.t.Setenv("FAKE_TMUX_STDERR", stderr)
	f.t.Setenv("FAKE_TMUX_EXIT", exit)
}

// Sleep makes the next invocations block for the given sleep(1) duration.
func (f *FakeTmux) Sleep(d string) {
	f.t.Setenv("FAKE_TMUX_SLEEP", d)
}

// Args returns the argv of the last invocation.
func (f *FakeTmux) Args() []string {
	f.t.Helper()
	data, err := os.ReadFile(filepath.Join(f.dir, "args"))
	if err != nil {
		f.t.Fatalf("reading fake tmux args: %v", err)
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

// Stdin returns what the last invocation read from standard input.
func (f *FakeTmux) Stdin() string {
	f.t.Helper()
	data, err := os.ReadFile(filepath.Join(f.dir, "stdin"))
	if err != nil {
		f.t.Fatalf("reading fake tmux stdin: %v", err)
	}
	return string(data)
}
