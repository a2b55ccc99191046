package testutil

import (
	"strings"
	"testing"
	"time"
)

// WaitForContent polls capture until its output contains want or timeout
// elapses. Returns the last captured content and whether want was seen.
func WaitForContent(t *testing.T, capture func() (string, error), want string, timeout time.Duration) (string, bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)

	var last string
	for time.Now().Before(deadline) {
		out, err := capture()
		if err == nil {
			last = out
			if strings.Contains(out, want) {
				return out, true
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return last, false
}

// Truncate flattens newlines and shortens s for log output.
func Truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", "\\n")
	if len(s) > n {
		return s[:n]
	}
	return s
}
