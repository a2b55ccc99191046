// Package debug provides timestamped debug logging for shelluse commands.
// Enable with SHELL_USE_DEBUG=1; the log path can be overridden with
// SHELL_USE_DEBUG_LOG.
package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	// EnvDebug enables debug logging when set to any non-empty value.
	EnvDebug = "SHELL_USE_DEBUG"

	// EnvDebugLog overrides the debug log file path.
	EnvDebugLog = "SHELL_USE_DEBUG_LOG"
)

var (
	enabled  bool
	logFile  *os.File
	mu       sync.Mutex
	initOnce sync.Once
)

// LogPath returns the file debug output is appended to.
func LogPath() string {
	if p := os.Getenv(EnvDebugLog); p != "" {
		return p
	}
	return filepath.Join(os.TempDir(), "shelluse-logs", "shelluse-debug.log")
}

// Init initializes debug logging. Called automatically on first Log call.
func Init() {
	initOnce.Do(func() {
		if os.Getenv(EnvDebug) == "" {
			return
		}
		enabled = true
		path := LogPath()
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "debug: could not create log dir: %v\n", err)
			return
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) //nolint:gosec // G304: path is operator supplied
		if err != nil {
			fmt.Fprintf(os.Stderr, "debug: could not open log file: %v\n", err)
			return
		}
		logFile = f
	})
}

// Enabled returns true if debug logging is enabled.
func Enabled() bool {
	Init()
	return enabled
}

// Log writes a timestamped debug message to the log file.
// Format: [YYYY-MM-DD HH:MM:SS.mmm] [pid] [component] message
func Log(component, format string, args ...interface{}) {
	Init()
	if !enabled {
		return
	}

	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(logFile, "[%s] [%d] [%s] %s\n", timestamp, os.Getpid(), component, msg)
	_ = logFile.Sync()
}

// LogStart logs the start of an operation and returns an id for correlation.
func LogStart(component, operation string) string {
	id := fmt.Sprintf("%d", time.Now().UnixNano()%100000)
	Log(component, "START %s (id=%s)", operation, id)
	return id
}

// LogEnd logs the end of an operation started with LogStart.
func LogEnd(component, operation, id string, err error) {
	if err != nil {
		Log(component, "END %s (id=%s) ERROR: %v", operation, id, err)
	} else {
		Log(component, "END %s (id=%s) OK", operation, id)
	}
}

// Close closes the log file. Call on program exit.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}
