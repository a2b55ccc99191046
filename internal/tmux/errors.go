package tmux

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Failure kinds. Every error returned by a Runner matches exactly one of
// these with errors.Is, unless the caller's context ended first.
var (
	ErrBinaryNotFound = errors.New("tmux binary not found")
	ErrCommandFailed  = errors.New("tmux command failed")
)

// BinaryNotFoundError reports that the tmux executable could not be located
// or started.
type BinaryNotFoundError struct {
	Binary string
	Cause  error
}

func (e *BinaryNotFoundError) Error() string {
	return fmt.Sprintf("tmux binary not found at %s", e.Binary)
}

// Unwrap exposes both the sentinel and the underlying start error.
func (e *BinaryNotFoundError) Unwrap() []error {
	return []error{ErrBinaryNotFound, e.Cause}
}

// CommandError reports a tmux invocation that ran and exited non-zero.
// Message is the best available diagnostic: trimmed stderr, else trimmed
// stdout, else a generic description of the exit.
type CommandError struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Message  string
}

func (e *CommandError) Error() string {
	if len(e.Args) == 0 {
		return "tmux: " + e.Message
	}
	return fmt.Sprintf("tmux %s: %s", e.Args[0], e.Message)
}

func (e *CommandError) Unwrap() error {
	return ErrCommandFailed
}

// translateError classifies a failed cmd.Run. The three-tier diagnostic
// fallback lives here so every operation reports failures the same way.
func translateError(ctx context.Context, bin string, args []string, runErr error, stdout, stderr string) error {
	sub := "command"
	if len(args) > 0 {
		sub = args[0]
	}

	// Only a child that never ran or was killed reports the context reason.
	// One that exited on its own as the deadline passed keeps its diagnostic.
	var exitErr *exec.ExitError
	exited := errors.As(runErr, &exitErr)
	if ctxErr := ctx.Err(); ctxErr != nil && (!exited || exitErr.ExitCode() == -1) {
		return fmt.Errorf("tmux %s: %w", sub, ctxErr)
	}

	if !exited {
		// Anything that stopped the process from starting: missing binary,
		// not executable, bad interpreter.
		return &BinaryNotFoundError{Binary: bin, Cause: runErr}
	}

	code := exitErr.ExitCode()
	msg := strings.TrimSpace(stderr)
	if msg == "" {
		msg = strings.TrimSpace(stdout)
	}
	if msg == "" {
		msg = fmt.Sprintf("tmux %s exited with status %d", sub, code)
	}

	return &CommandError{
		Args:     append([]string(nil), args...),
		ExitCode: code,
		Stdout:   stdout,
		Stderr:   stderr,
		Message:  msg,
	}
}

// IsNoServer reports whether err is a command failure caused by the tmux
// server not running (or its socket being unreachable).
func IsNoServer(err error) bool {
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	m := cmdErr.Message
	return strings.Contains(m, "no server running") ||
		strings.Contains(m, "error connecting to") ||
		strings.Contains(m, "server exited unexpectedly")
}

// IsSessionNotFound reports whether err is a command failure caused by the
// target session not existing on the server.
func IsSessionNotFound(err error) bool {
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	m := cmdErr.Message
	return strings.Contains(m, "can't find session") ||
		strings.Contains(m, "session not found") ||
		strings.Contains(m, "can't find pane")
}
