// Package exitcode defines structured exit codes for shelluse commands.
// These codes let agents and scripts branch on the failure kind without
// parsing error messages.
//
// # Exit Code Ranges
//
//   - 0: Success
//   - 1-9: General errors (usage, internal, configuration)
//   - 10-19: Resource not found (tmux binary)
//   - 20-29: Permission/access errors (session not allowlisted)
//   - 40-49: Timeout errors
//   - 50-59: Conflict/state errors (session lock busy)
//   - 60-69: tmux command failures
//
// # Usage
//
//	return exitcode.Usage("send-text needs text")
//	code := exitcode.Code(exitcode.FromError(err))
package exitcode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/steveyegge/shelluse/internal/gateway"
	"github.com/steveyegge/shelluse/internal/lock"
	"github.com/steveyegge/shelluse/internal/tmux"
)

// Exit codes for shelluse commands.
const (
	// Success indicates the command completed successfully.
	Success = 0

	// General errors (1-9)
	ErrGeneral = 1 // General/unknown error
	ErrUsage   = 2 // Invalid arguments or usage
	ErrConfig  = 4 // Missing or invalid configuration

	// Resource not found (10-19)
	ErrBinaryNotFound = 13 // tmux executable missing or unstartable

	// Permission/access errors (20-29)
	ErrUnauthorized = 20 // Session not in the allowlist

	// Timeout errors (40-49)
	ErrTimeout = 40 // Operation timed out

	// Conflict/state errors (50-59)
	ErrBusy = 52 // Session lock held by another caller

	// tmux failures (60-69)
	ErrCommandFailed   = 60 // tmux ran and exited non-zero
	ErrNoServer        = 61 // tmux server not running / socket unreachable
	ErrSessionNotFound = 62 // allowlisted session does not exist on the server
)

// Error wraps an error with a specific exit code.
type Error struct {
	Code    int
	Message string
	Cause   error
}

// Error returns the error message. An Error with no message of its own
// reports its cause verbatim.
func (e *Error) Error() string {
	if e.Message == "" && e.Cause != nil {
		return e.Cause.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new coded error.
func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap wraps an existing error with a code and message.
func Wrap(code int, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Wrapf wraps an existing error with a code and printf-style message.
func Wrapf(code int, cause error, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Code extracts the exit code from an error.
// Returns ErrGeneral (1) if the error doesn't have a code.
func Code(err error) int {
	if err == nil {
		return Success
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ErrGeneral
}

// FromError assigns an exit code to a gateway or runner error. Errors that
// already carry a code are returned unchanged. The result prints exactly as
// err does and still matches it with errors.Is/As.
func FromError(err error) error {
	if err == nil {
		return nil
	}
	var coded *Error
	if errors.As(err, &coded) {
		return err
	}

	code := ErrGeneral
	switch {
	case errors.Is(err, gateway.ErrUnauthorizedSession):
		code = ErrUnauthorized
	case errors.Is(err, gateway.ErrInvalidArgument):
		code = ErrUsage
	case errors.Is(err, gateway.ErrEmptyAllowlist):
		code = ErrConfig
	case errors.Is(err, lock.ErrBusy):
		code = ErrBusy
	case errors.Is(err, tmux.ErrBinaryNotFound):
		code = ErrBinaryNotFound
	case tmux.IsNoServer(err):
		code = ErrNoServer
	case tmux.IsSessionNotFound(err):
		code = ErrSessionNotFound
	case errors.Is(err, tmux.ErrCommandFailed):
		code = ErrCommandFailed
	case errors.Is(err, context.DeadlineExceeded):
		code = ErrTimeout
	}
	return &Error{Code: code, Cause: err}
}

// Convenience constructors.

// Usage returns an invalid-usage error.
func Usage(msg string) *Error {
	return New(ErrUsage, msg)
}

// Timeout reports that operation hit the --timeout deadline d.
func Timeout(operation string, d time.Duration, cause error) *Error {
	return Wrapf(ErrTimeout, cause, "%s timed out after %s", operation, d)
}
