package gateway

import (
	"errors"
	"fmt"
	"strings"

	"github.com/steveyegge/shelluse/internal/tmux"
)

// Gateway-level failure kinds. Runner failures keep their own kinds
// (tmux.ErrBinaryNotFound, tmux.ErrCommandFailed) and pass through unchanged.
var (
	ErrUnauthorizedSession = errors.New("unauthorized session")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrEmptyAllowlist      = errors.New("allowed sessions must not be empty")
)

// UnauthorizedError names a session outside the allowlist.
type UnauthorizedError struct {
	Session string
	Allowed []string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("session %q is not in allowed list: [%s]", e.Session, strings.Join(e.Allowed, ", "))
}

func (e *UnauthorizedError) Unwrap() error { return ErrUnauthorizedSession }

// InvalidArgumentError reports an out-of-range or malformed parameter.
type InvalidArgumentError struct {
	Name   string
	Value  any
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Name, e.Value, e.Reason)
}

func (e *InvalidArgumentError) Unwrap() error { return ErrInvalidArgument }

// Kind names the taxonomy bucket err falls in: "unauthorized_session",
// "invalid_argument", "binary_not_found", "command_failed", or "other".
// Returns "" for a nil error.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorizedSession):
		return "unauthorized_session"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, tmux.ErrBinaryNotFound):
		return "binary_not_found"
	case errors.Is(err, tmux.ErrCommandFailed):
		return "command_failed"
	default:
		return "other"
	}
}
