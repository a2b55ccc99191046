// Package gateway exposes a fixed set of terminal operations on an
// allowlisted set of tmux sessions.
//
// Every session-scoped operation checks the allowlist first, then validates
// its arguments, and only then issues tmux invocations, one after another.
// The gateway keeps no per-session state: whether a session is in copy mode
// is left entirely to tmux.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/steveyegge/shelluse/internal/debug"
	"github.com/steveyegge/shelluse/internal/telemetry"
	"github.com/steveyegge/shelluse/internal/tmux"
)

// Direction is a scroll direction.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection accepts exactly "up" or "down".
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Up, Down:
		return Direction(s), nil
	}
	return "", &InvalidArgumentError{Name: "direction", Value: fmt.Sprintf("%q", s), Reason: `must be "up" or "down"`}
}

// copy-mode commands for one half-page step.
func (d Direction) halfPage() string {
	if d == Up {
		return "halfpage-up"
	}
	return "halfpage-down"
}

// bufferPrefix names the transfer buffers used by SendText.
const bufferPrefix = "shelluse-"

// Gateway drives allowlisted tmux sessions through a Runner.
// It is safe for concurrent use; calls on the same session are not
// serialized.
type Gateway struct {
	allowed []string
	runner  tmux.Runner

	// newBufferName is swapped in tests for deterministic buffer names.
	newBufferName func() string
}

// New creates a Gateway over the given allowlist. The slice is copied.
func New(allowed []string, runner tmux.Runner) (*Gateway, error) {
	if len(allowed) == 0 {
		return nil, ErrEmptyAllowlist
	}
	if runner == nil {
		return nil, errors.New("gateway: nil runner")
	}
	return &Gateway{
		allowed: slices.Clone(allowed),
		runner:  runner,
		newBufferName: func() string {
			return bufferPrefix + uuid.NewString()
		},
	}, nil
}

// ListSessions returns the allowed session names in configured order.
// No tmux call is made; liveness is not checked.
func (g *Gateway) ListSessions() []string {
	return slices.Clone(g.allowed)
}

// Allowed reports whether session is on the allowlist (exact match).
func (g *Gateway) Allowed(session string) bool {
	return slices.Contains(g.allowed, session)
}

func (g *Gateway) checkSession(session string) error {
	if g.Allowed(session) {
		return nil
	}
	return &UnauthorizedError{Session: session, Allowed: g.ListSessions()}
}

func (g *Gateway) run(ctx context.Context, req tmux.Request) (string, error) {
	return g.runner.Run(ctx, req)
}

// finish records the outcome of an operation and returns err unchanged.
func finish(ctx context.Context, op, session string, err error) error {
	telemetry.RecordOperation(ctx, op, session, Kind(err), err)
	if err != nil {
		debug.Log("gateway", "%s %s: %v", op, session, err)
	}
	return err
}

// Capture returns the visible screen of session, extended scrollBack lines
// into history. Output is returned exactly as tmux prints it.
func (g *Gateway) Capture(ctx context.Context, session string, scrollBack int) (out string, err error) {
	defer func() {
		telemetry.RecordPaneRead(ctx, session, scrollBack, len(out), err)
		err = finish(ctx, "capture", session, err)
	}()

	if err := g.checkSession(session); err != nil {
		return "", err
	}
	if scrollBack < 0 {
		return "", &InvalidArgumentError{Name: "scroll_back", Value: scrollBack, Reason: "must be >= 0"}
	}
	return g.run(ctx, tmux.Command("capture-pane", "-t", session, "-p", "-S", fmt.Sprintf("-%d", scrollBack)))
}

// SendKeys submits keys in tmux key notation ("Enter", "C-c", "Escape", ...).
// The string is passed through verbatim.
func (g *Gateway) SendKeys(ctx context.Context, session, keys string) (err error) {
	defer func() {
		telemetry.RecordInput(ctx, session, "keys", len(keys), err)
		err = finish(ctx, "send_keys", session, err)
	}()

	if err := g.checkSession(session); err != nil {
		return err
	}
	_, err = g.run(ctx, tmux.Command("send-keys", "-t", session, keys))
	return err
}

// SendText delivers text literally through a transfer buffer: the buffer is
// loaded from stdin, pasted into the session, and deleted by the paste.
//
// With bracketed set the paste uses bracketed-paste mode, so programs that
// support it (editors, modern REPLs) receive embedded newlines as data.
// Without it a shell treats each newline as a submitted line.
func (g *Gateway) SendText(ctx context.Context, session, text string, bracketed bool) (err error) {
	defer func() {
		telemetry.RecordInput(ctx, session, "text", len(text), err)
		err = finish(ctx, "send_text", session, err)
	}()

	if err := g.checkSession(session); err != nil {
		return err
	}

	buf := g.newBufferName()
	if _, err := g.run(ctx, tmux.CommandWithInput(text, "load-buffer", "-b", buf, "-")); err != nil {
		return err
	}

	args := []string{"paste-buffer", "-b", buf, "-d"}
	if bracketed {
		args = append(args, "-p")
	}
	args = append(args, "-t", session)
	if _, err := g.run(ctx, tmux.Command(args...)); err != nil {
		// Paste failed before -d could take effect; drop the buffer so
		// the payload does not linger on the server.
		_, _ = g.run(context.WithoutCancel(ctx), tmux.Command("delete-buffer", "-b", buf))
		return err
	}
	return nil
}

// Scroll enters copy mode and moves amount half pages in direction.
// direction must be "up" or "down"; amount must be at least 1.
func (g *Gateway) Scroll(ctx context.Context, session string, direction Direction, amount int) (err error) {
	defer func() { err = finish(ctx, "scroll", session, err) }()

	if err := g.checkSession(session); err != nil {
		return err
	}
	if amount < 1 {
		return &InvalidArgumentError{Name: "amount", Value: amount, Reason: "must be >= 1"}
	}
	if _, err := ParseDirection(string(direction)); err != nil {
		return err
	}

	if _, err := g.run(ctx, tmux.Command("copy-mode", "-t", session)); err != nil {
		return err
	}
	step := direction.halfPage()
	for i := 0; i < amount; i++ {
		if _, err := g.run(ctx, tmux.Command("send-keys", "-t", session, "-X", step)); err != nil {
			return err
		}
	}
	return nil
}

// ExitScrollMode leaves copy mode. tmux decides what happens if the session
// is not in copy mode.
func (g *Gateway) ExitScrollMode(ctx context.Context, session string) (err error) {
	defer func() { err = finish(ctx, "exit_scroll_mode", session, err) }()

	if err := g.checkSession(session); err != nil {
		return err
	}
	_, err = g.run(ctx, tmux.Command("send-keys", "-t", session, "-X", "cancel"))
	return err
}
