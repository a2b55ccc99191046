// Package lock serializes shelluse invocations that target the same tmux
// session. Each session gets an advisory file lock; separate CLI processes
// driving one session take turns, different sessions never contend.
package lock

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/steveyegge/shelluse/internal/debug"
)

// ErrBusy is matched by errors for a lock another process holds.
var ErrBusy = errors.New("session lock held by another process")

// BusyError names the session whose lock is held elsewhere. Cause is set
// when a bounded wait ran out.
type BusyError struct {
	Session string
	Path    string
	Cause   error
}

func (e *BusyError) Error() string {
	msg := fmt.Sprintf("session %q is busy (lock held: %s)", e.Session, e.Path)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *BusyError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrBusy}
	}
	return []error{ErrBusy, e.Cause}
}

// retryDelay is the polling interval while waiting for a held lock.
const retryDelay = 50 * time.Millisecond

// Dir resolves the lock directory. An explicit dir wins, then
// $XDG_RUNTIME_DIR/shelluse, then a per-user directory under os.TempDir.
func Dir(configured string) string {
	if configured != "" {
		return configured
	}
	if rt := os.Getenv("XDG_RUNTIME_DIR"); rt != "" {
		return filepath.Join(rt, "shelluse")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("shelluse-%d", os.Getuid()))
}

// Path returns the lock file for session inside dir. Session names are
// escaped so any name maps to a single file in dir.
func Path(dir, session string) string {
	return filepath.Join(dir, "session-"+url.PathEscape(session)+".lock")
}

// SessionLock is a held per-session lock.
type SessionLock struct {
	session string
	fl      *flock.Flock
}

// Session returns the locked session name.
func (l *SessionLock) Session() string { return l.session }

// Path returns the lock file path.
func (l *SessionLock) Path() string { return l.fl.Path() }

// Release unlocks. Safe to call on a nil lock and more than once.
func (l *SessionLock) Release() error {
	if l == nil {
		return nil
	}
	debug.Log("lock", "release %s", l.session)
	return l.fl.Unlock()
}

func open(dir, session string) (*flock.Flock, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}
	return flock.New(Path(dir, session)), nil
}

// Acquire takes the session lock, waiting up to wait for another holder
// to let go. wait <= 0 tries exactly once. A lock still held when the wait
// runs out yields a *BusyError. If ctx ends first the error wraps ctx.Err()
// and does not match ErrBusy.
func Acquire(ctx context.Context, dir, session string, wait time.Duration) (*SessionLock, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("waiting for session %q lock: %w", session, err)
	}
	fl, err := open(dir, session)
	if err != nil {
		return nil, err
	}
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}
	if locked {
		debug.Log("lock", "acquired %s", session)
		return &SessionLock{session: session, fl: fl}, nil
	}
	if wait <= 0 {
		debug.Log("lock", "busy %s", session)
		return nil, &BusyError{Session: session, Path: fl.Path()}
	}

	wctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	locked, err = fl.TryLockContext(wctx, retryDelay)
	if locked {
		debug.Log("lock", "acquired %s after waiting", session)
		return &SessionLock{session: session, fl: fl}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("waiting for session %q lock: %w", session, ctxErr)
	}
	if wctxErr := wctx.Err(); wctxErr != nil {
		debug.Log("lock", "gave up waiting for %s after %s", session, wait)
		return nil, &BusyError{Session: session, Path: fl.Path(), Cause: fmt.Errorf("waited %s: %w", wait, wctxErr)}
	}
	return nil, fmt.Errorf("acquiring lock: %w", err)
}

// Held reports whether another process holds the session lock right now.
// It never creates the lock directory.
func Held(dir, session string) bool {
	if _, err := os.Stat(dir); err != nil {
		return false
	}
	fl := flock.New(Path(dir, session))
	locked, err := fl.TryLock()
	if err != nil {
		return false
	}
	if locked {
		_ = fl.Unlock()
		return false
	}
	return true
}
