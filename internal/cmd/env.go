package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/steveyegge/shelluse/internal/config"
	"github.com/steveyegge/shelluse/internal/debug"
	"github.com/steveyegge/shelluse/internal/exitcode"
	"github.com/steveyegge/shelluse/internal/gateway"
	"github.com/steveyegge/shelluse/internal/lock"
	"github.com/steveyegge/shelluse/internal/style"
	"github.com/steveyegge/shelluse/internal/telemetry"
	"github.com/steveyegge/shelluse/internal/tmux"
	"github.com/steveyegge/shelluse/internal/ui"
)

// newRunner builds the Command Runner for a configuration. Tests swap it
// for a recording fake.
var newRunner = func(cfg *config.Config) tmux.Runner {
	return cfg.Runner()
}

var telemetryProvider *telemetry.Provider

// loadConfig resolves and validates configuration. Failures carry the
// configuration exit code.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, exitcode.Wrap(exitcode.ErrConfig, "loading configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, exitcode.Wrap(exitcode.ErrConfig, "", err)
	}
	return cfg, nil
}

func initTelemetry(ctx context.Context, cfg *config.Config) {
	p, err := telemetry.Init(ctx, telemetry.Options{
		ServiceName:    "shelluse",
		ServiceVersion: Version,
		MetricsURL:     cfg.Telemetry.MetricsURL,
		LogsURL:        cfg.Telemetry.LogsURL,
	})
	if err != nil {
		// Telemetry never blocks a command.
		debug.Log("cmd", "telemetry init: %v", err)
		return
	}
	telemetryProvider = p
}

func shutdownTelemetry() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := telemetryProvider.Shutdown(ctx); err != nil {
		debug.Log("cmd", "telemetry shutdown: %v", err)
	}
}

// setupGateway loads configuration and builds the gateway over it.
func setupGateway(ctx context.Context) (*gateway.Gateway, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	initTelemetry(ctx, cfg)

	gw, err := gateway.New(cfg.Sessions, newRunner(cfg))
	if err != nil {
		return nil, nil, err
	}
	return gw, cfg, nil
}

// commandContext applies --timeout to the command's context.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if flagTimeout > 0 {
		return context.WithTimeout(ctx, flagTimeout)
	}
	return context.WithCancel(ctx)
}

// lockSession takes the per-session lock for an allowlisted session,
// honoring --lock-wait. Sessions outside the allowlist are left to the
// gateway to reject, without touching the lock directory. With --no-lock
// nothing is taken and w gets a warning if another process holds the lock.
func lockSession(ctx context.Context, w io.Writer, gw *gateway.Gateway, cfg *config.Config, session string) (*lock.SessionLock, error) {
	if !gw.Allowed(session) {
		return nil, nil
	}
	dir := lock.Dir(cfg.LockDir)
	if flagNoLock {
		if lock.Held(dir, session) {
			style.PrintWarning(w, "session %q is in use by another shelluse process; continuing anyway (--no-lock)", session)
		}
		return nil, nil
	}
	return lock.Acquire(ctx, dir, session, flagLockWait)
}

// timeoutError reports err as a --timeout expiry when ctx's deadline is
// what stopped the command. Busy locks keep their own code.
func timeoutError(ctx context.Context, op string, err error) error {
	if err == nil || flagTimeout <= 0 || !errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, lock.ErrBusy) {
		return err
	}
	return exitcode.Timeout(op, flagTimeout, err)
}

// withSession runs fn with the gateway, the --timeout deadline, and the
// session lock held.
func withSession(cmd *cobra.Command, session string, fn func(ctx context.Context, gw *gateway.Gateway) error) (err error) {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	op := cmd.Name() + " " + session
	id := debug.LogStart("cmd", op)
	defer func() { debug.LogEnd("cmd", op, id, err) }()
	defer func() { err = timeoutError(ctx, op, err) }()

	gw, cfg, err := setupGateway(ctx)
	if err != nil {
		return err
	}

	l, err := lockSession(ctx, cmd.ErrOrStderr(), gw, cfg, session)
	if err != nil {
		return err
	}
	defer l.Release() //nolint:errcheck

	return fn(ctx, gw)
}

// isInteractive reports whether a person is reading stdout. Tests override it.
var isInteractive = func() bool {
	return ui.IsTerminal() && !ui.IsAgentMode()
}

// printDone confirms a command that otherwise prints nothing. Agents and
// pipes get no output.
func printDone(cmd *cobra.Command, format string, args ...interface{}) {
	if !isInteractive() {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", style.SuccessPrefix(), fmt.Sprintf(format, args...))
}

// plural returns "n word" with an s appended unless n is 1.
func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
