package cmd

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/steveyegge/shelluse/internal/config"
	"github.com/steveyegge/shelluse/internal/exitcode"
	"github.com/steveyegge/shelluse/internal/gateway"
	"github.com/steveyegge/shelluse/internal/ui"
	"github.com/steveyegge/shelluse/internal/watch"
)

var (
	watchScrollBack int
	watchInterval   time.Duration
)

var watchCmd = &cobra.Command{
	Use:     "watch <session>",
	GroupID: GroupRead,
	Short:   "Follow a session's screen live",
	Long: `Open a full-screen, read-only view of a session that re-captures the
screen on an interval. Nothing typed into the view reaches the session.

Keys: ↑/↓ scroll, G follow, p pause, r refresh, q quit.

Examples:
  shelluse watch dev
  shelluse watch dev -b 500 --interval 500ms`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVarP(&watchScrollBack, "scroll-back", "b", 0, "Lines of history to include")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", watch.DefaultInterval, "Refresh interval")
	rootCmd.AddCommand(watchCmd)
}

// lockedCapturer takes the session lock around each capture so the view
// never interleaves with another shelluse command on the same session.
type lockedCapturer struct {
	gw   *gateway.Gateway
	cfg  *config.Config
	warn io.Writer
}

func (c *lockedCapturer) Capture(ctx context.Context, session string, scrollBack int) (string, error) {
	l, err := lockSession(ctx, c.warn, c.gw, c.cfg, session)
	if err != nil {
		return "", err
	}
	defer l.Release() //nolint:errcheck
	return c.gw.Capture(ctx, session, scrollBack)
}

func runWatch(cmd *cobra.Command, args []string) error {
	session := args[0]

	ctx, cancel := commandContext(cmd)
	defer cancel()

	gw, cfg, err := setupGateway(ctx)
	if err != nil {
		return err
	}
	c := &lockedCapturer{gw: gw, cfg: cfg, warn: cmd.ErrOrStderr()}

	// Surface authorization and tmux failures before taking over the screen.
	if _, err := c.Capture(ctx, session, watchScrollBack); err != nil {
		return timeoutError(ctx, "watch "+session, err)
	}
	// The alternate screen owns the terminal from here on.
	c.warn = io.Discard
	if !ui.IsTerminal() {
		return exitcode.Usage("watch needs an interactive terminal; use 'shelluse capture' instead")
	}

	return watch.Run(ctx, c, watch.Options{
		Session:    session,
		ScrollBack: watchScrollBack,
		Interval:   watchInterval,
	})
}
