package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/steveyegge/shelluse/internal/gateway"
	"github.com/steveyegge/shelluse/internal/style"
)

var scrollAmount int

var scrollCmd = &cobra.Command{
	Use:     "scroll <session> <up|down>",
	GroupID: GroupScroll,
	Short:   "Scroll a session's history by half pages",
	Long: `Enter tmux copy mode and move through the scrollback buffer, one half
page per step. Follow with 'shelluse capture' to read what is now on
screen, and 'shelluse exit-scroll' to return to the live terminal.

Examples:
  shelluse scroll dev up
  shelluse scroll dev up -n 4
  shelluse scroll dev down`,
	Args: usageArgs(cobra.ExactArgs(2)),
	RunE: runScroll,
}

var exitScrollCmd = &cobra.Command{
	Use:     "exit-scroll <session>",
	GroupID: GroupScroll,
	Short:   "Leave copy mode and return to the live terminal",
	Args:    usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		session := args[0]
		return withSession(cmd, session, func(ctx context.Context, gw *gateway.Gateway) error {
			if err := gw.ExitScrollMode(ctx, session); err != nil {
				return err
			}
			printDone(cmd, "%s is back to the live terminal", style.Info.Render(session))
			return nil
		})
	},
}

func init() {
	scrollCmd.Flags().IntVarP(&scrollAmount, "amount", "n", 1, "Number of half-page steps")
	rootCmd.AddCommand(scrollCmd)
	rootCmd.AddCommand(exitScrollCmd)
}

func runScroll(cmd *cobra.Command, args []string) error {
	session := args[0]
	// Direction is validated by the gateway, after the session check.
	direction := gateway.Direction(args[1])
	return withSession(cmd, session, func(ctx context.Context, gw *gateway.Gateway) error {
		if err := gw.Scroll(ctx, session, direction, scrollAmount); err != nil {
			return err
		}
		printDone(cmd, "scrolled %s %s in %s; run 'shelluse exit-scroll %s' to return",
			direction, plural(scrollAmount, "half page"), style.Info.Render(session), session)
		return nil
	})
}
