package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/shelluse/internal/gateway"
)

var captureScrollBack int

var captureCmd = &cobra.Command{
	Use:     "capture <session>",
	Aliases: []string{"peek"},
	GroupID: GroupRead,
	Short:   "Print the current terminal screen of a session",
	Long: `Capture the visible screen of a session and print it exactly as tmux
renders it, trailing blank lines included.

--scroll-back extends the capture that many lines into history above the
visible screen.

Examples:
  shelluse capture dev
  shelluse capture dev -b 200`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: runCapture,
}

func init() {
	captureCmd.Flags().IntVarP(&captureScrollBack, "scroll-back", "b", 0, "Lines of history to include above the visible screen")
	rootCmd.AddCommand(captureCmd)
}

func runCapture(cmd *cobra.Command, args []string) error {
	session := args[0]
	return withSession(cmd, session, func(ctx context.Context, gw *gateway.Gateway) error {
		out, err := gw.Capture(ctx, session, captureScrollBack)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	})
}
