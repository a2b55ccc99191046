package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/steveyegge/shelluse/internal/style"
	"github.com/steveyegge/shelluse/internal/ui"
)

var sessionsJSON bool

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"ls", "list"},
	GroupID: GroupRead,
	Short:   "List the sessions shelluse may drive",
	Long: `List the allowlisted session names in configured order.

The list comes from configuration only; tmux is not consulted, so a session
that is listed may not be running.

Examples:
  shelluse sessions
  shelluse sessions --json`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runSessions,
}

func init() {
	sessionsCmd.Flags().BoolVar(&sessionsJSON, "json", false, "Output as a JSON array")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	gw, _, err := setupGateway(ctx)
	if err != nil {
		return err
	}
	names := gw.ListSessions()
	out := cmd.OutOrStdout()

	switch {
	case sessionsJSON:
		enc := json.NewEncoder(out)
		return enc.Encode(names)

	case ui.IsTerminal() && !ui.IsAgentMode():
		tbl := style.NewTable(
			style.Column{Name: "#", Width: 3, Align: style.AlignRight, Style: style.Dim.Render},
			style.Column{Name: "SESSION", Width: 32},
		)
		for i, name := range names {
			tbl.AddRow(strconv.Itoa(i+1), name)
		}
		fmt.Fprint(out, tbl.Render())

	default:
		for _, name := range names {
			fmt.Fprintln(out, name)
		}
	}
	return nil
}
