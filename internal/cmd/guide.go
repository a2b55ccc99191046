package cmd

import (
	_ "embed"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/shelluse/internal/ui"
)

//go:embed guide.md
var guideMarkdown string

var guideRaw bool

var guideCmd = &cobra.Command{
	Use:     "guide",
	GroupID: GroupDiag,
	Short:   "Show the agent usage guide",
	Args:    usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		if guideRaw {
			fmt.Fprint(cmd.OutOrStdout(), guideMarkdown)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.RenderMarkdown(guideMarkdown))
		return nil
	},
}

func init() {
	guideCmd.Flags().BoolVar(&guideRaw, "raw", false, "Print the markdown source")
	rootCmd.AddCommand(guideCmd)
}
