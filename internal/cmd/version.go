package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information, set at build time via ldflags:
//
//	go build -ldflags "-X github.com/steveyegge/shelluse/internal/cmd.Version=v0.3.0 -X github.com/steveyegge/shelluse/internal/cmd.Commit=$(git rev-parse --short HEAD)"
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

var versionCmd = &cobra.Command{
	Use:     "version",
	GroupID: GroupDiag,
	Short:   "Print version information",
	Args:    usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), versionString())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func versionString() string {
	s := "shelluse version " + Version
	if Commit != "" {
		s += " (" + Commit
		if BuildTime != "" {
			s += ", built " + BuildTime
		}
		s += ")"
	}
	return s
}
