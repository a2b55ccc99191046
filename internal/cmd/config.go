package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/shelluse/internal/config"
	"github.com/steveyegge/shelluse/internal/exitcode"
	"github.com/steveyegge/shelluse/internal/lock"
)

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: GroupConfig,
	Short:   "Show the resolved configuration",
	Long: `Print the configuration shelluse would run with, as TOML, after
merging defaults, the config file, and environment variables.

Environment variables (highest precedence):
  SHELL_USE_CONFIG            config file path (default $XDG_CONFIG_HOME/shelluse/config.toml)
  SHELL_USE_SESSIONS          comma-separated session allowlist (required)
  SHELL_USE_SOCKET            tmux socket file to connect through
  SHELL_USE_TMUX_BIN          tmux executable (default "tmux")
  SHELL_USE_LOCK_DIR          directory for per-session lock files
  SHELL_USE_OTEL_METRICS_URL  OTLP metrics endpoint
  SHELL_USE_OTEL_LOGS_URL     OTLP logs endpoint
  SHELL_USE_DEBUG             write a debug log (SHELL_USE_DEBUG_LOG sets the path)

Exits with status 4 when the configuration cannot be used.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return exitcode.Wrap(exitcode.ErrConfig, "loading configuration", err)
	}

	out := cmd.OutOrStdout()
	if cfg.Path != "" {
		fmt.Fprintf(out, "# file: %s\n", cfg.Path)
	} else {
		fmt.Fprintln(out, "# file: none")
	}
	fmt.Fprintf(out, "# lock dir: %s\n", lock.Dir(cfg.LockDir))
	if err := cfg.Encode(out); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return exitcode.Wrap(exitcode.ErrConfig, "", err)
	}
	return nil
}
