// Package cmd provides CLI commands for the shelluse tool.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/steveyegge/shelluse/internal/debug"
	"github.com/steveyegge/shelluse/internal/exitcode"
	"github.com/steveyegge/shelluse/internal/style"
)

var rootCmd = &cobra.Command{
	Use:     "shelluse",
	Short:   "Let agents use the shell like a human",
	Version: Version,
	Long: `shelluse drives tmux sessions on behalf of an agent: view terminal
output, type commands, scroll through history, and interact with any CLI
application.

Only sessions named in the allowlist can be touched. Configure it with
SHELL_USE_SESSIONS (comma separated) or the sessions key of the config file.
Set SHELL_USE_SOCKET to reach a tmux server through its socket file, for
example one mounted into a container.

Run 'shelluse guide' for the agent usage guide.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Global flags.
var (
	flagTimeout  time.Duration
	flagNoLock   bool
	flagLockWait time.Duration
)

// Command group IDs - used by subcommands to organize help output
const (
	GroupRead   = "read"
	GroupInput  = "input"
	GroupScroll = "scroll"
	GroupConfig = "config"
	GroupDiag   = "diag"
)

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupRead, Title: "Reading:"},
		&cobra.Group{ID: GroupInput, Title: "Input:"},
		&cobra.Group{ID: GroupScroll, Title: "Scrollback:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration:"},
		&cobra.Group{ID: GroupDiag, Title: "Diagnostics:"},
	)
	rootCmd.SetHelpCommandGroupID(GroupDiag)
	rootCmd.SetCompletionCommandGroupID(GroupConfig)

	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "Abort after this long (0 = no limit)")
	rootCmd.PersistentFlags().BoolVar(&flagNoLock, "no-lock", false, "Do not serialize with other shelluse processes on the same session")
	rootCmd.PersistentFlags().DurationVar(&flagLockWait, "lock-wait", 10*time.Second, "How long to wait for a busy session (0 = fail immediately)")

	rootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return exitcode.Wrap(exitcode.ErrUsage, "", fmt.Errorf("%w\n\nRun '%s --help' for usage", err, buildCommandPath(c)))
	})
}

// Execute runs the root command and returns an exit code.
// The caller (main) should call os.Exit with this code.
func Execute() int {
	return run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	debug.Init()
	defer debug.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Cobra only passes the root context down to subcommands that have none,
	// so clear what an earlier run in this process left behind.
	clearContexts(rootCmd)
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	shutdownTelemetry()
	if err == nil {
		return exitcode.Success
	}

	err = exitcode.FromError(err)
	style.PrintError(stderr, err)
	return exitcode.Code(err)
}

func clearContexts(cmd *cobra.Command) {
	for _, sub := range cmd.Commands() {
		sub.SetContext(nil) //nolint:staticcheck // nil resets to the parent's context
		clearContexts(sub)
	}
}

// buildCommandPath walks the command hierarchy to build the full command path.
// For example: "shelluse capture", "shelluse send-text", etc.
func buildCommandPath(cmd *cobra.Command) string {
	var parts []string
	for c := cmd; c != nil; c = c.Parent() {
		parts = append([]string{c.Name()}, parts...)
	}
	return strings.Join(parts, " ")
}

// usageArgs wraps a cobra argument validator so violations exit with the
// usage code.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return exitcode.Wrap(exitcode.ErrUsage, "", fmt.Errorf("%w\n\nRun '%s --help' for usage", err, buildCommandPath(cmd)))
		}
		return nil
	}
}
