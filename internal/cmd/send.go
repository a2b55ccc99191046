package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/shelluse/internal/exitcode"
	"github.com/steveyegge/shelluse/internal/gateway"
	"github.com/steveyegge/shelluse/internal/style"
	"github.com/steveyegge/shelluse/internal/ui"
)

var sendKeysCmd = &cobra.Command{
	Use:     "send-keys <session> <keys>...",
	Aliases: []string{"keys"},
	GroupID: GroupInput,
	Short:   "Send key input using tmux key notation",
	Long: `Send keys to a session. Each argument is passed to tmux send-keys
unchanged, one invocation per argument, in order. tmux key names such as
Enter, Escape, C-c, Up and F5 are interpreted by tmux; anything else is
typed as-is.

Examples:
  shelluse send-keys dev C-c
  shelluse send-keys dev q
  shelluse send-keys dev Escape : w q Enter`,
	Args: usageArgs(cobra.MinimumNArgs(2)),
	RunE: runSendKeys,
}

var (
	sendTextEnter     bool
	sendTextNoBracket bool
)

var sendTextCmd = &cobra.Command{
	Use:     "send-text <session> [text|-]",
	Aliases: []string{"type"},
	GroupID: GroupInput,
	Short:   "Send literal text through a tmux paste buffer",
	Long: `Send text to a session exactly as given, through a tmux paste buffer.
Newlines and tabs are preserved. With no text argument, or with "-", the
text is read from stdin.

Use --enter for shell commands: the text is pasted without bracketing and
Enter is pressed afterwards. Without --enter the text is pasted as a
bracketed paste, so editors and shells insert it without executing it.
--no-bracket pastes without bracket markers.

Examples:
  shelluse send-text dev --enter "ls -la"
  printf 'line1\nline2\n' | shelluse send-text dev
  shelluse send-text dev - < patch.txt`,
	Args: usageArgs(cobra.RangeArgs(1, 2)),
	RunE: runSendText,
}

func init() {
	sendTextCmd.Flags().BoolVarP(&sendTextEnter, "enter", "e", false, "Press Enter after the text (for shell commands)")
	sendTextCmd.Flags().BoolVar(&sendTextNoBracket, "no-bracket", false, "Paste without bracketed-paste markers")

	rootCmd.AddCommand(sendKeysCmd)
	rootCmd.AddCommand(sendTextCmd)
}

func runSendKeys(cmd *cobra.Command, args []string) error {
	session, keys := args[0], args[1:]
	return withSession(cmd, session, func(ctx context.Context, gw *gateway.Gateway) error {
		for _, k := range keys {
			if err := gw.SendKeys(ctx, session, k); err != nil {
				return err
			}
		}
		printDone(cmd, "sent %s to %s", plural(len(keys), "key"), style.Info.Render(session))
		return nil
	})
}

func runSendText(cmd *cobra.Command, args []string) error {
	session := args[0]

	text, err := readText(cmd, args[1:])
	if err != nil {
		return err
	}

	return withSession(cmd, session, func(ctx context.Context, gw *gateway.Gateway) error {
		if sendTextEnter {
			if err := gw.Type(ctx, session, text, true); err != nil {
				return err
			}
			printDone(cmd, "ran %s in %s", plural(len(text), "byte"), style.Info.Render(session))
			return nil
		}
		if err := gw.SendText(ctx, session, text, !sendTextNoBracket); err != nil {
			return err
		}
		printDone(cmd, "pasted %s into %s", plural(len(text), "byte"), style.Info.Render(session))
		return nil
	})
}

// readText returns the text argument, or stdin for "-" and for no argument
// when stdin is not a terminal.
func readText(cmd *cobra.Command, rest []string) (string, error) {
	if len(rest) == 1 && rest[0] != "-" {
		return rest[0], nil
	}
	if len(rest) == 0 && cmd.InOrStdin() == os.Stdin && ui.IsStdinTerminal() {
		return "", exitcode.Usage("send-text needs text: pass it as an argument or pipe it on stdin")
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}
