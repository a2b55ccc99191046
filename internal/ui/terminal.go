// Package ui detects how shelluse output is being consumed: an interactive
// terminal, a pipe, or an agent reading the output programmatically.
package ui

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal returns true if stdout is connected to a terminal (TTY).
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// IsStdinTerminal returns true if stdin is a TTY. send-text uses it to
// decide whether a missing text argument means "read stdin".
func IsStdinTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// ShouldUseColor determines if ANSI color codes should be used.
// Respects NO_COLOR (https://no-color.org/), CLICOLOR, and CLICOLOR_FORCE conventions.
func ShouldUseColor() bool {
	// NO_COLOR takes precedence - any value disables color
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}

	if os.Getenv("CLICOLOR") == "0" {
		return false
	}

	// CLICOLOR_FORCE enables color even in non-TTY
	if _, exists := os.LookupEnv("CLICOLOR_FORCE"); exists {
		return true
	}

	// Agents parse our output; keep it plain.
	if IsAgentMode() {
		return false
	}

	return IsTerminal()
}

// ShouldUseEmoji determines if status glyphs should be used.
func ShouldUseEmoji() bool {
	if _, exists := os.LookupEnv("SHELL_USE_NO_EMOJI"); exists {
		return false
	}
	return IsTerminal() && !IsAgentMode()
}

// IsAgentMode returns true if the CLI is driven by an agent rather than a
// person. This is triggered by:
//   - SHELL_USE_AGENT_MODE=1 environment variable (explicit)
//   - CLAUDE_CODE environment variable (auto-detect)
//
// Agent mode keeps output free of decoration so captured screens and
// session lists can be consumed verbatim.
func IsAgentMode() bool {
	if os.Getenv("SHELL_USE_AGENT_MODE") == "1" {
		return true
	}
	return os.Getenv("CLAUDE_CODE") != ""
}
