// Package style provides the lipgloss styles used for shelluse's own
// messages. Terminal content relayed from tmux is never styled.
package style

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/steveyegge/shelluse/internal/ui"
)

var (
	colorGreen  = lipgloss.Color("76")
	colorOrange = lipgloss.Color("214")
	colorRed    = lipgloss.Color("196")
	colorBlue   = lipgloss.Color("39")
	colorMuted  = lipgloss.Color("242")
)

var (
	Success = lipgloss.NewStyle().Foreground(colorGreen)
	Warning = lipgloss.NewStyle().Foreground(colorOrange)
	Error   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	Info    = lipgloss.NewStyle().Foreground(colorBlue)
	Dim     = lipgloss.NewStyle().Foreground(colorMuted)
	Bold    = lipgloss.NewStyle().Bold(true)
)

func init() {
	if !ui.ShouldUseColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// Prefixes for status lines. Plain text when emoji are off.
func SuccessPrefix() string {
	if ui.ShouldUseEmoji() {
		return Success.Render("✓")
	}
	return "ok"
}

func WarningPrefix() string {
	if ui.ShouldUseEmoji() {
		return Warning.Render("⚠")
	}
	return "warning:"
}

// PrintError writes "Error: msg" to w.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", Error.Render("Error:"), err)
}

// PrintWarning writes a warning line to w.
func PrintWarning(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", WarningPrefix(), fmt.Sprintf(format, args...))
}
