package ui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/term"
)

// RenderMarkdown renders markdown with glamour. Agents and colorless
// output get the raw markdown, wrapped to the terminal width. Rendering
// failures fall back to the raw text.
func RenderMarkdown(markdown string) string {
	width := terminalWidth()

	if IsAgentMode() || !ShouldUseColor() {
		return wordwrap.String(markdown, width)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return markdown
	}
	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return rendered
}

// terminalWidth caps the wrap width at 100 and falls back to 80 when
// stdout is not a terminal.
func terminalWidth() int {
	const (
		defaultWidth = 80
		maxWidth     = 100
	)
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return min(width, maxWidth)
}
