package style

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Alignment is a column alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

// Column describes one table column.
type Column struct {
	Name  string
	Width int
	Align Alignment
	Style func(...string) string // optional cell renderer, e.g. Dim.Render
}

// Table renders fixed-width columns for human-facing listings.
type Table struct {
	columns   []Column
	rows      [][]string
	indent    string
	headerSep bool
}

// NewTable creates a table with a header separator and two-space indent.
func NewTable(columns ...Column) *Table {
	return &Table{
		columns:   columns,
		indent:    "  ",
		headerSep: true,
	}
}

// SetIndent sets the prefix written before every line.
func (t *Table) SetIndent(indent string) *Table {
	t.indent = indent
	return t
}

// SetHeaderSeparator toggles the rule under the header.
func (t *Table) SetHeaderSeparator(on bool) *Table {
	t.headerSep = on
	return t
}

// AddRow appends a row. Missing trailing cells are left empty.
func (t *Table) AddRow(values ...string) *Table {
	row := make([]string, len(t.columns))
	copy(row, values)
	t.rows = append(t.rows, row)
	return t
}

// Render returns the table as text, one line per row, each newline
// terminated. A table without columns renders as "".
func (t *Table) Render() string {
	if len(t.columns) == 0 {
		return ""
	}

	var sb strings.Builder

	sb.WriteString(t.indent)
	for i, col := range t.columns {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(t.pad(Bold.Render(col.Name), col.Name, col.Width, col.Align))
	}
	sb.WriteString("\n")

	if t.headerSep {
		sb.WriteString(t.indent)
		total := 0
		for i, col := range t.columns {
			if i > 0 {
				total++
			}
			total += col.Width
		}
		sb.WriteString(Dim.Render(strings.Repeat("─", total)))
		sb.WriteString("\n")
	}

	for _, row := range t.rows {
		sb.WriteString(t.indent)
		for i, col := range t.columns {
			if i > 0 {
				sb.WriteString(" ")
			}
			plain := row[i]
			if col.Width > 0 && ansi.StringWidth(plain) > col.Width {
				plain = ansi.Truncate(plain, col.Width, "...")
			}
			styled := plain
			if col.Style != nil {
				styled = col.Style(plain)
			}
			sb.WriteString(t.pad(styled, plain, col.Width, col.Align))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// pad aligns styled within width, measuring plain.
func (t *Table) pad(styled, plain string, width int, align Alignment) string {
	w := ansi.StringWidth(plain)
	if w >= width {
		return styled
	}
	gap := width - w
	switch align {
	case AlignRight:
		return strings.Repeat(" ", gap) + styled
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + styled + strings.Repeat(" ", gap-left)
	default:
		return styled + strings.Repeat(" ", gap)
	}
}

func stripAnsi(s string) string {
	return ansi.Strip(s)
}
