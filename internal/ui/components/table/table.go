package table

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/adamkadaban/netinspector-tui/internal/theme"
	"github.com/adamkadaban/netinspector-tui/internal/util"
)

// Column is a fixed-width table column.
type Column struct {
	Title string
	Width int
}

// Options control how a table is drawn.
type Options struct {
	Cursor  int
	Focused bool
	// Height bounds the number of body rows. Zero shows every row.
	Height int
	Empty  string
}

// Render draws a header and a window of rows that keeps the cursor visible.
func Render(th theme.Theme, cols []Column, rows [][]string, opts Options) string {
	lines := make([]string, 0, len(rows)+1)
	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = PadAndStyle(th.Header, col.Title, col.Width, true)
	}
	lines = append(lines, strings.Join(header, ""))

	if len(rows) == 0 {
		lines = append(lines, th.Subtle.Render(util.Fallback(opts.Empty, "No entries")))
		return strings.Join(lines, "\n")
	}

	start, end := Window(len(rows), opts.Cursor, opts.Height)
	for idx := start; idx < end; idx++ {
		style := th.Body
		if opts.Focused && idx == opts.Cursor {
			style = th.Cursor
		}
		cells := make([]string, len(cols))
		for i, col := range cols {
			text := ""
			if i < len(rows[idx]) {
				text = rows[idx][i]
			}
			cells[i] = PadAndStyle(style, text, col.Width, true)
		}
		lines = append(lines, strings.Join(cells, ""))
	}
	if end < len(rows) {
		lines = append(lines, RenderCaretRow(ComputeMaxWidth(lines[:1]), th.Subtle))
	}
	return strings.Join(lines, "\n")
}

// Window returns the [start,end) row range of height rows around cursor.
func Window(total, cursor, height int) (int, int) {
	if height <= 0 || total <= height {
		return 0, total
	}
	cursor = util.Clamp(cursor, total)
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	if start+height > total {
		start = total - height
	}
	return start, start + height
}

// ComputeMaxWidth returns the widest row width (cell width).
func ComputeMaxWidth(rows []string) int {
	maxWidth := 0
	for _, row := range rows {
		if w := util.VisibleWidth(row); w > maxWidth {
			maxWidth = w
		}
	}
	return maxWidth
}

// ClipRows slices each row horizontally keeping escape sequences intact.
func ClipRows(rows []string, xOffset, width int) []string {
	if width <= 0 {
		width = 1
	}
	clipped := make([]string, len(rows))
	for i, row := range rows {
		clipped[i] = util.VisibleSlice(row, xOffset, width)
	}
	return clipped
}

// RenderCaretRow renders a caret indicator row for truncated tables.
func RenderCaretRow(width int, style lipgloss.Style) string {
	if width <= 0 {
		width = 3
	}
	glyphs := make([]rune, width)
	for i := range glyphs {
		glyphs[i] = ' '
	}
	for _, pos := range []int{0, width / 2, max(0, width-1)} {
		if pos >= 0 && pos < width {
			glyphs[pos] = 'v'
		}
	}
	return style.Render(string(glyphs))
}

// PadAndStyle truncates/pads text and renders it with the given style.
func PadAndStyle(style lipgloss.Style, text string, width int, truncate bool) string {
	if width <= 0 {
		return ""
	}
	content := text
	if truncate {
		content = util.TruncateString(text, width)
	}
	if util.VisibleWidth(content) < width {
		content = util.PadString(content, width)
	}
	return style.Render(content)
}
