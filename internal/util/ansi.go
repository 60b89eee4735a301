package util

import "github.com/charmbracelet/x/ansi"

// StripANSI returns s without escape sequences.
func StripANSI(s string) string { return ansi.Strip(s) }

// VisibleSlice keeps the cells [offset, offset+width) of a styled row. Escape
// sequences are kept so styling opened before the cut still applies.
func VisibleSlice(s string, offset, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Cut(s, offset, offset+width)
}

// VisibleWidth is the number of terminal cells s occupies.
func VisibleWidth(s string) int { return ansi.StringWidth(s) }
