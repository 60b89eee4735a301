package util

import (
	"strings"
	"time"

	"github.com/adamkadaban/netinspector-tui/internal/state"
)

// Fallback returns def when value is empty or whitespace only.
func Fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

// WrapIndex wraps the index within [0,length).
func WrapIndex(current, delta, length int) int {
	if length <= 0 {
		return 0
	}
	next := (current + delta) % length
	if next < 0 {
		next += length
	}
	return next
}

// Clamp keeps current within [0,length).
func Clamp(current, length int) int {
	if length <= 0 || current < 0 {
		return 0
	}
	if current >= length {
		return length - 1
	}
	return current
}

// LogTime renders a log timestamp the way the log panes show it.
func LogTime(ts time.Time) string {
	return ts.Format("15:04:05")
}

// FormatLogEntry renders "[hh:mm:ss] message".
func FormatLogEntry(entry state.LogEntry) string {
	return "[" + LogTime(entry.Timestamp) + "] " + entry.Message
}

// TruncateString truncates a string to width runes with an ellipsis when needed.
func TruncateString(value string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(value)
	if len(runes) <= width {
		return value
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

// PadString pads value with spaces up to width runes.
func PadString(value string, width int) string {
	padding := width - len([]rune(value))
	if padding > 0 {
		return value + strings.Repeat(" ", padding)
	}
	return value
}

// Checkbox renders a "[x]" or "[ ]" marker.
func Checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}
