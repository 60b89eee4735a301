package view

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adamkadaban/netinspector-tui/internal/theme"
)

// Model represents a routed Bubble Tea view.
type Model interface {
	tea.Model
	SetSize(width, height int)
	SetTheme(theme theme.Theme)
	Title() string
	// Refresh reloads backend data when the view becomes active.
	Refresh() tea.Cmd
}

// DoneMsg reports completion of a backend call started with Run. Op names
// the call so views can tell their own results apart.
type DoneMsg struct {
	Op  string
	Err error
}

// ThemeMsg asks every view to restyle.
type ThemeMsg struct {
	Theme theme.Theme
}

// Run wraps a blocking manager call in a command. Managers report outcomes
// through the store, so the message only carries the error.
func Run(ctx context.Context, op string, fn func(context.Context) error) tea.Cmd {
	if fn == nil {
		return nil
	}
	return func() tea.Msg {
		return DoneMsg{Op: op, Err: fn(ctx)}
	}
}

// Capturer is implemented by views that sometimes take raw text input. While
// Capturing is true the router only handles its quit binding.
type Capturer interface {
	Capturing() bool
}
