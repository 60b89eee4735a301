// Package prompt renders the confirmation overlay for commands suggested by
// the assistant. Nothing runs on the backend without an explicit yes here.
package prompt

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adamkadaban/netinspector-tui/internal/controller"
	"github.com/adamkadaban/netinspector-tui/internal/keymap"
	"github.com/adamkadaban/netinspector-tui/internal/state"
	"github.com/adamkadaban/netinspector-tui/internal/theme"
	"github.com/adamkadaban/netinspector-tui/internal/ui/view"
)

// OpConfirm tags the DoneMsg of a confirmed command.
const OpConfirm = "assistant.confirm"

// Model renders and handles the command confirmation overlay.
type Model struct {
	ctx        context.Context
	store      *state.Store
	theme      theme.Theme
	keymap     keymap.Gate
	controller controller.CommandGate

	width  int
	height int
}

// New constructs the overlay.
func New(ctx context.Context, store *state.Store, th theme.Theme, gate controller.CommandGate) *Model {
	return &Model{ctx: ctx, store: store, theme: th, keymap: keymap.DefaultGate(), controller: gate}
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) SetTheme(th theme.Theme) {
	m.theme = th
}

// Active reports whether a command is waiting for a decision or running.
func (m *Model) Active() bool {
	if m.controller == nil {
		return false
	}
	snap := m.controller.Snapshot()
	return snap.State == state.GateAwaitingConfirmation || snap.Executing
}

// Update consumes keys while the overlay is active. The bool reports whether
// the key was handled; tab navigation and quit pass through.
func (m *Model) Update(msg tea.Msg) (tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !m.Active() {
		return nil, false
	}
	switch keyMsg.String() {
	case "tab", "shift+tab", "ctrl+c":
		return nil, false
	}
	if m.controller.Snapshot().Executing {
		return nil, true
	}

	switch {
	case key.Matches(keyMsg, m.keymap.Confirm):
		return view.Run(m.ctx, OpConfirm, m.controller.Confirm), true
	case key.Matches(keyMsg, m.keymap.Cancel):
		if err := m.controller.Cancel(); err == nil {
			m.store.Notify(state.NoticeInfo, "Command cancelled")
		}
		return nil, true
	}
	return nil, true
}

func (m *Model) View() string {
	if !m.Active() {
		return ""
	}
	snap := m.controller.Snapshot()

	headline := "Execute suggested command?"
	controls := m.theme.Subtle.Render(m.keymap.ShortHelp())
	if snap.Executing {
		headline = "Executing command"
		controls = m.theme.Warning.Render("waiting for output...")
	}

	reply := ""
	for i := len(snap.Messages) - 1; i >= 0; i-- {
		if snap.Messages[i].Role == state.RoleAssistant {
			reply = snap.Messages[i].Content
			break
		}
	}

	rows := []string{m.theme.Header.Render(headline)}
	if reply != "" {
		rows = append(rows, m.theme.Subtle.Render(reply))
	}
	rows = append(rows,
		fmt.Sprintf("Command: %s", m.theme.Warning.Render(snap.PendingCommand)),
		controls,
	)
	body := lipgloss.JoinVertical(lipgloss.Left, rows...)

	width := min(max(20, m.width-4), 96)
	return lipgloss.Place(m.width, max(10, m.height-2), lipgloss.Center, lipgloss.Center, m.theme.Card.Width(width).Render(body))
}
