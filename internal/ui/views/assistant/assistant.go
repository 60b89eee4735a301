// Package assistant renders the chat transcript, the message composer and
// the terminal output of confirmed commands.
package assistant

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/adamkadaban/netinspector-tui/internal/controller"
	"github.com/adamkadaban/netinspector-tui/internal/state"
	"github.com/adamkadaban/netinspector-tui/internal/theme"
	"github.com/adamkadaban/netinspector-tui/internal/ui/view"
	"github.com/adamkadaban/netinspector-tui/internal/util"
)

const (
	terminalRows = 6
	sendOp       = "assistant.send"
)

// Model renders the assistant view.
type Model struct {
	ctx        context.Context
	store      *state.Store
	theme      theme.Theme
	controller controller.CommandGate

	width  int
	height int

	composer   textarea.Model
	transcript viewport.Model
	// unsent holds the last submitted text until its send completes.
	unsent string

	renderer      *glamour.TermRenderer
	rendererWidth int
	rendererStyle string
}

// New constructs the assistant view.
func New(ctx context.Context, store *state.Store, th theme.Theme, gate controller.CommandGate) view.Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about your network, e.g. show interface status on r1"
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.CharLimit = 0
	return &Model{
		ctx:        ctx,
		store:      store,
		theme:      th,
		controller: gate,
		composer:   ta,
		transcript: viewport.New(80, 10),
	}
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Title() string { return "Assistant" }

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.composer.SetWidth(m.contentWidth())
	m.transcript.Width = m.contentWidth()
	m.transcript.Height = max(4, height-terminalRows-10)
}

func (m *Model) SetTheme(th theme.Theme) { m.theme = th }

// Capturing is true while the composer has focus.
func (m *Model) Capturing() bool { return m.composer.Focused() }

func (m *Model) Refresh() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if done, ok := msg.(view.DoneMsg); ok && done.Op == sendOp {
		if errors.Is(done.Err, controller.ErrBusy) && m.composer.Value() == "" {
			m.composer.SetValue(m.unsent)
		}
		m.unsent = ""
		return m, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.controller == nil {
		return m, nil
	}

	if m.composer.Focused() {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.composer.Blur()
			return m, nil
		case tea.KeyEnter:
			return m, m.send()
		}
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(keyMsg)
		return m, cmd
	}

	switch keyMsg.String() {
	case "i", "enter":
		return m, m.composer.Focus()
	case "pgup", "k", "up":
		m.transcript.ScrollUp(3)
	case "pgdown", "j", "down":
		m.transcript.ScrollDown(3)
	}
	return m, nil
}

// send posts the composer text when the gate is idle. The text stays in the
// composer while another exchange is outstanding, and comes back if the gate
// turns the send away as busy.
func (m *Model) send() tea.Cmd {
	text := m.composer.Value()
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if snap := m.controller.Snapshot(); snap.State != state.GateIdle {
		m.store.Notify(state.NoticeInfo, "Wait for the current exchange to finish")
		return nil
	}
	m.unsent = text
	m.composer.Reset()
	return view.Run(m.ctx, sendOp, func(ctx context.Context) error {
		return m.controller.Send(ctx, text)
	})
}

func (m *Model) View() string {
	if m.controller == nil {
		return m.theme.Danger.Render("Assistant unavailable")
	}
	snap := m.controller.Snapshot()

	m.transcript.SetContent(m.renderTranscript(snap))
	m.transcript.GotoBottom()

	sections := []string{
		m.theme.Title.Render("Conversation"),
		m.transcript.View(),
		m.renderStatus(snap),
		m.composer.View(),
		m.theme.Title.Render("Terminal"),
		m.renderTerminal(snap.Terminal),
	}
	hint := "i compose · ↑/↓ scroll"
	if m.composer.Focused() {
		hint = "enter send · esc stop typing"
	}
	sections = append(sections, m.theme.Subtle.Render(hint))
	return lipgloss.NewStyle().Width(m.contentWidth()).Render(strings.Join(sections, "\n"))
}

func (m *Model) renderTranscript(snap state.ChatSnapshot) string {
	if len(snap.Messages) == 0 {
		return m.theme.Subtle.Render("No messages yet")
	}
	parts := make([]string, 0, len(snap.Messages))
	for _, msg := range snap.Messages {
		switch msg.Role {
		case state.RoleUser:
			parts = append(parts, m.theme.UserTurn.Render("You: ")+msg.Content)
		default:
			parts = append(parts, m.theme.Success.Render("Assistant:")+"\n"+m.markdown(msg.Content))
		}
	}
	return strings.Join(parts, "\n")
}

func (m *Model) renderStatus(snap state.ChatSnapshot) string {
	switch {
	case snap.Executing:
		return m.theme.Warning.Render("Executing: " + snap.PendingCommand)
	case snap.State == state.GateAwaitingReply:
		return m.theme.Warning.Render("Waiting for reply...")
	case snap.State == state.GateAwaitingConfirmation:
		return m.theme.Warning.Render("Suggested command: " + snap.PendingCommand)
	default:
		return ""
	}
}

func (m *Model) renderTerminal(entries []state.LogEntry) string {
	if len(entries) == 0 {
		return m.theme.Terminal.Render("$ ")
	}
	start := max(0, len(entries)-terminalRows)
	lines := make([]string, 0, terminalRows)
	for _, entry := range entries[start:] {
		lines = append(lines, util.FormatLogEntry(entry))
	}
	return m.theme.Terminal.Render(strings.Join(lines, "\n"))
}

// markdown renders assistant text, falling back to the raw text when the
// renderer cannot be built.
func (m *Model) markdown(text string) string {
	width := m.contentWidth()
	style := m.theme.MarkdownStyle()
	if m.renderer == nil || m.rendererWidth != width || m.rendererStyle != style {
		r, err := glamour.NewTermRenderer(glamour.WithStandardStyle(style), glamour.WithWordWrap(width))
		if err != nil {
			return text
		}
		m.renderer, m.rendererWidth, m.rendererStyle = r, width, style
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width - 4
}
