// Package templates renders the command and prompt template listings and
// their uploads.
package templates

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adamkadaban/netinspector-tui/internal/controller"
	"github.com/adamkadaban/netinspector-tui/internal/state"
	"github.com/adamkadaban/netinspector-tui/internal/templates"
	"github.com/adamkadaban/netinspector-tui/internal/theme"
	"github.com/adamkadaban/netinspector-tui/internal/ui/components/table"
	"github.com/adamkadaban/netinspector-tui/internal/ui/view"
	"github.com/adamkadaban/netinspector-tui/internal/ui/widget"
	"github.com/adamkadaban/netinspector-tui/internal/util"
)

var kindOrder = []state.TemplateKind{state.TemplateCommand, state.TemplatePrompt}

var kindTitles = map[state.TemplateKind]string{
	state.TemplateCommand: "Command Templates",
	state.TemplatePrompt:  "Prompt Templates",
}

// Model renders the templates view.
type Model struct {
	ctx        context.Context
	store      *state.Store
	theme      theme.Theme
	controller controller.TemplateManager

	width  int
	height int

	focus  int
	cursor map[state.TemplateKind]int
	input  widget.Input
}

// New constructs the templates view.
func New(ctx context.Context, store *state.Store, th theme.Theme, ctrl controller.TemplateManager) view.Model {
	return &Model{
		ctx:        ctx,
		store:      store,
		theme:      th,
		controller: ctrl,
		cursor:     make(map[state.TemplateKind]int),
		input:      widget.NewInput(),
	}
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Title() string { return "Templates" }

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(width)
}

func (m *Model) SetTheme(th theme.Theme) { m.theme = th }

func (m *Model) Capturing() bool { return m.input.Active() }

func (m *Model) Refresh() tea.Cmd {
	if m.controller == nil {
		return nil
	}
	return view.Run(m.ctx, "templates.refresh", m.controller.Refresh)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.controller == nil {
		return m, nil
	}
	if m.input.Active() {
		path, submitted, cmd := m.input.Update(keyMsg)
		if submitted && path != "" {
			kind := m.focused()
			return m, view.Run(m.ctx, "templates.upload", func(ctx context.Context) error {
				return m.controller.Upload(ctx, kind, path)
			})
		}
		return m, cmd
	}

	kind := m.focused()
	switch keyMsg.String() {
	case "left", "h", "right", "l":
		m.focus = util.WrapIndex(m.focus, 1, len(kindOrder))
	case "down", "j":
		m.cursor[kind] = util.Clamp(m.cursor[kind]+1, len(m.files(kind)))
	case "up", "k":
		m.cursor[kind] = util.Clamp(m.cursor[kind]-1, len(m.files(kind)))
	case "u":
		ext := templates.Extension(kind)
		label := fmt.Sprintf("Upload %s template (%s)", kind, ext)
		return m, m.input.Open(label, "", "/path/to/template"+ext)
	case "r":
		return m, m.Refresh()
	}
	return m, nil
}

func (m *Model) focused() state.TemplateKind {
	return kindOrder[util.Clamp(m.focus, len(kindOrder))]
}

func (m *Model) files(kind state.TemplateKind) []state.TemplateFile {
	snap := m.controller.Snapshot()
	if kind == state.TemplatePrompt {
		return snap.Prompts
	}
	return snap.Commands
}

func (m *Model) View() string {
	if m.controller == nil {
		return m.theme.Danger.Render("Template controller unavailable")
	}
	snap := m.controller.Snapshot()

	panes := make([]string, 0, len(kindOrder))
	for idx, kind := range kindOrder {
		panes = append(panes, m.renderPane(kind, snap, idx == m.focus))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, panes...)

	footer := m.theme.Subtle.Render("←/→ switch list · ↑/↓ move · u upload · r refresh")
	if m.input.Active() {
		footer = m.input.View(m.theme)
	}
	return lipgloss.NewStyle().Width(m.contentWidth()).Render(body + "\n" + footer)
}

func (m *Model) renderPane(kind state.TemplateKind, snap state.TemplateSnapshot, focused bool) string {
	files := snap.Commands
	if kind == state.TemplatePrompt {
		files = snap.Prompts
	}
	width := max(20, m.contentWidth()/2-4)

	rows := make([][]string, len(files))
	for i, f := range files {
		rows[i] = []string{f.Name, f.Path}
	}
	inner := width - 8
	cols := []table.Column{{Title: "Name", Width: inner / 2}, {Title: "Path", Width: inner - inner/2}}

	title := m.theme.Title.Render(fmt.Sprintf("%s (%s)", kindTitles[kind], templates.Extension(kind)))
	if focused {
		title = m.theme.Warning.Render("> ") + title
	}
	if snap.Uploading[kind] {
		title += " " + m.theme.Warning.Render("uploading...")
	}

	list := table.Render(m.theme, cols, rows, table.Options{
		Cursor:  m.cursor[kind],
		Focused: focused,
		Height:  max(3, m.height-8),
		Empty:   "No templates in " + templates.Directory(kind),
	})
	return m.theme.Card.Width(width).Render(title + "\n" + list)
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width - 4
}
