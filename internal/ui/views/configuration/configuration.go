// Package configuration renders the configuration file workflow: picking or
// uploading one file per category and validating the set.
package configuration

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adamkadaban/netinspector-tui/internal/controller"
	"github.com/adamkadaban/netinspector-tui/internal/state"
	"github.com/adamkadaban/netinspector-tui/internal/theme"
	"github.com/adamkadaban/netinspector-tui/internal/ui/view"
	"github.com/adamkadaban/netinspector-tui/internal/ui/widget"
	"github.com/adamkadaban/netinspector-tui/internal/util"
)

type categoryInfo struct {
	title string
	help  string
}

var categoryText = map[state.Category]categoryInfo{
	state.CategoryHosts:    {title: "Hosts Configuration", help: "Upload hosts.yaml containing device inventory information"},
	state.CategoryGroups:   {title: "Groups Configuration", help: "Upload groups.yaml containing device group settings"},
	state.CategoryDefaults: {title: "Defaults Configuration", help: "Upload defaults.yaml containing default settings"},
}

// Model renders the configuration view.
type Model struct {
	ctx        context.Context
	store      *state.Store
	theme      theme.Theme
	controller controller.ConfigManager

	width  int
	height int

	focus int
	input widget.Input
}

// New constructs the configuration view.
func New(ctx context.Context, store *state.Store, th theme.Theme, ctrl controller.ConfigManager) view.Model {
	return &Model{ctx: ctx, store: store, theme: th, controller: ctrl, input: widget.NewInput()}
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Title() string { return "Configuration" }

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
	return view.Run(m.ctx, "config.refresh", m.controller.Refresh)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.controller == nil {
		return m, nil
	}
	if m.input.Active() {
		path, submitted, cmd := m.input.Update(keyMsg)
		if submitted && path != "" {
			return m, m.upload(m.focused(), path)
		}
		return m, cmd
	}

	switch keyMsg.String() {
	case "down", "j":
		m.focus = util.WrapIndex(m.focus, 1, len(state.Categories))
	case "up", "k":
		m.focus = util.WrapIndex(m.focus, -1, len(state.Categories))
	case "right", "l":
		m.cycleFile(1)
	case "left", "h":
		m.cycleFile(-1)
	case "x":
		m.controller.Select(m.focused(), "")
	case "u":
		category := m.focused()
		label := fmt.Sprintf("Upload %s file", category)
		return m, m.input.Open(label, "", fmt.Sprintf("/path/to/%s.yaml", category))
	case "v":
		if !m.controller.Ready() {
			m.store.Notify(state.NoticeInfo, "Select or upload hosts, groups and defaults files before validating")
			return m, nil
		}
		return m, view.Run(m.ctx, "config.validate", m.controller.Validate)
	case "r":
		return m, m.Refresh()
	}
	return m, nil
}

func (m *Model) upload(category state.Category, path string) tea.Cmd {
	return view.Run(m.ctx, "config.upload", func(ctx context.Context) error {
		return m.controller.Upload(ctx, category, path)
	})
}

func (m *Model) focused() state.Category {
	return state.Categories[util.Clamp(m.focus, len(state.Categories))]
}

// cycleFile moves the focused category's selection through its existing
// files. Starting from no selection picks the first or last file.
func (m *Model) cycleFile(delta int) {
	category := m.focused()
	cs := m.controller.Snapshot().Categories[category]
	if len(cs.Files) == 0 {
		return
	}
	idx := -1
	for i, f := range cs.Files {
		if f.Path == cs.Selected {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && delta > 0:
		idx = 0
	case idx < 0:
		idx = len(cs.Files) - 1
	default:
		idx = util.WrapIndex(idx, delta, len(cs.Files))
	}
	m.controller.Select(category, cs.Files[idx].Path)
}

func (m *Model) View() string {
	if m.controller == nil {
		return m.theme.Danger.Render("Configuration controller unavailable")
	}
	snap := m.controller.Snapshot()

	sections := make([]string, 0, len(state.Categories)+3)
	for idx, category := range state.Categories {
		sections = append(sections, m.renderCategory(category, snap.Categories[category], idx == m.focus))
	}
	sections = append(sections, m.renderValidation(snap))
	if m.input.Active() {
		sections = append(sections, m.input.View(m.theme))
	} else {
		sections = append(sections, m.theme.Subtle.Render("↑/↓ category · ←/→ choose file · x clear · u upload · v validate · r refresh"))
	}

	content := strings.Join(sections, "\n")
	return lipgloss.NewStyle().Width(m.contentWidth()).Render(content)
}

func (m *Model) renderCategory(category state.Category, cs state.CategoryState, focused bool) string {
	info := categoryText[category]
	marker := "  "
	if focused {
		marker = m.theme.Warning.Render("> ")
	}

	status := m.theme.Subtle.Render("No file selected")
	switch {
	case cs.Uploading:
		status = m.theme.Warning.Render(fmt.Sprintf("Uploading %s...", cs.PendingUpload))
	case cs.PendingUpload != "":
		status = m.theme.Success.Render("Uploaded: " + cs.PendingUpload)
	case cs.Selected != "":
		status = m.theme.Success.Render("Selected: " + fileName(cs.Files, cs.Selected))
	}

	lines := []string{
		marker + m.theme.Title.Render(info.title) + " " + m.readyMark(cs),
		"  " + m.theme.Subtle.Render(info.help),
		"  " + status,
	}
	if len(cs.Files) > 0 {
		names := make([]string, len(cs.Files))
		for i, f := range cs.Files {
			name := f.Name
			if f.Path == cs.Selected {
				name = m.theme.TabActive.Render(name)
			}
			names[i] = name
		}
		lines = append(lines, "  Existing: "+strings.Join(names, " "))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) readyMark(cs state.CategoryState) string {
	if cs.Ready() {
		return m.theme.Success.Render("✓")
	}
	return m.theme.Subtle.Render("·")
}

func (m *Model) renderValidation(snap state.ConfigSnapshot) string {
	head := m.theme.Title.Render("Validation")
	switch {
	case snap.Validating:
		return head + "\n  " + m.theme.Warning.Render("Validating...")
	case snap.Validation == nil:
		if m.controller.Ready() {
			return head + "\n  " + m.theme.Subtle.Render("Ready to validate")
		}
		return head + "\n  " + m.theme.Subtle.Render("Waiting for all three configuration files")
	case snap.Validation.Outcome == state.ValidationSuccess:
		msg := util.Fallback(snap.Validation.Message, "Configuration validated successfully")
		return head + "\n  " + m.theme.Success.Render(msg)
	default:
		msg := util.Fallback(snap.Validation.Message, "Configuration validation failed")
		return head + "\n  " + m.theme.Danger.Render(msg)
	}
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width - 4
}

func fileName(files []state.ExistingFile, path string) string {
	for _, f := range files {
		if f.Path == path {
			return f.Name
		}
	}
	return path
}
