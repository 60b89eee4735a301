// Package inspector renders device and template selection, dispatches
// inspection runs and shows the run log.
package inspector

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adamkadaban/netinspector-tui/internal/controller"
	"github.com/adamkadaban/netinspector-tui/internal/state"
	"github.com/adamkadaban/netinspector-tui/internal/theme"
	"github.com/adamkadaban/netinspector-tui/internal/ui/components/table"
	"github.com/adamkadaban/netinspector-tui/internal/ui/view"
	"github.com/adamkadaban/netinspector-tui/internal/util"
)

const (
	opStart  = "inspection.start"
	opReload = "inspection.reload"

	hostRows  = 8
	logScroll = 8
)

var deviceColumns = []table.Column{
	{Title: "", Width: 4},
	{Title: "Name", Width: 20},
	{Title: "IP", Width: 16},
	{Title: "Platform", Width: 14},
	{Title: "Groups", Width: 24},
}

// Model renders the inspector view.
type Model struct {
	ctx        context.Context
	store      *state.Store
	theme      theme.Theme
	controller controller.InspectionManager
	templates  controller.TemplateManager

	width  int
	height int

	cursor  int
	xOffset int
	spinner  spinner.Model
	logs     viewport.Model
	follow   bool
	starting bool
}

// New constructs the inspector view.
func New(ctx context.Context, store *state.Store, th theme.Theme, ctrl controller.InspectionManager, tmpl controller.TemplateManager) view.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &Model{
		ctx:        ctx,
		store:      store,
		theme:      th,
		controller: ctrl,
		templates:  tmpl,
		spinner:    sp,
		logs:       viewport.New(80, logScroll),
		follow:     true,
	}
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Title() string { return "Inspector" }

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.logs.Width = m.contentWidth()
	m.logs.Height = max(3, height-hostRows-10)
}

func (m *Model) SetTheme(th theme.Theme) { m.theme = th }

func (m *Model) Refresh() tea.Cmd {
	if m.controller == nil {
		return nil
	}
	reload := view.Run(m.ctx, opReload, m.controller.Reload)
	if m.controller.Snapshot().Running {
		return tea.Batch(reload, m.spinner.Tick)
	}
	return reload
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.controller == nil {
		return m, nil
	}
	switch msg := msg.(type) {
	case view.DoneMsg:
		if msg.Op == opStart {
			m.starting = false
		}
		return m, nil
	case spinner.TickMsg:
		if !m.starting && !m.controller.Snapshot().Running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	snap := m.controller.Snapshot()
	switch msg.String() {
	case "down", "j":
		m.cursor = util.Clamp(m.cursor+1, len(snap.Devices))
	case "up", "k":
		m.cursor = util.Clamp(m.cursor-1, len(snap.Devices))
	case " ", "x":
		if len(snap.Devices) > 0 {
			m.controller.ToggleHost(snap.Devices[util.Clamp(m.cursor, len(snap.Devices))].Name)
		}
	case "c":
		m.controller.SetCommandTemplate(nextTemplate(m.templateSnapshot().Commands, snap.CommandTemplate))
	case "p":
		m.controller.SetPromptTemplate(nextTemplate(m.templateSnapshot().Prompts, snap.PromptTemplate))
	case "enter":
		m.starting = true
		return tea.Batch(view.Run(m.ctx, opStart, m.controller.Start), m.spinner.Tick)
	case "r":
		return m.Refresh()
	case "pgup":
		m.follow = false
		m.logs.ScrollUp(logScroll)
	case "pgdown":
		m.logs.ScrollDown(logScroll)
		m.follow = m.logs.AtBottom()
	case "[":
		m.xOffset = max(0, m.xOffset-8)
	case "]":
		m.xOffset += 8
	}
	return nil
}

func (m *Model) templateSnapshot() state.TemplateSnapshot {
	if m.templates == nil {
		return state.TemplateSnapshot{}
	}
	return m.templates.Snapshot()
}

// nextTemplate cycles through files and back to no selection.
func nextTemplate(files []state.TemplateFile, current string) string {
	if len(files) == 0 {
		return ""
	}
	for i, f := range files {
		if f.Path == current {
			if i+1 == len(files) {
				return ""
			}
			return files[i+1].Path
		}
	}
	return files[0].Path
}

func (m *Model) View() string {
	if m.controller == nil {
		return m.theme.Danger.Render("Inspection controller unavailable")
	}
	snap := m.controller.Snapshot()
	tmpl := m.templateSnapshot()

	sections := []string{
		m.theme.Title.Render(fmt.Sprintf("Devices (%d selected)", len(snap.SelectedHosts))),
		table.Render(m.theme, deviceColumns, deviceRows(snap), table.Options{
			Cursor:  m.cursor,
			Focused: true,
			Height:  hostRows,
			Empty:   "No hosts loaded. Validate the configuration, then press r.",
		}),
		m.renderTemplate("Command template", tmpl.Commands, snap.CommandTemplate),
		m.renderTemplate("Prompt template", tmpl.Prompts, snap.PromptTemplate),
		m.renderStatus(snap),
		m.theme.Title.Render("Inspection log"),
		m.renderLogs(snap.Logs),
		m.theme.Subtle.Render("↑/↓ move · space toggle · c command · p prompt · enter start · r reload · pgup/pgdn scroll · [/] pan"),
	}
	return lipgloss.NewStyle().Width(m.contentWidth()).Render(strings.Join(sections, "\n"))
}

func deviceRows(snap state.InspectionSnapshot) [][]string {
	rows := make([][]string, len(snap.Devices))
	for i, dev := range snap.Devices {
		rows[i] = []string{
			util.Checkbox(slices.Contains(snap.SelectedHosts, dev.Name)),
			dev.Name,
			dev.IP,
			dev.Platform,
			strings.Join(dev.Groups, ", "),
		}
	}
	return rows
}

func (m *Model) renderTemplate(label string, files []state.TemplateFile, current string) string {
	value := m.theme.Subtle.Render("none")
	if current != "" {
		value = m.theme.Success.Render(templateName(files, current))
	}
	return fmt.Sprintf("%s%s %s", m.theme.Header.Render(label+":"), value, m.theme.Subtle.Render(fmt.Sprintf("(%d available)", len(files))))
}

func (m *Model) renderStatus(snap state.InspectionSnapshot) string {
	if snap.Running {
		return m.theme.Warning.Render(m.spinner.View() + " Inspection running")
	}
	return m.theme.Subtle.Render("Idle")
}

func (m *Model) renderLogs(entries []state.LogEntry) string {
	if len(entries) == 0 {
		return m.theme.Subtle.Render("No inspection output yet")
	}
	lines := make([]string, len(entries))
	for i, entry := range entries {
		lines[i] = m.theme.Severity(entry.Severity).Render(util.FormatLogEntry(entry))
	}
	if m.xOffset > 0 {
		lines = table.ClipRows(lines, m.xOffset, max(1, m.logs.Width))
	}
	m.logs.SetContent(strings.Join(lines, "\n"))
	if m.follow {
		m.logs.GotoBottom()
	}
	return m.logs.View()
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width - 4
}

func templateName(files []state.TemplateFile, path string) string {
	for _, f := range files {
		if f.Path == path {
			return f.Name
		}
	}
	return path
}
