package settings

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

// Model renders the settings view for console preferences and the backend
// settings object.
type Model struct {
	ctx        context.Context
	store      *state.Store
	theme      theme.Theme
	controller controller.SettingsManager
	remote     controller.RemoteSettings

	width  int
	height int

	focus     int
	themeIdx  int
	screening bool
	ruleDir   string
	editing   string
	input     widget.Input
}

const (
	fieldTheme = iota
	fieldScreening
	fieldRuleDir
	localFieldCount
)

var themeOptions = []widget.Choice{
	{Label: "Dark", Value: "dark"},
	{Label: "Light", Value: "light"},
	{Label: "Auto", Value: "auto"},
}

// New constructs a settings view model.
func New(ctx context.Context, store *state.Store, th theme.Theme, ctrl controller.SettingsManager, remote controller.RemoteSettings) view.Model {
	m := &Model{ctx: ctx, store: store, theme: th, controller: ctrl, remote: remote, input: widget.NewInput()}
	m.syncSelection()
	return m
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Title() string { return "Settings" }

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(width)
}

func (m *Model) SetTheme(th theme.Theme) { m.theme = th }

func (m *Model) Capturing() bool { return m.input.Active() }

func (m *Model) Refresh() tea.Cmd {
	m.syncSelection()
	if m.remote == nil {
		return nil
	}
	return view.Run(m.ctx, "settings.load", m.remote.Load)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.input.Active() {
		value, submitted, cmd := m.input.Update(keyMsg)
		if submitted {
			m.applyEdit(value)
		}
		if !m.input.Active() {
			m.editing = ""
		}
		return m, cmd
	}

	fields := m.remoteFields()
	total := localFieldCount + len(fields)
	switch keyMsg.String() {
	case "down", "j":
		m.focus = util.WrapIndex(m.focus, 1, total)
	case "up", "k":
		m.focus = util.WrapIndex(m.focus, -1, total)
	case "left", "h":
		return m, m.shiftSelection(-1)
	case "right", "l":
		return m, m.shiftSelection(1)
	case "enter", "e":
		return m, m.beginEdit(fields)
	case "s":
		if m.remote == nil {
			return m, nil
		}
		return m, view.Run(m.ctx, "settings.save", m.remote.Save)
	case "r":
		return m, m.Refresh()
	}
	return m, nil
}

func (m *Model) View() string {
	local := []string{
		widget.Selector(m.theme, "Theme", themeOptions, m.themeIdx, m.focus == fieldTheme),
		widget.Switch(m.theme, "Upload screening", m.screening, m.focus == fieldScreening),
		m.renderValue("YARA rule directory", util.Fallback(m.ruleDir, "not set"), m.focus == fieldRuleDir),
	}

	fields := m.remoteFields()
	backend := make([]string, 0, len(fields))
	for idx, f := range fields {
		backend = append(backend, m.renderValue(f.Path, f.Value, m.focus == localFieldCount+idx))
	}
	if len(backend) == 0 {
		backend = append(backend, m.theme.Subtle.Render("Backend settings not loaded (r to reload)"))
	}

	body := []string{
		m.renderSection("Console", local),
		m.renderSection("Backend", backend),
	}
	if m.input.Active() {
		body = append(body, m.input.View(m.theme))
	} else {
		body = append(body, m.theme.Subtle.Render("↑/↓ move · ←/→ change · enter edit · s save backend · r reload"))
	}

	content := strings.Join(body, "\n")
	return lipgloss.NewStyle().Width(m.contentWidth()).Render(content)
}

func (m *Model) syncSelection() {
	snapshot := m.store.Snapshot()
	m.themeIdx = widget.ChoiceIndex(themeOptions, snapshot.Settings.Theme)
	m.screening = snapshot.Settings.ScreeningEnabled
	m.ruleDir = snapshot.Settings.ScreeningRuleDir
}

func (m *Model) remoteFields() []controller.SettingField {
	if m.remote == nil {
		return nil
	}
	return m.remote.Fields()
}

func (m *Model) shiftSelection(delta int) tea.Cmd {
	if m.controller == nil {
		m.store.Notify(state.NoticeError, "Settings controller unavailable")
		return nil
	}
	switch m.focus {
	case fieldTheme:
		idx := util.WrapIndex(m.themeIdx, delta, len(themeOptions))
		value, err := m.controller.SetTheme(themeOptions[idx].Value)
		if err != nil {
			m.store.Notify(state.NoticeError, fmt.Sprintf("Failed to save theme: %v", err))
			return nil
		}
		m.themeIdx = widget.ChoiceIndex(themeOptions, value)
		m.updateSettings(func(s *state.Settings) { s.Theme = value })
		th := theme.New(theme.Options{Preferred: value})
		return func() tea.Msg { return view.ThemeMsg{Theme: th} }
	case fieldScreening:
		m.saveScreening(!m.screening, m.ruleDir)
	}
	return nil
}

func (m *Model) saveScreening(enabled bool, ruleDir string) {
	value, err := m.controller.SetScreening(enabled, ruleDir)
	if err != nil {
		m.store.Notify(state.NoticeError, fmt.Sprintf("Failed to save screening: %v", err))
		return
	}
	m.screening = value
	if strings.TrimSpace(ruleDir) != "" {
		m.ruleDir = strings.TrimSpace(ruleDir)
	}
	m.updateSettings(func(s *state.Settings) {
		s.ScreeningEnabled = m.screening
		s.ScreeningRuleDir = m.ruleDir
	})
	if value {
		m.store.Notify(state.NoticeSuccess, "Uploads will be screened with rules in "+m.ruleDir)
	} else {
		m.store.Notify(state.NoticeSuccess, "Upload screening disabled")
	}
}

func (m *Model) beginEdit(fields []controller.SettingField) tea.Cmd {
	switch {
	case m.focus == fieldRuleDir:
		m.editing = "rule_dir"
		return m.input.Open("YARA rule directory", m.ruleDir, "/path/to/rules")
	case m.focus >= localFieldCount && m.focus-localFieldCount < len(fields):
		f := fields[m.focus-localFieldCount]
		m.editing = f.Path
		return m.input.Open(fmt.Sprintf("%s (%s)", f.Path, f.Kind), f.Value, "")
	}
	return nil
}

func (m *Model) applyEdit(value string) {
	switch m.editing {
	case "":
		return
	case "rule_dir":
		if m.controller == nil || value == "" {
			return
		}
		m.saveScreening(m.screening, value)
	default:
		if err := m.remote.Set(m.editing, value); err != nil {
			m.store.Notify(state.NoticeError, err.Error())
			return
		}
		m.store.Notify(state.NoticeInfo, m.editing+" changed; press s to save")
	}
}

func (m *Model) updateSettings(mut func(*state.Settings)) {
	settings := m.store.Snapshot().Settings
	mut(&settings)
	m.store.SetSettings(settings)
}

func (m *Model) renderSection(title string, rows []string) string {
	return fmt.Sprintf("%s\n%s", m.theme.Title.Render(title), strings.Join(rows, "\n"))
}

func (m *Model) renderValue(label, value string, focused bool) string {
	marker := " "
	style := m.theme.Subtle
	if focused {
		marker = m.theme.Warning.Render(">")
		style = m.theme.Cursor
	}
	return fmt.Sprintf("%s%s %s", marker, m.theme.Header.Render(label+":"), style.Render(value))
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width - 4
}
