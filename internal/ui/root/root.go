package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adamkadaban/netinspector-tui/internal/controller"
	"github.com/adamkadaban/netinspector-tui/internal/keymap"
	"github.com/adamkadaban/netinspector-tui/internal/state"
	"github.com/adamkadaban/netinspector-tui/internal/theme"
	"github.com/adamkadaban/netinspector-tui/internal/ui/prompt"
	"github.com/adamkadaban/netinspector-tui/internal/ui/view"
	"github.com/adamkadaban/netinspector-tui/internal/ui/views/assistant"
	"github.com/adamkadaban/netinspector-tui/internal/ui/views/configuration"
	"github.com/adamkadaban/netinspector-tui/internal/ui/views/inspector"
	settingsview "github.com/adamkadaban/netinspector-tui/internal/ui/views/settings"
	"github.com/adamkadaban/netinspector-tui/internal/ui/views/templates"
)

// Options controls how the root model is assembled.
type Options struct {
	Theme      theme.Theme
	KeyMap     *keymap.Global
	Config     controller.ConfigManager
	Inspection controller.InspectionManager
	Templates  controller.TemplateManager
	Gate       controller.CommandGate
	Settings   controller.SettingsManager
	Remote     controller.RemoteSettings
}

// Model orchestrates routed Bubble Tea views and global UI chrome.
type Model struct {
	store  *state.Store
	sub    *state.Subscription
	keymap keymap.Global
	theme  theme.Theme
	prompt *prompt.Model
	gate   controller.CommandGate

	views  map[state.ViewKind]view.Model
	order  []state.ViewKind
	active state.ViewKind

	width  int
	height int
}

// New builds the root Bubble Tea model. ctx bounds every backend call the
// views start.
func New(ctx context.Context, store *state.Store, opts Options) *Model {
	keyMap := keymap.DefaultGlobal()
	if opts.KeyMap != nil {
		keyMap = *opts.KeyMap
	}

	views := map[state.ViewKind]view.Model{
		state.ViewConfiguration: configuration.New(ctx, store, opts.Theme, opts.Config),
		state.ViewInspector:     inspector.New(ctx, store, opts.Theme, opts.Inspection, opts.Templates),
		state.ViewTemplates:     templates.New(ctx, store, opts.Theme, opts.Templates),
		state.ViewAssistant:     assistant.New(ctx, store, opts.Theme, opts.Gate),
		state.ViewSettings:      settingsview.New(ctx, store, opts.Theme, opts.Settings, opts.Remote),
	}

	model := &Model{
		store:  store,
		keymap: keyMap,
		theme:  opts.Theme,
		prompt: prompt.New(ctx, store, opts.Theme, opts.Gate),
		gate:   opts.Gate,
		views:  views,
		order:  append([]state.ViewKind{}, state.DefaultViewOrder...),
		active: state.ViewConfiguration,
	}
	if store != nil {
		model.sub = store.Subscribe()
		model.active = store.ActiveView()
	}
	return model
}

type storeChangeMsg struct{}

func (m *Model) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.views)+3)
	for _, v := range m.views {
		cmds = append(cmds, v.Init())
	}
	if m.prompt != nil {
		cmds = append(cmds, m.prompt.Init())
	}
	if active := m.activeView(); active != nil {
		cmds = append(cmds, active.Refresh())
	}
	cmds = append(cmds, waitForStoreChanges(m.sub))
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case storeChangeMsg:
		return m, waitForStoreChanges(m.sub)
	case view.DoneMsg:
		if errors.Is(msg.Err, controller.ErrBusy) {
			m.store.Notify(state.NoticeInfo, "Already in progress")
		}
		return m, m.broadcast(msg)
	case view.ThemeMsg:
		m.applyTheme(msg.Theme)
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, v := range m.views {
			v.SetSize(msg.Width, max(1, msg.Height-2))
		}
		if m.prompt != nil {
			m.prompt.SetSize(msg.Width, max(1, msg.Height-2))
		}

	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.Quit) {
			return m, tea.Quit
		}
		if m.overlayVisible() {
			if cmd, handled := m.prompt.Update(msg); handled {
				return m, cmd
			}
		}
		if !m.capturing() {
			switch {
			case key.Matches(msg, m.keymap.NextView):
				return m, m.cycle(1)
			case key.Matches(msg, m.keymap.PrevView):
				return m, m.cycle(-1)
			case key.Matches(msg, m.keymap.Refresh):
				return m, m.activeView().Refresh()
			}
		}

	case tea.QuitMsg:
		m.closeSubscription()
	}

	activeView := m.activeView()
	if activeView == nil {
		return m, nil
	}
	updated, cmd := activeView.Update(msg)
	if nextView, ok := updated.(view.Model); ok {
		m.views[m.active] = nextView
	}

	return m, cmd
}

func (m *Model) View() string {
	activeView := m.activeView()
	if activeView == nil {
		return ""
	}

	headline := lipgloss.JoinHorizontal(lipgloss.Top,
		m.theme.Title.Render("Network Inspector"),
		lipgloss.NewStyle().Padding(0, 1).Render(m.renderTabs()),
	)

	body := activeView.View()
	if m.overlayVisible() {
		if overlay := m.prompt.View(); overlay != "" {
			body = overlay
		}
	}
	footer := m.theme.Footer.Render(m.footerLine(m.store.Snapshot()))

	return lipgloss.JoinVertical(lipgloss.Left, headline, body, footer)
}

func (m *Model) activeView() view.Model {
	return m.views[m.active]
}

// overlayVisible limits the confirmation overlay to the assistant view so a
// pending command never blocks the other workflows.
func (m *Model) overlayVisible() bool {
	return m.prompt != nil && m.active == state.ViewAssistant && m.prompt.Active()
}

func (m *Model) capturing() bool {
	if c, ok := m.activeView().(view.Capturer); ok {
		return c.Capturing()
	}
	return false
}

// broadcast hands msg to every view. Completions can land after the view
// that started the call is no longer active.
func (m *Model) broadcast(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.views))
	for kind, v := range m.views {
		updated, cmd := v.Update(msg)
		if next, ok := updated.(view.Model); ok {
			m.views[kind] = next
		}
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *Model) applyTheme(th theme.Theme) {
	m.theme = th
	for _, v := range m.views {
		v.SetTheme(th)
	}
	if m.prompt != nil {
		m.prompt.SetTheme(th)
	}
}

func (m *Model) cycle(delta int) tea.Cmd {
	if len(m.order) == 0 {
		return nil
	}
	idx := indexOf(m.order, m.active)
	idx = (idx + delta) % len(m.order)
	if idx < 0 {
		idx += len(m.order)
	}
	m.active = m.order[idx]
	m.store.SetActiveView(m.active)
	return m.activeView().Refresh()
}

func (m *Model) closeSubscription() {
	if m.sub != nil {
		m.sub.Close()
		m.sub = nil
	}
}

func (m *Model) renderTabs() string {
	labels := make([]string, 0, len(m.order))
	for _, kind := range m.order {
		view := m.views[kind]
		if view == nil {
			continue
		}
		labels = append(labels, m.theme.RenderTab(view.Title(), kind == m.active))
	}
	return strings.Join(labels, " ")
}

func (m *Model) footerLine(snapshot state.Snapshot) string {
	line := fmt.Sprintf("View %s · %s", titleCase(string(snapshot.ActiveView)), m.keymap.ShortHelp())
	if snapshot.Notice.Text != "" {
		line = fmt.Sprintf("%s · %s", line, m.theme.Notice(snapshot.Notice.Level).Render(snapshot.Notice.Text))
	}
	if m.gate != nil && snapshot.ActiveView != state.ViewAssistant &&
		m.gate.Snapshot().State == state.GateAwaitingConfirmation {
		line = fmt.Sprintf("%s · %s", line, m.theme.Danger.Render("● command awaiting confirmation"))
	}
	return line
}

func indexOf(values []state.ViewKind, target state.ViewKind) int {
	for idx, value := range values {
		if value == target {
			return idx
		}
	}
	return 0
}

func titleCase(value string) string {
	if value == "" {
		return value
	}
	return strings.ToUpper(value[:1]) + value[1:]
}

func waitForStoreChanges(sub *state.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-sub.Events(); !ok {
			return nil
		}
		return storeChangeMsg{}
	}
}
