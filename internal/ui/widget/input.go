package widget

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/adamkadaban/netinspector-tui/internal/theme"
)

// Input is a one-line prompt opened on demand, used for file paths and
// setting values.
type Input struct {
	model  textinput.Model
	label  string
	active bool
}

// NewInput returns a closed input.
func NewInput() Input {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 4096
	return Input{model: ti}
}

// Open activates the input with label and an initial value.
func (in *Input) Open(label, value, placeholder string) tea.Cmd {
	in.label = label
	in.active = true
	in.model.Placeholder = placeholder
	in.model.SetValue(value)
	in.model.CursorEnd()
	return in.model.Focus()
}

// Close deactivates the input and clears its value.
func (in *Input) Close() {
	in.active = false
	in.model.Blur()
	in.model.SetValue("")
}

// Active reports whether the input captures keys.
func (in *Input) Active() bool { return in.active }

// SetWidth bounds the visible text.
func (in *Input) SetWidth(width int) {
	if width > 4 {
		in.model.Width = width - 4
	}
}

// Update feeds a key to the input. Enter submits the trimmed value and esc
// cancels; both close the input.
func (in *Input) Update(msg tea.KeyMsg) (value string, submitted bool, cmd tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		value = strings.TrimSpace(in.model.Value())
		in.Close()
		return value, true, nil
	case tea.KeyEsc:
		in.Close()
		return "", false, nil
	}
	in.model, cmd = in.model.Update(msg)
	return "", false, cmd
}

// View renders the label and text field, or nothing when closed.
func (in *Input) View(th theme.Theme) string {
	if !in.active {
		return ""
	}
	return th.Header.Render(in.label+":") + "\n" + in.model.View() + "\n" +
		th.Subtle.Render("enter submit · esc cancel")
}
