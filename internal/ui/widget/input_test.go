package widget

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adamkadaban/netinspector-tui/internal/theme"
)

func typeInto(in *Input, text string) {
	for _, r := range text {
		in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestInputSubmitTrims(t *testing.T) {
	in := NewInput()
	in.Open("Upload hosts file", "", "/path/to/hosts.yaml")
	if !in.Active() {
		t.Fatal("expected active input")
	}
	typeInto(&in, " ./hosts.yaml ")

	value, submitted, _ := in.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !submitted || value != "./hosts.yaml" {
		t.Fatalf("unexpected submit %q %v", value, submitted)
	}
	if in.Active() {
		t.Fatal("input should close after submit")
	}
}

func TestInputEscCancels(t *testing.T) {
	in := NewInput()
	in.Open("Value", "30", "")
	value, submitted, _ := in.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if submitted || value != "" || in.Active() {
		t.Fatalf("expected cancel, got %q %v active=%v", value, submitted, in.Active())
	}
}

func TestInputView(t *testing.T) {
	th := theme.New(theme.Options{Preferred: "dark"})
	in := NewInput()
	if in.View(th) != "" {
		t.Fatal("closed input should render nothing")
	}
	in.Open("Rule directory", "/etc/rules", "")
	if !strings.Contains(in.View(th), "Rule directory") {
		t.Fatalf("expected label in %q", in.View(th))
	}
}
