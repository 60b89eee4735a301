package widget

import (
	"strings"
	"testing"

	"github.com/adamkadaban/netinspector-tui/internal/theme"
	"github.com/adamkadaban/netinspector-tui/internal/util"
)

func TestChoiceIndex(t *testing.T) {
	themes := []Choice{
		{Label: "Dark", Value: "dark"},
		{Label: "Light", Value: "light"},
		{Label: "Auto", Value: "auto"},
	}
	tests := []struct {
		value string
		want  int
	}{
		{"light", 1},
		{"AUTO", 2},
		{"solarized", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := ChoiceIndex(themes, tt.value); got != tt.want {
			t.Errorf("ChoiceIndex(%q) = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestSelectorMarksCursorOnlyWhenFocused(t *testing.T) {
	th := theme.New(theme.Options{Preferred: "dark"})
	choices := []Choice{{Label: "Dark", Value: "dark"}, {Label: "Light", Value: "light"}}

	idle := util.StripANSI(Selector(th, "Theme", choices, 1, false))
	for _, want := range []string{"Theme:", "Dark", "Light"} {
		if !strings.Contains(idle, want) {
			t.Fatalf("selector missing %q: %q", want, idle)
		}
	}
	if strings.Contains(idle, ">") {
		t.Fatalf("unfocused selector should not show the cursor: %q", idle)
	}

	focused := util.StripANSI(Selector(th, "Theme", choices, 1, true))
	if !strings.Contains(focused, ">") || strings.Index(focused, ">") < strings.Index(focused, "Dark") {
		t.Fatalf("cursor should sit on the current choice: %q", focused)
	}
}

func TestSwitch(t *testing.T) {
	th := theme.New(theme.Options{Preferred: "dark"})
	out := util.StripANSI(Switch(th, "Upload screening", true, true))
	if !strings.Contains(out, "Upload screening:") {
		t.Fatalf("switch missing label: %q", out)
	}
	if strings.Index(out, ">") < strings.Index(out, "Off") {
		t.Fatalf("cursor should sit on On: %q", out)
	}
}
