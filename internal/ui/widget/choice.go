package widget

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/adamkadaban/netinspector-tui/internal/theme"
)

// Choice is one value an inline selector can take.
type Choice struct {
	Label string
	Value string
}

var onOff = []Choice{{Label: "Off", Value: "off"}, {Label: "On", Value: "on"}}

// ChoiceIndex finds value among choices ignoring case. Unknown values land on
// the first choice.
func ChoiceIndex(choices []Choice, value string) int {
	return max(0, slices.IndexFunc(choices, func(c Choice) bool {
		return strings.EqualFold(c.Value, value)
	}))
}

// Selector renders label and its choices on one line. The cursor marker is
// drawn only while the row has focus.
func Selector(th theme.Theme, label string, choices []Choice, current int, focused bool) string {
	cells := []string{th.Header.Render(label + ":")}
	for i, c := range choices {
		style, marker := th.TabInactive, " "
		switch {
		case i == current && focused:
			style, marker = th.TabActive.Underline(true), th.Warning.Render(">")
		case i == current:
			style = th.TabActive
		case focused:
			style = style.Faint(true)
		}
		cells = append(cells, " "+marker+style.Render(c.Label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, cells...)
}

// Switch renders an Off/On selector.
func Switch(th theme.Theme, label string, on, focused bool) string {
	current := 0
	if on {
		current = 1
	}
	return Selector(th, label, onOff, current, focused)
}
