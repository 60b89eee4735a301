// Package viewtest holds render assertions shared by the view tests.
package viewtest

import (
	"strings"
	"testing"

	"github.com/adamkadaban/netinspector-tui/internal/util"
)

// AssertContains fails unless every want appears in the unstyled render.
func AssertContains(t *testing.T, actual string, want ...string) {
	t.Helper()

	plain := Plain(actual)
	for _, w := range want {
		if !strings.Contains(plain, w) {
			t.Fatalf("expected render to contain %q, got:\n%s", w, plain)
		}
	}
}

// AssertNotContains fails if any of unwanted appears in the unstyled render.
func AssertNotContains(t *testing.T, actual string, unwanted ...string) {
	t.Helper()

	plain := Plain(actual)
	for _, w := range unwanted {
		if strings.Contains(plain, w) {
			t.Fatalf("did not expect render to contain %q, got:\n%s", w, plain)
		}
	}
}

// Plain strips styling and trailing padding from every line.
func Plain(s string) string {
	lines := strings.Split(util.StripANSI(s), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}
