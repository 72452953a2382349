package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/panetree/pkg/layout"
)

func checkGrid(t *testing.T, out string, width, height int) {
	t.Helper()
	lines := strings.Split(out, "\n")
	if len(lines) != height {
		t.Fatalf("Text() has %d lines, want %d:\n%s", len(lines), height, out)
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w != width {
			t.Errorf("line %d is %d cells wide, want %d: %q", i, w, width, line)
		}
	}
}

func TestText(t *testing.T) {
	for _, size := range [][2]int{{40, 12}, {41, 13}, {80, 24}} {
		out := Text(sampleTree(), size[0], size[1], TextOptions{Focused: "b"})
		checkGrid(t, out, size[0], size[1])
		for _, id := range []string{"a", "b", "c"} {
			if !strings.Contains(out, id) {
				t.Errorf("Text(%dx%d) missing pane %s", size[0], size[1], id)
			}
		}
	}
}

func TestTextLabels(t *testing.T) {
	out := Text(sampleTree(), 60, 12, TextOptions{Labels: map[layout.ID]string{"a": "editor"}})
	if !strings.Contains(out, "editor") {
		t.Error("Text() should show the label for a")
	}
}

func TestTextEmpty(t *testing.T) {
	out := Text(layout.New(layout.Horizontal), 20, 5, TextOptions{})
	checkGrid(t, out, 20, 5)
	if !strings.Contains(out, "(empty)") {
		t.Error("Text() of an empty tree should say so")
	}
	if Text(layout.New(layout.Horizontal), 0, 5, TextOptions{}) != "" {
		t.Error("Text() with zero width should be empty")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s    string
		n    int
		want string
	}{
		{"abc", 5, "abc"},
		{"abcdef", 4, "abc…"},
		{"abcdef", 1, "…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.s, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
		}
	}
}
