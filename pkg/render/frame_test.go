package render

import (
	"testing"

	"github.com/matzehuels/panetree/pkg/layout"
)

func TestFrames(t *testing.T) {
	frames := Frames(sampleTree(), Rect{W: 100, H: 50})

	want := map[layout.ID]Rect{
		layout.RootID: {0, 0, 100, 50},
		"a":           {0, 0, 50, 50},
		"s":           {50, 0, 50, 50},
		"b":           {50, 0, 50, 25},
		"c":           {50, 25, 50, 25},
	}
	if len(frames) != len(want) {
		t.Errorf("Frames() returned %d frames, want %d", len(frames), len(want))
	}
	for id, r := range want {
		if got := frames[id]; got != r {
			t.Errorf("Frames()[%s] = %+v, want %+v", id, got, r)
		}
	}
}

func TestFramesTileExactly(t *testing.T) {
	tree := layout.MustFromNodes(map[layout.ID]layout.Node{
		layout.RootID: layout.Split("", layout.Horizontal, "a", "b", "c"),
		"a":           layout.Leaf(layout.RootID),
		"b":           layout.Leaf(layout.RootID),
		"c":           layout.Leaf(layout.RootID),
	})
	frames := Frames(tree, Rect{X: 5, Y: 2, W: 10, H: 4})

	want := []Rect{{5, 2, 3, 4}, {8, 2, 3, 4}, {11, 2, 4, 4}}
	for i, id := range []layout.ID{"a", "b", "c"} {
		if frames[id] != want[i] {
			t.Errorf("Frames()[%s] = %+v, want %+v", id, frames[id], want[i])
		}
	}
}

func TestShares(t *testing.T) {
	total := 0
	for _, s := range shares(17, 5) {
		if s.offset != total {
			t.Errorf("share offset = %d, want %d", s.offset, total)
		}
		if s.size < 3 || s.size > 4 {
			t.Errorf("share size = %d, want 3 or 4", s.size)
		}
		total += s.size
	}
	if total != 17 {
		t.Errorf("shares cover %d cells, want 17", total)
	}
}

func TestPaneAt(t *testing.T) {
	tree := sampleTree()
	frames := Frames(tree, Rect{W: 100, H: 50})

	tests := []struct {
		x, y int
		want layout.ID
	}{
		{0, 0, "a"},
		{49, 49, "a"},
		{50, 0, "b"},
		{99, 24, "b"},
		{75, 25, "c"},
	}
	for _, tt := range tests {
		got, ok := PaneAt(tree, frames, tt.x, tt.y)
		if !ok || got != tt.want {
			t.Errorf("PaneAt(%d, %d) = %q, %v; want %q", tt.x, tt.y, got, ok, tt.want)
		}
	}
	if _, ok := PaneAt(tree, frames, 100, 10); ok {
		t.Error("PaneAt() outside the view should report false")
	}
}
