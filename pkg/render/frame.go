package render

import (
	"github.com/matzehuels/panetree/pkg/layout"
)

// Rect is an axis-aligned rectangle in cell coordinates. X and Y are the
// top-left corner.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the point (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Frames returns the rectangle of every node reachable from the root,
// with the root occupying view. Horizontal splits divide their width among
// the children from left to right; vertical splits divide their height
// from top to bottom.
func Frames(t *layout.Tree, view Rect) map[layout.ID]Rect {
	frames := make(map[layout.ID]Rect, t.Len())
	var place func(id layout.ID, r Rect)
	place = func(id layout.ID, r Rect) {
		frames[id] = r
		n, ok := t.Node(id)
		if !ok || !n.IsSplit() || len(n.Children) == 0 {
			return
		}
		if n.Orientation == layout.Horizontal {
			for i, w := range shares(r.W, len(n.Children)) {
				place(n.Children[i], Rect{X: r.X + w.offset, Y: r.Y, W: w.size, H: r.H})
			}
			return
		}
		for i, h := range shares(r.H, len(n.Children)) {
			place(n.Children[i], Rect{X: r.X, Y: r.Y + h.offset, W: r.W, H: h.size})
		}
	}
	place(layout.RootID, view)
	return frames
}

// PaneAt returns the pane whose frame contains (x, y).
func PaneAt(t *layout.Tree, frames map[layout.ID]Rect, x, y int) (layout.ID, bool) {
	for _, id := range t.Leaves() {
		if r, ok := frames[id]; ok && r.Contains(x, y) {
			return id, true
		}
	}
	return "", false
}

type share struct{ offset, size int }

// shares splits total into n contiguous parts whose sizes differ by at most
// one, with the larger parts last.
func shares(total, n int) []share {
	out := make([]share, n)
	for i := range out {
		start, end := total*i/n, total*(i+1)/n
		out[i] = share{offset: start, size: end - start}
	}
	return out
}
