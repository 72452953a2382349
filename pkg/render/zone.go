package render

import "github.com/matzehuels/panetree/pkg/layout"

// EdgeFraction is the share of a pane's width or height, measured from each
// side, that counts as an edge drop zone.
const EdgeFraction = 0.2

// HitZone returns the drop position for the point (x, y) in a pane framed
// by r. Cells are measured at their centers. Edge zones are tested left,
// right, top, bottom, so corners belong to the side edges.
func HitZone(r Rect, x, y int) layout.Position {
	bandX := float64(r.W) * EdgeFraction
	bandY := float64(r.H) * EdgeFraction
	fx, fy := float64(x)+0.5, float64(y)+0.5
	left, right := float64(r.X), float64(r.X+r.W)
	top, bottom := float64(r.Y), float64(r.Y+r.H)

	switch {
	case fx < left+bandX:
		return layout.Left
	case fx > right-bandX:
		return layout.Right
	case fy < top+bandY:
		return layout.Top
	case fy > bottom-bandY:
		return layout.Bottom
	default:
		return layout.Center
	}
}
