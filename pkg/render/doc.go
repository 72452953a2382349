// Package render turns layout trees into things people can look at.
//
// # Geometry
//
// [Frames] assigns every node a [Rect] inside a viewport. Children of a
// split share its extent equally along the split's orientation; the
// remainder of an uneven division goes to the later children one cell at a
// time, so the frames always tile the viewport exactly.
//
// [HitZone] classifies a point inside a pane's frame as one of the five
// drop positions. The outer fifth of each side is an edge zone; edges are
// checked left, right, top, bottom, and anything else is the center.
//
// # Text
//
// [Text] draws the panes as bordered boxes using lipgloss, sized to fill a
// terminal of the given dimensions:
//
//	out := render.Text(tree, 80, 24, render.TextOptions{Focused: "a"})
//	fmt.Println(out)
//
// # Graphviz
//
// [ToDOT] describes the tree as a Graphviz digraph with splits and panes as
// nodes and child order preserved. [RenderSVG] lays that out with Graphviz,
// and [RenderSVGCached] memoizes the result in a [cache.Cache] keyed by the
// DOT source:
//
//	dot := render.ToDOT(tree, render.DOTOptions{})
//	svg, err := render.RenderSVGCached(ctx, c, dot)
package render
