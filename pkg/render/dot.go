package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/panetree/pkg/cache"
	"github.com/matzehuels/panetree/pkg/layout"
)

// DOTOptions configures [ToDOT].
type DOTOptions struct {
	// Detailed adds each node's parent and child count to its label.
	Detailed bool

	// Highlight is drawn with an accent fill.
	Highlight layout.ID
}

// ToDOT converts a layout tree to Graphviz DOT. Splits are drawn as plain
// boxes labelled with their orientation, panes as rounded boxes. Edges run
// from each split to its children in order.
func ToDOT(t *layout.Tree, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph layout {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  ordering=out;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var edges []string
	t.Walk(func(id layout.ID, n layout.Node, _ int) bool {
		label := fmtLabel(id, n, opts.Detailed)
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(fmtAttrs(id, n, label, opts), ", "))
		for _, c := range n.Children {
			edges = append(edges, fmt.Sprintf("  %q -> %q;\n", id, c))
		}
		return true
	})

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(id layout.ID, n layout.Node, detailed bool) string {
	label := id
	if n.IsSplit() {
		label = fmt.Sprintf("%s\n%s", id, n.Orientation)
	}
	if !detailed {
		return label
	}
	if n.Parent != "" {
		label += "\nparent: " + n.Parent
	}
	if n.IsSplit() {
		label += fmt.Sprintf("\nchildren: %d", len(n.Children))
	}
	return label
}

func fmtAttrs(id layout.ID, n layout.Node, label string, opts DOTOptions) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case id == opts.Highlight:
		attrs = append(attrs, "style=\"rounded,filled\"", "fillcolor=\"#f5c542\"")
	case n.IsRoot():
		attrs = append(attrs, "style=\"filled,bold\"", "fillcolor=\"#d0e8e4\"")
	case n.IsSplit():
		attrs = append(attrs, "style=filled", "fillcolor=\"#eeeeee\"", "fontcolor=\"#555555\"")
	default:
		attrs = append(attrs, "style=\"rounded,filled\"", "fillcolor=white")
	}
	return attrs
}

// RenderSVG lays out dot with Graphviz and returns SVG whose viewBox starts
// at the origin. A render cannot be interrupted once Graphviz starts, so ctx
// is checked on both sides of it.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("start graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse layout DOT: %w", err)
	}
	defer g.Close()

	var out bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &out); err != nil {
		return nil, fmt.Errorf("graphviz svg: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fitViewBox(out.Bytes()), nil
}

// RenderSVGCached is [RenderSVG] memoized in c under a hash of dot.
func RenderSVGCached(ctx context.Context, c cache.Cache, dot string) ([]byte, error) {
	if c == nil {
		return RenderSVG(ctx, dot)
	}
	key := cache.Key("svg", cache.Hash([]byte(dot)))
	return cache.Fetch(ctx, c, "svg", key, cache.DefaultTTL, func() ([]byte, error) {
		return RenderSVG(ctx, dot)
	})
}

var svgOpenTag = regexp.MustCompile(`<svg[^>]*>`)

// fitViewBox swaps the opening svg tag for one sized from its viewBox, with
// the box moved to the origin. Graphviz measures in points and offsets the
// box; without this a layout diagram does not scale inside a page. Input
// without a positive viewBox is returned unchanged.
func fitViewBox(svg []byte) []byte {
	tag := svgOpenTag.Find(svg)
	if tag == nil {
		return svg
	}
	_, rest, ok := bytes.Cut(tag, []byte(`viewBox="`))
	if !ok {
		return svg
	}
	box, _, ok := bytes.Cut(rest, []byte(`"`))
	if !ok {
		return svg
	}
	f := strings.Fields(string(box))
	if len(f) != 4 {
		return svg
	}
	w, errW := strconv.ParseFloat(f[2], 64)
	h, errH := strconv.ParseFloat(f[3], 64)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return svg
	}
	fitted := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return bytes.Replace(svg, tag, []byte(fitted), 1)
}
