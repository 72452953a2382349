package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/panetree/pkg/layout"
)

var (
	colorAccent = lipgloss.Color("36")  // Teal - focused pane
	colorBorder = lipgloss.Color("240") // Dim gray - other panes
	colorTarget = lipgloss.Color("220") // Amber - drop target
	colorLabel  = lipgloss.Color("245") // Gray - pane labels
)

// TextOptions configures [Text].
type TextOptions struct {
	// Focused is drawn with an accent border.
	Focused layout.ID

	// Target is drawn with a highlighted border, e.g. while dragging.
	Target layout.ID

	// Labels overrides the text shown in a pane. Panes without an entry
	// show their id.
	Labels map[layout.ID]string
}

// Text draws t as bordered boxes filling a width x height cell grid. The
// result has exactly height lines, each width cells wide. Panes too small
// for a border are left blank.
func Text(t *layout.Tree, width, height int, opts TextOptions) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if len(t.Root().Children) == 0 {
		return box("(empty)", width, height, lipgloss.NewStyle().Foreground(colorBorder))
	}
	return drawNode(t, layout.RootID, width, height, opts)
}

func drawNode(t *layout.Tree, id layout.ID, width, height int, opts TextOptions) string {
	n, _ := t.Node(id)
	if n.IsLeaf() {
		return drawPane(id, width, height, opts)
	}

	parts := make([]string, len(n.Children))
	if n.Orientation == layout.Horizontal {
		for i, s := range shares(width, len(n.Children)) {
			parts[i] = drawNode(t, n.Children[i], s.size, height, opts)
		}
		return joinNonEmpty(true, parts)
	}
	for i, s := range shares(height, len(n.Children)) {
		parts[i] = drawNode(t, n.Children[i], width, s.size, opts)
	}
	return joinNonEmpty(false, parts)
}

func drawPane(id layout.ID, width, height int, opts TextOptions) string {
	label, ok := opts.Labels[id]
	if !ok {
		label = id
	}
	border := colorBorder
	switch id {
	case opts.Target:
		border = colorTarget
	case opts.Focused:
		border = colorAccent
	}
	return box(label, width, height, lipgloss.NewStyle().Foreground(colorLabel).BorderForeground(border))
}

// box renders label inside a rounded border of exactly width x height cells.
func box(label string, width, height int, style lipgloss.Style) string {
	if width == 0 || height == 0 {
		return ""
	}
	if width < 3 || height < 3 {
		return blank(width, height)
	}
	inner := width - 2
	return style.
		Border(lipgloss.RoundedBorder()).
		Width(inner).
		Height(height - 2).
		MaxHeight(height).
		Render(truncate(label, inner))
}

func blank(width, height int) string {
	line := strings.Repeat(" ", width)
	lines := make([]string, height)
	for i := range lines {
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// truncate shortens s to at most n cells, ending in an ellipsis when cut.
func truncate(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	if n < 1 {
		return ""
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > n {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

// joinNonEmpty joins blocks side by side or stacked, skipping blocks of
// zero size.
func joinNonEmpty(horizontal bool, parts []string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	if horizontal {
		return lipgloss.JoinHorizontal(lipgloss.Top, kept...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, kept...)
}
