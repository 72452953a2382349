// Package layout provides the tiling layout tree: a binary-space-partition
// style tree whose leaves are panes and whose internal nodes are horizontal
// or vertical splits.
//
// # Overview
//
// A [Tree] is a flat mapping from [ID] to [Node]. Parent and child links are
// expressed as identifiers rather than pointers, so a pane can be reparented
// by editing two entries without touching the rest of the tree. The split
// stored under [RootID] is the root; it always exists and is never collapsed.
// Any other split is a "structure" node.
//
// # Operations
//
// An [Engine] implements the five mutating operations:
//
//   - [Engine.InsertRoot]: append a new pane as the last child of the root
//   - [Engine.InsertAt]: insert a pane next to an existing one, wrapping the
//     target in a new split when the position crosses its parent's plane
//   - [Engine.Remove]: delete a pane, collapsing a split left with one child
//   - [Engine.Move]: Remove followed by InsertAt, preserving the pane's id
//   - [Engine.Swap]: exchange the positions of two panes
//
// Every operation takes a snapshot and returns a new one. The input snapshot
// is never modified, so a renderer holding the old tree can keep using it:
//
//	e := layout.NewEngine(nil)
//	t := layout.New(layout.Horizontal)
//	t, _, _ = e.InsertRoot(t, "a")
//	t, _, _ = e.InsertAt(t, layout.Location{Target: "a", Position: layout.Bottom}, "b", "")
//
// # Invariants
//
// [Tree.Validate] checks the structural invariants every operation preserves:
// exactly one root, every parent reference matched by exactly one entry in
// the parent's children, and no structure split with fewer than two children.
//
// # Errors
//
// Failures are reported with the sentinel errors of this package wrapped with
// the offending id; use [errors.Is] to branch on them. No operation applies a
// partial mutation.
package layout
