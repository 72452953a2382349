package layout

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Tree is an immutable layout snapshot. Operations on an [Engine] return new
// trees and leave their input untouched, so a Tree may be shared freely
// between goroutines once built.
//
// The zero value is not usable - use [New] or [FromNodes].
type Tree struct {
	nodes map[ID]Node
}

// New returns a tree holding only an empty root split with orientation o.
func New(o Orientation) *Tree {
	return &Tree{nodes: map[ID]Node{RootID: Split("", o)}}
}

// FromNodes builds a tree from an id-to-node mapping, copying it, and
// returns the first invariant violation found by [Tree.Validate].
func FromNodes(nodes map[ID]Node) (*Tree, error) {
	t := &Tree{nodes: make(map[ID]Node, len(nodes))}
	for id, n := range nodes {
		t.nodes[id] = n.clone()
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// MustFromNodes is like FromNodes but panics on an invalid mapping.
// It is intended for tests and static fixtures.
func MustFromNodes(nodes map[ID]Node) *Tree {
	t, err := FromNodes(nodes)
	if err != nil {
		panic(err)
	}
	return t
}

// Node returns a copy of the node stored under id.
func (t *Tree) Node(id ID) (Node, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.clone(), true
}

// Has reports whether id is present.
func (t *Tree) Has(id ID) bool {
	_, ok := t.nodes[id]
	return ok
}

// Root returns a copy of the root split.
func (t *Tree) Root() Node {
	n, _ := t.Node(RootID)
	return n
}

// Orientation returns the root's orientation.
func (t *Tree) Orientation() Orientation { return t.nodes[RootID].Orientation }

// Len returns the number of nodes, root included.
func (t *Tree) Len() int { return len(t.nodes) }

// IDs returns every id in the tree in sorted order.
func (t *Tree) IDs() []ID { return slices.Sorted(maps.Keys(t.nodes)) }

// Children returns a copy of the children of id, or nil if id is a leaf or
// absent.
func (t *Tree) Children(id ID) []ID {
	return slices.Clone(t.nodes[id].Children)
}

// Nodes returns a deep copy of the underlying mapping.
func (t *Tree) Nodes() map[ID]Node {
	out := make(map[ID]Node, len(t.nodes))
	for id, n := range t.nodes {
		out[id] = n.clone()
	}
	return out
}

// Leaves returns the pane ids in depth-first sibling order, which is the
// reading order on screen.
func (t *Tree) Leaves() []ID {
	var leaves []ID
	t.Walk(func(id ID, n Node, _ int) bool {
		if n.IsLeaf() {
			leaves = append(leaves, id)
		}
		return true
	})
	return leaves
}

// LeafCount returns the number of panes.
func (t *Tree) LeafCount() int {
	count := 0
	for _, n := range t.nodes {
		if n.IsLeaf() {
			count++
		}
	}
	return count
}

// Depth returns the number of splits on the longest path from the root to a
// leaf. An empty root has depth 1.
func (t *Tree) Depth() int {
	depth := 0
	t.Walk(func(_ ID, n Node, d int) bool {
		if n.IsSplit() && d+1 > depth {
			depth = d + 1
		}
		return true
	})
	return depth
}

// Walk visits nodes depth-first from the root in sibling order. depth is 0
// for the root. Returning false from fn skips the node's children. Nodes
// unreachable from the root are not visited.
func (t *Tree) Walk(fn func(id ID, n Node, depth int) bool) {
	visited := make(map[ID]bool, len(t.nodes))
	var walk func(id ID, depth int)
	walk = func(id ID, depth int) {
		n, ok := t.nodes[id]
		if !ok || visited[id] {
			return
		}
		visited[id] = true
		if !fn(id, n, depth) {
			return
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(RootID, 0)
}

// Equal reports whether both trees hold the same nodes with the same
// children order.
func (t *Tree) Equal(o *Tree) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.nodes) != len(o.nodes) {
		return false
	}
	for id, a := range t.nodes {
		b, ok := o.nodes[id]
		if !ok || a.Kind != b.Kind || a.Parent != b.Parent {
			return false
		}
		if a.IsSplit() && (a.Orientation != b.Orientation || !slices.Equal(a.Children, b.Children)) {
			return false
		}
	}
	return true
}

// Validate checks the structural invariants and returns nil if they hold:
//
//  1. RootID holds a split without a parent, and no other node lacks one
//  2. every parent exists, is a split, and lists the child exactly once
//  3. every child listed by a split exists and points back at it
//  4. structure splits have at least two children; leaves have none
//  5. every node is reachable from the root
func (t *Tree) Validate() error {
	root, ok := t.nodes[RootID]
	if !ok || !root.IsRoot() {
		return ErrMissingRoot
	}
	for id, n := range t.nodes {
		if n.Kind != KindLeaf && n.Kind != KindSplit {
			return fmt.Errorf("%w: node %q has unknown kind", ErrInconsistentTree, id)
		}
		if id == RootID {
			continue
		}
		if n.Parent == "" {
			return fmt.Errorf("%w: node %q has no parent", ErrInconsistentTree, id)
		}
		parent, ok := t.nodes[n.Parent]
		if !ok {
			return fmt.Errorf("%w: parent %q of %q", ErrNotFound, n.Parent, id)
		}
		if !parent.IsSplit() {
			return fmt.Errorf("%w: parent %q of %q", ErrInvalidParent, n.Parent, id)
		}
		if c := countOf(parent.Children, id); c != 1 {
			return fmt.Errorf("%w: %q listed %d times by parent %q", ErrInconsistentTree, id, c, n.Parent)
		}
		if n.IsLeaf() && len(n.Children) > 0 {
			return fmt.Errorf("%w: leaf %q has children", ErrInconsistentTree, id)
		}
		if n.IsStructure() && len(n.Children) < 2 {
			return fmt.Errorf("%w: %q has %d children", ErrRedundantSplit, id, len(n.Children))
		}
	}
	for id, n := range t.nodes {
		for _, c := range n.Children {
			child, ok := t.nodes[c]
			if !ok {
				return fmt.Errorf("%w: child %q of %q", ErrNotFound, c, id)
			}
			if child.Parent != id {
				return fmt.Errorf("%w: %q lists %q whose parent is %q", ErrInconsistentTree, id, c, child.Parent)
			}
		}
	}
	reached := 0
	t.Walk(func(ID, Node, int) bool { reached++; return true })
	if reached != len(t.nodes) {
		return fmt.Errorf("%w: %d nodes unreachable from root", ErrInconsistentTree, len(t.nodes)-reached)
	}
	return nil
}

// MarshalJSON encodes the tree as its id-to-node mapping.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.nodes)
}

// UnmarshalJSON decodes an id-to-node mapping and validates it.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var nodes map[ID]Node
	if err := json.Unmarshal(data, &nodes); err != nil {
		return err
	}
	decoded, err := FromNodes(nodes)
	if err != nil {
		return err
	}
	t.nodes = decoded.nodes
	return nil
}

// String renders the tree as an indented outline, one node per line.
func (t *Tree) String() string {
	var b []byte
	t.Walk(func(id ID, n Node, depth int) bool {
		for range depth {
			b = append(b, "  "...)
		}
		if n.IsSplit() {
			b = fmt.Appendf(b, "%s (%s)\n", id, n.Orientation)
		} else {
			b = fmt.Appendf(b, "%s\n", id)
		}
		return true
	})
	return string(b)
}

func countOf(ids []ID, id ID) int {
	c := 0
	for _, x := range ids {
		if x == id {
			c++
		}
	}
	return c
}
