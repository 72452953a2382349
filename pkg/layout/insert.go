package layout

import (
	"fmt"
	"slices"
)

// InsertRoot appends a new pane as the last child of the root and returns
// the new tree along with the pane's id. An empty id is generated.
func (e *Engine) InsertRoot(t *Tree, id ID) (*Tree, ID, error) {
	d := edit(t)
	root, err := d.find(RootID)
	if err != nil || !root.IsRoot() {
		return nil, "", ErrMissingRoot
	}
	if id, err = e.pick(d, id); err != nil {
		return nil, "", err
	}

	d.nodes[id] = Leaf(RootID)
	d.setChildren(RootID, root, append(slices.Clone(root.Children), id))
	return d.tree(), id, nil
}

// InsertAt inserts a new pane next to loc.Target and returns the new tree
// along with the pane's id.
//
// When the position lies on the same plane as the target's parent (left or
// right in a horizontal split, top or bottom in a vertical one) the pane is
// spliced into the parent's children next to the target. Otherwise the
// target is replaced, at the same index, by a new split of the opposite
// orientation holding the target and the new pane; wrapperID names that
// split. Empty ids are generated.
func (e *Engine) InsertAt(t *Tree, loc Location, id, wrapperID ID) (*Tree, ID, error) {
	if !loc.Position.IsEdge() {
		return nil, "", fmt.Errorf("%w: %s", ErrInvalidPosition, loc.Position)
	}
	d := edit(t)
	target, err := d.findLeaf(loc.Target)
	if err != nil {
		return nil, "", err
	}
	parent, err := d.parentOf(loc.Target, target)
	if err != nil {
		return nil, "", err
	}
	index := parent.IndexOf(loc.Target)
	if index == -1 {
		return nil, "", fmt.Errorf("%w: %q is not a child of its parent %q", ErrInconsistentTree, loc.Target, target.Parent)
	}
	if id, err = e.pick(d, id); err != nil {
		return nil, "", err
	}

	if loc.Position.Axis() == parent.Orientation {
		at := index
		if !loc.Position.IsBefore() {
			at++
		}
		d.nodes[id] = Leaf(target.Parent)
		d.setChildren(target.Parent, parent, slices.Insert(slices.Clone(parent.Children), at, id))
		return d.tree(), id, nil
	}

	d.nodes[id] = Leaf("")
	if wrapperID, err = e.pick(d, wrapperID); err != nil {
		return nil, "", err
	}
	children := []ID{loc.Target, id}
	if loc.Position.IsBefore() {
		children = []ID{id, loc.Target}
	}
	d.nodes[wrapperID] = Split(target.Parent, parent.Orientation.Opposite(), children...)
	d.nodes[id] = Leaf(wrapperID)
	d.setParent(loc.Target, wrapperID)
	d.setChildren(target.Parent, parent, replaced(parent.Children, loc.Target, wrapperID))
	return d.tree(), id, nil
}
