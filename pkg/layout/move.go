package layout

import "fmt"

// Move relocates the pane id next to loc.Target, keeping its id. It is
// [Engine.Remove] followed by [Engine.InsertAt] on the result, so any split
// collapsed by the removal is already gone when the pane is inserted.
// wrapperID names the split created when the position crosses planes; an
// empty wrapperID is generated.
func (e *Engine) Move(t *Tree, id ID, loc Location, wrapperID ID) (*Tree, error) {
	if id == loc.Target {
		return nil, fmt.Errorf("%w: cannot move %q relative to itself", ErrSelfReference, id)
	}
	removed, err := e.Remove(t, id)
	if err != nil {
		return nil, err
	}
	moved, _, err := e.InsertAt(removed, loc, id, wrapperID)
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// Swap exchanges the positions of panes a and b.
//
// Each pane takes the other's slot in its parent's children. When the panes
// live under different splits their parent references are exchanged as
// well, so the result stays consistent. Swapping a pane with itself returns
// an equal tree.
func (e *Engine) Swap(t *Tree, a, b ID) (*Tree, error) {
	d := edit(t)
	na, err := d.findLeaf(a)
	if err != nil {
		return nil, err
	}
	nb, err := d.findLeaf(b)
	if err != nil {
		return nil, err
	}
	pa, err := d.parentOf(a, na)
	if err != nil {
		return nil, err
	}
	pb, err := d.parentOf(b, nb)
	if err != nil {
		return nil, err
	}
	if pa.IndexOf(a) == -1 {
		return nil, fmt.Errorf("%w: %q is not a child of its parent %q", ErrInconsistentTree, a, na.Parent)
	}
	if pb.IndexOf(b) == -1 {
		return nil, fmt.Errorf("%w: %q is not a child of its parent %q", ErrInconsistentTree, b, nb.Parent)
	}
	if a == b {
		return d.tree(), nil
	}

	if na.Parent == nb.Parent {
		d.setChildren(na.Parent, pa, exchanged(pa.Children, a, b))
		return d.tree(), nil
	}
	d.setChildren(na.Parent, pa, replaced(pa.Children, a, b))
	d.setChildren(nb.Parent, pb, replaced(pb.Children, b, a))
	d.setParent(a, nb.Parent)
	d.setParent(b, na.Parent)
	return d.tree(), nil
}

// exchanged returns a copy of ids with a and b trading places.
func exchanged(ids []ID, a, b ID) []ID {
	out := make([]ID, len(ids))
	for i, x := range ids {
		switch x {
		case a:
			x = b
		case b:
			x = a
		}
		out[i] = x
	}
	return out
}
