package layout

import "fmt"

// Remove deletes the pane id.
//
// The root keeps whatever children remain, possibly none. A structure split
// left with more than one child keeps them. A structure split left with one
// child is collapsed: it is deleted and the survivor takes its place, at the
// same index, in the grandparent. A structure left with no children is
// deleted and dropped from the grandparent.
func (e *Engine) Remove(t *Tree, id ID) (*Tree, error) {
	d := edit(t)
	if err := d.remove(id); err != nil {
		return nil, err
	}
	return d.tree(), nil
}

func (d *draft) remove(id ID) error {
	target, err := d.findLeaf(id)
	if err != nil {
		return err
	}
	parent, err := d.parentOf(id, target)
	if err != nil {
		return err
	}
	remaining := without(parent.Children, id)
	delete(d.nodes, id)

	if parent.IsRoot() || len(remaining) > 1 {
		d.setChildren(target.Parent, parent, remaining)
		return nil
	}

	grand, err := d.parentOf(target.Parent, parent)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrOrphanedStructure, target.Parent, err)
	}
	delete(d.nodes, target.Parent)

	if len(remaining) == 1 {
		survivor := remaining[0]
		if _, ok := d.nodes[survivor]; !ok {
			return fmt.Errorf("%w: child %q of %q", ErrNotFound, survivor, target.Parent)
		}
		d.setChildren(parent.Parent, grand, replaced(grand.Children, target.Parent, survivor))
		d.setParent(survivor, parent.Parent)
		return nil
	}
	d.setChildren(parent.Parent, grand, without(grand.Children, target.Parent))
	return nil
}
