package workspace

import (
	"github.com/matzehuels/panetree/pkg/layout"
)

// Op is a layout operation that can be applied to a [Workspace].
//
// Op values are plain data, so they can be built by the CLI, decoded from
// an HTTP [Request], or produced by the TUI from a mouse gesture.
type Op interface {
	// Name returns the operation's wire name, e.g. "move".
	Name() string

	// apply runs the operation against t. A nil tree with a nil error means
	// the operation left the layout unchanged. created is the id of a pane
	// the operation added, if any.
	apply(e *layout.Engine, t *layout.Tree) (next *layout.Tree, created layout.ID, err error)
}

// Operation names used on the wire.
const (
	OpInsertRoot = "insert_root"
	OpInsertAt   = "insert_at"
	OpRemove     = "remove"
	OpMove       = "move"
	OpSwap       = "swap"
	OpDrop       = "drop"
)

// InsertRoot appends a pane as the last child of the root.
// An empty ID is generated.
type InsertRoot struct {
	ID layout.ID
}

func (InsertRoot) Name() string { return OpInsertRoot }

func (o InsertRoot) apply(e *layout.Engine, t *layout.Tree) (*layout.Tree, layout.ID, error) {
	return e.InsertRoot(t, o.ID)
}

// InsertAt places a new pane next to Target.
type InsertAt struct {
	Target    layout.ID
	Position  layout.Position
	ID        layout.ID
	WrapperID layout.ID
}

func (InsertAt) Name() string { return OpInsertAt }

func (o InsertAt) apply(e *layout.Engine, t *layout.Tree) (*layout.Tree, layout.ID, error) {
	return e.InsertAt(t, layout.Location{Target: o.Target, Position: o.Position}, o.ID, o.WrapperID)
}

// Remove closes a pane.
type Remove struct {
	ID layout.ID
}

func (Remove) Name() string { return OpRemove }

func (o Remove) apply(e *layout.Engine, t *layout.Tree) (*layout.Tree, layout.ID, error) {
	next, err := e.Remove(t, o.ID)
	return next, "", err
}

// Move relocates a pane next to Target.
type Move struct {
	ID        layout.ID
	Target    layout.ID
	Position  layout.Position
	WrapperID layout.ID
}

func (Move) Name() string { return OpMove }

func (o Move) apply(e *layout.Engine, t *layout.Tree) (*layout.Tree, layout.ID, error) {
	next, err := e.Move(t, o.ID, layout.Location{Target: o.Target, Position: o.Position}, o.WrapperID)
	return next, "", err
}

// Swap exchanges two panes.
type Swap struct {
	A, B layout.ID
}

func (Swap) Name() string { return OpSwap }

// A pane swapped with itself is validated by the engine like any other
// swap, then reported as unchanged.
func (o Swap) apply(e *layout.Engine, t *layout.Tree) (*layout.Tree, layout.ID, error) {
	next, err := e.Swap(t, o.A, o.B)
	if err != nil || o.A == o.B {
		return nil, "", err
	}
	return next, "", nil
}

// Drop is the result of dragging one pane onto another. Dropping on the
// center of the target swaps the two panes; dropping on an edge moves the
// dragged pane to that side of the target. Dropping a pane onto itself
// does nothing.
type Drop struct {
	Dragged  layout.ID
	Target   layout.ID
	Position layout.Position
}

func (Drop) Name() string { return OpDrop }

// Resolve returns the operation the drop stands for, or nil when the drop
// is a no-op.
func (o Drop) Resolve() Op {
	switch {
	case o.Dragged == o.Target:
		return nil
	case o.Position == layout.Center:
		return Swap{A: o.Dragged, B: o.Target}
	default:
		return Move{ID: o.Dragged, Target: o.Target, Position: o.Position}
	}
}

func (o Drop) apply(e *layout.Engine, t *layout.Tree) (*layout.Tree, layout.ID, error) {
	op := o.Resolve()
	if op == nil {
		return nil, "", nil
	}
	return op.apply(e, t)
}
