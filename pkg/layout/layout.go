package layout

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a referenced id is absent from the tree.
	ErrNotFound = errors.New("node not found")

	// ErrNotALeaf is returned when an operation needs a pane but the id
	// refers to a split.
	ErrNotALeaf = errors.New("node is not a leaf")

	// ErrInvalidParent is returned when a node's recorded parent is a leaf.
	// This indicates tree corruption.
	ErrInvalidParent = errors.New("parent is not a split")

	// ErrInconsistentTree is returned when a node is missing from its
	// recorded parent's children, or listed there more than once.
	ErrInconsistentTree = errors.New("inconsistent tree")

	// ErrOrphanedStructure is returned when a structure split that must be
	// collapsed has no resolvable parent. Structures are always rooted.
	ErrOrphanedStructure = errors.New("orphaned structure")

	// ErrDuplicateID is returned when a caller-supplied id for a new node is
	// already in use.
	ErrDuplicateID = errors.New("duplicate node ID")

	// ErrInvalidID is returned when a new node would be created under the
	// reserved root id.
	ErrInvalidID = errors.New("invalid node ID")

	// ErrInvalidPosition is returned by InsertAt and Move for positions other
	// than left, right, top and bottom.
	ErrInvalidPosition = errors.New("invalid position")

	// ErrSelfReference is returned by Move when a pane is moved relative to
	// itself.
	ErrSelfReference = errors.New("node references itself")

	// ErrMissingRoot is returned by [Tree.Validate] when the root entry is
	// absent or is not a parentless split.
	ErrMissingRoot = errors.New("missing root")

	// ErrRedundantSplit is returned by [Tree.Validate] when a structure split
	// has fewer than two children.
	ErrRedundantSplit = errors.New("redundant split")
)

// ID identifies a node. Ids are opaque; [RootID] is reserved for the root.
type ID = string

// RootID is the id of the root split.
const RootID ID = "root"

// Orientation is the direction along which a split lays out its children.
type Orientation uint8

const (
	// Horizontal splits place children side by side, left to right.
	Horizontal Orientation = iota
	// Vertical splits stack children top to bottom.
	Vertical
)

// String returns "horizontal" or "vertical".
func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Opposite returns the other orientation.
func (o Orientation) Opposite() Orientation {
	if o == Vertical {
		return Horizontal
	}
	return Vertical
}

// ParseOrientation accepts "horizontal"/"h" and "vertical"/"v", case-insensitively.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal", "h":
		return Horizontal, nil
	case "vertical", "v":
		return Vertical, nil
	}
	return Horizontal, fmt.Errorf("unknown orientation %q", s)
}

func (o Orientation) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Orientation) UnmarshalText(b []byte) error {
	v, err := ParseOrientation(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// Position is where a pane lands relative to a target pane. Center is only
// meaningful for drops, where it selects a swap.
type Position uint8

const (
	Left Position = iota
	Right
	Top
	Bottom
	Center
)

var positionNames = [...]string{"left", "right", "top", "bottom", "center"}

func (p Position) String() string {
	if int(p) < len(positionNames) {
		return positionNames[p]
	}
	return fmt.Sprintf("Position(%d)", p)
}

// ParsePosition parses one of left, right, top, bottom or center.
func ParsePosition(s string) (Position, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range positionNames {
		if s == name {
			return Position(i), nil
		}
	}
	return Center, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
}

// IsBefore reports whether the new pane goes before the target (left or top).
func (p Position) IsBefore() bool { return p == Left || p == Top }

// Axis returns the orientation on which the position lies: left and right
// are horizontal, top and bottom vertical.
func (p Position) Axis() Orientation {
	if p == Top || p == Bottom {
		return Vertical
	}
	return Horizontal
}

// IsEdge reports whether p is one of the four insertable positions.
func (p Position) IsEdge() bool { return p <= Bottom }

func (p Position) MarshalText() ([]byte, error) {
	if int(p) >= len(positionNames) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPosition, p)
	}
	return []byte(p.String()), nil
}

func (p *Position) UnmarshalText(b []byte) error {
	v, err := ParsePosition(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Location names a target pane and a position relative to it.
type Location struct {
	Target   ID       `json:"target"`
	Position Position `json:"position"`
}

// Kind discriminates the two node variants.
type Kind uint8

const (
	KindLeaf Kind = iota + 1
	KindSplit
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindSplit:
		return "split"
	}
	return "unknown"
}

func (k Kind) MarshalText() ([]byte, error) {
	if k != KindLeaf && k != KindSplit {
		return nil, fmt.Errorf("unknown node kind %d", k)
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "leaf":
		*k = KindLeaf
	case "split":
		*k = KindSplit
	default:
		return fmt.Errorf("unknown node kind %q", b)
	}
	return nil
}

// Node is either a leaf (a pane) or a split. Orientation and Children are
// only meaningful for splits. A split with an empty Parent is the root.
type Node struct {
	Kind        Kind        `json:"kind"`
	Parent      ID          `json:"parent,omitempty"`
	Orientation Orientation `json:"orientation,omitempty"`
	Children    []ID        `json:"children,omitempty"`
}

// Leaf returns a leaf node under parent.
func Leaf(parent ID) Node { return Node{Kind: KindLeaf, Parent: parent} }

// Split returns a split node. Pass an empty parent for the root.
func Split(parent ID, o Orientation, children ...ID) Node {
	return Node{Kind: KindSplit, Parent: parent, Orientation: o, Children: children}
}

func (n Node) IsLeaf() bool  { return n.Kind == KindLeaf }
func (n Node) IsSplit() bool { return n.Kind == KindSplit }

// IsRoot reports whether n is a parentless split.
func (n Node) IsRoot() bool { return n.Kind == KindSplit && n.Parent == "" }

// IsStructure reports whether n is a split with a parent.
func (n Node) IsStructure() bool { return n.Kind == KindSplit && n.Parent != "" }

// IndexOf returns the position of id in n's children, or -1.
func (n Node) IndexOf(id ID) int {
	for i, c := range n.Children {
		if c == id {
			return i
		}
	}
	return -1
}

func (n Node) clone() Node {
	if n.Children != nil {
		n.Children = append([]ID(nil), n.Children...)
	}
	return n
}
