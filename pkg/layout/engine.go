package layout

import (
	"fmt"
	"maps"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator returns a fresh, unique id on each call.
type IDGenerator func() ID

// UUIDs generates random UUIDv4 strings.
func UUIDs() ID { return uuid.New().String() }

// SequentialIDs returns a generator producing prefix1, prefix2, ... It is
// safe for concurrent use and is mostly useful for tests and readable ids.
func SequentialIDs(prefix string) IDGenerator {
	var n atomic.Uint64
	return func() ID {
		return prefix + strconv.FormatUint(n.Add(1), 10)
	}
}

// Engine applies layout operations. It holds no tree state; the only thing
// it keeps is the id generator used when callers omit an id.
//
// An Engine is safe for concurrent use if its generator is.
type Engine struct {
	newID IDGenerator
}

// NewEngine returns an engine that draws ids from gen, or from [UUIDs] when
// gen is nil.
func NewEngine(gen IDGenerator) *Engine {
	if gen == nil {
		gen = UUIDs
	}
	return &Engine{newID: gen}
}

// pick returns id, or a generated id when it is empty, and rejects ids that
// would clash with nodes already in the draft.
//
// Draws are bounded by the draft size plus slack, so a counter restarted
// against a saved tree always walks past the ids it already handed out.
func (e *Engine) pick(d *draft, id ID) (ID, error) {
	if id == "" {
		attempts := len(d.nodes) + 16
		for range attempts {
			id = e.newID()
			if _, used := d.nodes[id]; !used && id != RootID && id != "" {
				return id, nil
			}
		}
		return "", fmt.Errorf("%w: generator kept returning used ids (last %q)", ErrDuplicateID, id)
	}
	if id == RootID {
		return "", fmt.Errorf("%w: %q is reserved", ErrInvalidID, id)
	}
	if _, used := d.nodes[id]; used {
		return "", fmt.Errorf("%w: %q", ErrDuplicateID, id)
	}
	return id, nil
}

// draft is a copy-on-write working set over a snapshot. The map is cloned
// up front; node values are copied on read and children slices are always
// rebuilt before being stored, so nothing reachable from the base tree is
// ever written.
type draft struct {
	nodes map[ID]Node
}

func edit(t *Tree) *draft {
	return &draft{nodes: maps.Clone(t.nodes)}
}

func (d *draft) tree() *Tree { return &Tree{nodes: d.nodes} }

func (d *draft) find(id ID) (Node, error) {
	n, ok := d.nodes[id]
	if !ok {
		return Node{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return n, nil
}

func (d *draft) findLeaf(id ID) (Node, error) {
	n, err := d.find(id)
	if err != nil {
		return Node{}, err
	}
	if !n.IsLeaf() {
		return Node{}, fmt.Errorf("%w: %q", ErrNotALeaf, id)
	}
	return n, nil
}

// parentOf resolves the split that n hangs from.
func (d *draft) parentOf(id ID, n Node) (Node, error) {
	p, err := d.find(n.Parent)
	if err != nil {
		return Node{}, fmt.Errorf("parent of %q: %w", id, err)
	}
	if !p.IsSplit() {
		return Node{}, fmt.Errorf("%w: parent %q of %q", ErrInvalidParent, n.Parent, id)
	}
	return p, nil
}

func (d *draft) setChildren(id ID, n Node, children []ID) {
	n.Children = children
	d.nodes[id] = n
}

func (d *draft) setParent(id ID, parent ID) {
	n := d.nodes[id]
	n.Parent = parent
	d.nodes[id] = n
}

// replaced returns a copy of ids with every occurrence of old set to repl.
func replaced(ids []ID, old, repl ID) []ID {
	out := make([]ID, len(ids))
	for i, x := range ids {
		if x == old {
			x = repl
		}
		out[i] = x
	}
	return out
}

// without returns a copy of ids with every occurrence of id dropped.
func without(ids []ID, id ID) []ID {
	out := make([]ID, 0, len(ids))
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
