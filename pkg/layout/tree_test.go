package layout

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"
)

func TestNew(t *testing.T) {
	tr := New(Vertical)
	if tr.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tr.Len())
	}
	root := tr.Root()
	if !root.IsRoot() || root.Orientation != Vertical || len(root.Children) != 0 {
		t.Errorf("Root() = %+v, want empty vertical root", root)
	}
	if err := tr.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		nodes map[ID]Node
		want  error
	}{
		{
			name:  "EmptyRoot",
			nodes: map[ID]Node{RootID: Split("", Horizontal)},
		},
		{
			name: "Nested",
			nodes: map[ID]Node{
				RootID: Split("", Horizontal, "s", "c"),
				"s":    Split(RootID, Vertical, "a", "b"),
				"a":    Leaf("s"),
				"b":    Leaf("s"),
				"c":    Leaf(RootID),
			},
		},
		{
			name:  "MissingRoot",
			nodes: map[ID]Node{"a": Leaf(RootID)},
			want:  ErrMissingRoot,
		},
		{
			name:  "RootWithParent",
			nodes: map[ID]Node{RootID: Split("x", Horizontal)},
			want:  ErrMissingRoot,
		},
		{
			name: "LeafParent",
			nodes: map[ID]Node{
				RootID: Split("", Horizontal, "a"),
				"a":    Leaf(RootID),
				"b":    Leaf("a"),
			},
			want: ErrInvalidParent,
		},
		{
			name: "NotListedByParent",
			nodes: map[ID]Node{
				RootID: Split("", Horizontal),
				"a":    Leaf(RootID),
			},
			want: ErrInconsistentTree,
		},
		{
			name: "ListedTwice",
			nodes: map[ID]Node{
				RootID: Split("", Horizontal, "a", "a"),
				"a":    Leaf(RootID),
			},
			want: ErrInconsistentTree,
		},
		{
			name: "DanglingChild",
			nodes: map[ID]Node{
				RootID: Split("", Horizontal, "a", "ghost"),
				"a":    Leaf(RootID),
			},
			want: ErrNotFound,
		},
		{
			name: "SingleChildStructure",
			nodes: map[ID]Node{
				RootID: Split("", Horizontal, "s"),
				"s":    Split(RootID, Vertical, "a"),
				"a":    Leaf("s"),
			},
			want: ErrRedundantSplit,
		},
		{
			name: "WrongBackReference",
			nodes: map[ID]Node{
				RootID: Split("", Horizontal, "s", "a"),
				"s":    Split(RootID, Vertical, "b", "c"),
				"a":    Leaf("s"),
				"b":    Leaf("s"),
				"c":    Leaf("s"),
			},
			want: ErrInconsistentTree,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromNodes(tt.nodes)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("FromNodes() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("FromNodes() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFromNodesCopiesInput(t *testing.T) {
	nodes := map[ID]Node{
		RootID: Split("", Horizontal, "a"),
		"a":    Leaf(RootID),
	}
	tr := MustFromNodes(nodes)
	nodes[RootID].Children[0] = "mutated"

	if got := tr.Children(RootID); !slices.Equal(got, []ID{"a"}) {
		t.Errorf("Children(root) = %v, want [a]", got)
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	tr := MustFromNodes(map[ID]Node{
		RootID: Split("", Horizontal, "a", "b"),
		"a":    Leaf(RootID),
		"b":    Leaf(RootID),
	})

	n, _ := tr.Node(RootID)
	n.Children[0] = "x"
	tr.Children(RootID)[1] = "y"
	tr.Nodes()[RootID].Children[0] = "z"

	if got := tr.Children(RootID); !slices.Equal(got, []ID{"a", "b"}) {
		t.Errorf("Children(root) = %v, want [a b]", got)
	}
}

func TestLeavesAndDepth(t *testing.T) {
	tr := MustFromNodes(map[ID]Node{
		RootID: Split("", Horizontal, "a", "s", "d"),
		"a":    Leaf(RootID),
		"s":    Split(RootID, Vertical, "b", "t"),
		"b":    Leaf("s"),
		"t":    Split("s", Horizontal, "c", "e"),
		"c":    Leaf("t"),
		"e":    Leaf("t"),
		"d":    Leaf(RootID),
	})

	if got, want := tr.Leaves(), []ID{"a", "b", "c", "e", "d"}; !slices.Equal(got, want) {
		t.Errorf("Leaves() = %v, want %v", got, want)
	}
	if got := tr.LeafCount(); got != 5 {
		t.Errorf("LeafCount() = %d, want 5", got)
	}
	if got := tr.Depth(); got != 3 {
		t.Errorf("Depth() = %d, want 3", got)
	}
}

func TestEqual(t *testing.T) {
	a := MustFromNodes(map[ID]Node{
		RootID: Split("", Horizontal, "x", "y"),
		"x":    Leaf(RootID),
		"y":    Leaf(RootID),
	})
	b := MustFromNodes(map[ID]Node{
		RootID: Split("", Horizontal, "x", "y"),
		"x":    Leaf(RootID),
		"y":    Leaf(RootID),
	})
	c := MustFromNodes(map[ID]Node{
		RootID: Split("", Horizontal, "y", "x"),
		"x":    Leaf(RootID),
		"y":    Leaf(RootID),
	})

	if !a.Equal(b) {
		t.Error("Equal() = false for identical trees")
	}
	if a.Equal(c) {
		t.Error("Equal() = true for different sibling order")
	}
	if a.Equal(New(Vertical)) {
		t.Error("Equal() = true for different trees")
	}
}

func TestParsePosition(t *testing.T) {
	for _, name := range []string{"left", "right", "top", "bottom", "center"} {
		p, err := ParsePosition(name)
		if err != nil {
			t.Fatalf("ParsePosition(%q) error = %v", name, err)
		}
		if p.String() != name {
			t.Errorf("ParsePosition(%q).String() = %q", name, p.String())
		}
	}
	if _, err := ParsePosition("diagonal"); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("ParsePosition(diagonal) error = %v, want ErrInvalidPosition", err)
	}
}

func TestPositionAxis(t *testing.T) {
	tests := []struct {
		pos    Position
		axis   Orientation
		before bool
	}{
		{Left, Horizontal, true},
		{Right, Horizontal, false},
		{Top, Vertical, true},
		{Bottom, Vertical, false},
	}
	for _, tt := range tests {
		if got := tt.pos.Axis(); got != tt.axis {
			t.Errorf("%s.Axis() = %s, want %s", tt.pos, got, tt.axis)
		}
		if got := tt.pos.IsBefore(); got != tt.before {
			t.Errorf("%s.IsBefore() = %v, want %v", tt.pos, got, tt.before)
		}
	}
}

func TestString(t *testing.T) {
	tr := MustFromNodes(map[ID]Node{
		RootID: Split("", Horizontal, "s"),
		"s":    Split(RootID, Vertical, "a", "b"),
		"a":    Leaf("s"),
		"b":    Leaf("s"),
	})
	want := "root (horizontal)\n  s (vertical)\n    a\n    b\n"
	if got := tr.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestTreeJSON(t *testing.T) {
	tr := MustFromNodes(map[ID]Node{
		RootID: Split("", Vertical, "s", "c"),
		"s":    Split(RootID, Horizontal, "a", "b"),
		"a":    Leaf("s"),
		"b":    Leaf("s"),
		"c":    Leaf(RootID),
	})

	data, err := json.Marshal(tr)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var got Tree
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !got.Equal(tr) {
		t.Errorf("round trip = %s, want %s", &got, tr)
	}

	bad := []byte(`{"root":{"kind":"split","children":["a"]}}`)
	if err := json.Unmarshal(bad, &got); !errors.Is(err, ErrNotFound) {
		t.Errorf("Unmarshal(dangling) error = %v, want ErrNotFound", err)
	}
}
