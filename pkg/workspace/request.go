package workspace

import (
	perrors "github.com/matzehuels/panetree/pkg/errors"
	"github.com/matzehuels/panetree/pkg/layout"
)

// Request is the JSON form of an [Op], as accepted by the HTTP API:
//
//	{"op": "move", "id": "a", "target": "b", "position": "left"}
//	{"op": "swap", "id": "a", "with": "b"}
//	{"op": "drop", "id": "a", "target": "b", "position": "center"}
//
// Fields an operation does not use are ignored.
type Request struct {
	Op       string `json:"op"`
	ID       string `json:"id,omitempty"`
	Target   string `json:"target,omitempty"`
	Position string `json:"position,omitempty"`
	Wrapper  string `json:"wrapper,omitempty"`
	With     string `json:"with,omitempty"`
}

// Decode validates the request and returns the operation it describes.
func (r Request) Decode() (Op, error) {
	switch r.Op {
	case OpInsertRoot:
		if err := perrors.ValidateOptionalID(r.ID); err != nil {
			return nil, err
		}
		return InsertRoot{ID: r.ID}, nil

	case OpInsertAt:
		pos, err := r.edge()
		if err != nil {
			return nil, err
		}
		if err := validateIDs(r.Target); err != nil {
			return nil, err
		}
		if err := validateOptionalIDs(r.ID, r.Wrapper); err != nil {
			return nil, err
		}
		return InsertAt{Target: r.Target, Position: pos, ID: r.ID, WrapperID: r.Wrapper}, nil

	case OpRemove:
		if err := validateIDs(r.ID); err != nil {
			return nil, err
		}
		return Remove{ID: r.ID}, nil

	case OpMove:
		pos, err := r.edge()
		if err != nil {
			return nil, err
		}
		if err := validateIDs(r.ID, r.Target); err != nil {
			return nil, err
		}
		if err := validateOptionalIDs(r.Wrapper); err != nil {
			return nil, err
		}
		return Move{ID: r.ID, Target: r.Target, Position: pos, WrapperID: r.Wrapper}, nil

	case OpSwap:
		if err := validateIDs(r.ID, r.With); err != nil {
			return nil, err
		}
		return Swap{A: r.ID, B: r.With}, nil

	case OpDrop:
		pos, err := r.position()
		if err != nil {
			return nil, err
		}
		if err := validateIDs(r.ID, r.Target); err != nil {
			return nil, err
		}
		return Drop{Dragged: r.ID, Target: r.Target, Position: pos}, nil

	case "":
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "op is required")
	default:
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "unknown op %q", r.Op)
	}
}

func (r Request) position() (layout.Position, error) {
	pos, err := layout.ParsePosition(r.Position)
	if err != nil {
		return 0, perrors.Wrap(perrors.ErrCodeInvalidPosition, err, "%s: position %q", r.Op, r.Position)
	}
	return pos, nil
}

// edge is position restricted to the four sides.
func (r Request) edge() (layout.Position, error) {
	pos, err := r.position()
	if err != nil {
		return 0, err
	}
	if !pos.IsEdge() {
		return 0, perrors.New(perrors.ErrCodeInvalidPosition, "%s: position must be left, right, top or bottom, got %s", r.Op, pos)
	}
	return pos, nil
}

func validateIDs(ids ...string) error {
	for _, id := range ids {
		if err := perrors.ValidateID(id); err != nil {
			return err
		}
	}
	return nil
}

func validateOptionalIDs(ids ...string) error {
	for _, id := range ids {
		if err := perrors.ValidateOptionalID(id); err != nil {
			return err
		}
	}
	return nil
}
