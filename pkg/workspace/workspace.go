// Package workspace holds the current layout snapshot of a named workspace
// and applies operations to it one at a time.
//
// A [Workspace] is the single owner of its tree: every change goes through
// [Workspace.Apply], which runs the operation on the layout engine, persists
// the new snapshot to an optional [store.Store], and notifies subscribers.
// Readers call [Workspace.Snapshot] and may keep the returned tree as long
// as they like, since trees are immutable.
//
// # Stale references
//
// The presentation layer often sends operations that refer to panes the
// user has just closed. When the engine reports [layout.ErrNotFound] or
// [layout.ErrNotALeaf], Apply logs the event, reports it to the
// observability hooks, and returns a [Result] with Ignored set instead of an
// error. Errors that indicate a corrupt tree are returned with the
// CORRUPT_TREE code.
//
// # Usage
//
//	ws, err := workspace.Open(ctx, "default", workspace.Options{Store: s, Logger: logger})
//	if err != nil {
//	    return err
//	}
//	res, err := ws.Apply(ctx, workspace.InsertRoot{})
//	fmt.Println(res.Created, res.Snapshot.Tree)
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	perrors "github.com/matzehuels/panetree/pkg/errors"
	"github.com/matzehuels/panetree/pkg/layout"
	"github.com/matzehuels/panetree/pkg/observability"
	"github.com/matzehuels/panetree/pkg/store"
)

// Snapshot is a point-in-time view of a workspace.
type Snapshot struct {
	Name      string       `json:"name"`
	Version   int64        `json:"version"`
	UpdatedAt time.Time    `json:"updated_at"`
	Tree      *layout.Tree `json:"tree"`
}

// Result describes the outcome of [Workspace.Apply].
type Result struct {
	// Snapshot is the workspace state after the operation.
	Snapshot Snapshot `json:"snapshot"`

	// Created is the id of the pane added by the operation, if any.
	Created layout.ID `json:"created,omitempty"`

	// Changed is false when the operation left the layout as it was.
	Changed bool `json:"changed"`

	// Ignored is true when the operation referred to a pane that is gone
	// or is not a pane. Reason holds the engine error.
	Ignored bool  `json:"ignored,omitempty"`
	Reason  error `json:"-"`
}

// Options configures a Workspace. All fields are optional.
type Options struct {
	// Engine applies operations. Defaults to an engine generating UUIDs.
	Engine *layout.Engine

	// Store persists snapshots. Nil keeps the workspace in memory only.
	Store store.Store

	// Logger receives debug and warning events. Defaults to a discarding logger.
	Logger *log.Logger

	// Orientation of the root split when the workspace does not exist yet.
	Orientation layout.Orientation
}

// Workspace serializes operations on one layout tree.
type Workspace struct {
	name   string
	engine *layout.Engine
	store  store.Store
	logger *log.Logger

	mu      sync.Mutex
	tree    *layout.Tree
	version int64
	updated time.Time

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// New returns an in-memory workspace with an empty root of orientation o
// and no store.
func New(name string, o layout.Orientation, opts Options) *Workspace {
	opts.Orientation = o
	opts.Store = nil
	w := newWorkspace(name, opts)
	w.tree = layout.New(o)
	return w
}

func newWorkspace(name string, opts Options) *Workspace {
	if opts.Engine == nil {
		opts.Engine = layout.NewEngine(nil)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Workspace{
		name:   name,
		engine: opts.Engine,
		store:  opts.Store,
		logger: opts.Logger.With("workspace", name),
		subs:   make(map[int]func(Snapshot)),
	}
}

// Open loads the named workspace from opts.Store. When the store has no
// record, or there is no store, the workspace starts with an empty root of
// opts.Orientation; it is persisted on the first change.
func Open(ctx context.Context, name string, opts Options) (*Workspace, error) {
	if err := perrors.ValidateName(name); err != nil {
		return nil, err
	}
	w := newWorkspace(name, opts)
	if err := w.load(ctx); err != nil {
		return nil, err
	}
	if w.tree == nil {
		w.tree = layout.New(opts.Orientation)
	}
	return w, nil
}

// Create is like Open but fails with CONFLICT when the workspace already
// exists. The new empty workspace is persisted immediately.
func Create(ctx context.Context, name string, opts Options) (*Workspace, error) {
	if err := perrors.ValidateName(name); err != nil {
		return nil, err
	}
	w := newWorkspace(name, opts)
	if err := w.load(ctx); err != nil {
		return nil, err
	}
	if w.tree != nil {
		return nil, perrors.New(perrors.ErrCodeConflict, "workspace %s already exists", name)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.commit(ctx, layout.New(opts.Orientation)); err != nil {
		return nil, err
	}
	return w, nil
}

// load replaces the in-memory state with the stored record, if any.
// It leaves w.tree nil when nothing is stored.
func (w *Workspace) load(ctx context.Context) error {
	if w.store == nil {
		return nil
	}
	rec, err := w.store.Get(ctx, w.name)
	if err != nil {
		if errors.Is(err, layout.ErrInconsistentTree) || errors.Is(err, layout.ErrNotFound) ||
			errors.Is(err, layout.ErrInvalidParent) || errors.Is(err, layout.ErrMissingRoot) ||
			errors.Is(err, layout.ErrRedundantSplit) {
			return perrors.Wrap(perrors.ErrCodeCorruptTree, err, "load workspace %s", w.name)
		}
		return perrors.Wrap(perrors.ErrCodeStorage, err, "load workspace %s", w.name)
	}
	if rec == nil {
		return nil
	}
	w.tree, w.version, w.updated = rec.Tree, rec.Version, rec.UpdatedAt
	w.logger.Debug("loaded workspace", "version", rec.Version, "panes", rec.Tree.LeafCount())
	return nil
}

// Reload discards the in-memory state and reads the workspace from the
// store again. It is the recovery path after a CONFLICT error.
func (w *Workspace) Reload(ctx context.Context) (Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.load(ctx); err != nil {
		return Snapshot{}, err
	}
	snap := w.snapshot()
	w.notify(snap)
	return snap, nil
}

// Name returns the workspace name.
func (w *Workspace) Name() string { return w.name }

// Snapshot returns the current state.
func (w *Workspace) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot()
}

func (w *Workspace) snapshot() Snapshot {
	return Snapshot{Name: w.name, Version: w.version, UpdatedAt: w.updated, Tree: w.tree}
}

// Apply runs op against the current tree. Operations are applied one at a
// time in call order.
//
// On success the new snapshot is persisted and subscribers are notified
// before Apply returns. If the store rejects the write, the in-memory state
// is left unchanged.
func (w *Workspace) Apply(ctx context.Context, op Op) (Result, error) {
	if op == nil {
		return Result{}, perrors.New(perrors.ErrCodeInvalidInput, "operation is nil")
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	start := time.Now()
	next, created, err := op.apply(w.engine, w.tree)
	if err != nil {
		if isStale(err) {
			w.logger.Debug("ignoring stale operation", "op", op.Name(), "err", err)
			observability.Operation().OnStale(ctx, w.name, op.Name(), err)
			observability.Operation().OnApply(ctx, w.name, op.Name(), time.Since(start), nil)
			return Result{Snapshot: w.snapshot(), Ignored: true, Reason: err}, nil
		}
		err = classify(op, err)
		if perrors.Is(err, perrors.ErrCodeCorruptTree) {
			w.logger.Error("layout corrupted", "op", op.Name(), "err", err)
		}
		observability.Operation().OnApply(ctx, w.name, op.Name(), time.Since(start), err)
		return Result{}, err
	}
	if next == nil {
		observability.Operation().OnApply(ctx, w.name, op.Name(), time.Since(start), nil)
		return Result{Snapshot: w.snapshot()}, nil
	}

	if err := w.commit(ctx, next); err != nil {
		observability.Operation().OnApply(ctx, w.name, op.Name(), time.Since(start), err)
		return Result{}, err
	}
	w.logger.Debug("applied operation", "op", op.Name(), "version", w.version, "duration", time.Since(start))
	observability.Operation().OnApply(ctx, w.name, op.Name(), time.Since(start), nil)
	return Result{Snapshot: w.snapshot(), Created: created, Changed: true}, nil
}

// commit persists next as the following version and makes it current.
// The caller holds w.mu.
func (w *Workspace) commit(ctx context.Context, next *layout.Tree) error {
	now := time.Now().UTC()
	version := w.version + 1
	if w.store != nil {
		err := w.store.Put(ctx, &store.Record{Name: w.name, Tree: next, Version: version, UpdatedAt: now})
		if errors.Is(err, store.ErrConflict) {
			return perrors.Wrap(perrors.ErrCodeConflict, err, "workspace %s was changed by another writer", w.name)
		}
		if err != nil {
			return perrors.Wrap(perrors.ErrCodeStorage, err, "save workspace %s", w.name)
		}
	}
	w.tree, w.version, w.updated = next, version, now
	w.notify(w.snapshot())
	return nil
}

// Subscribe registers fn to be called with every new snapshot. fn runs on
// the goroutine that applied the change, while the workspace is locked, so
// it must not call Apply. The returned function removes the subscription.
func (w *Workspace) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	w.subMu.Lock()
	defer w.subMu.Unlock()
	id := w.nextSub
	w.nextSub++
	w.subs[id] = fn
	return func() {
		w.subMu.Lock()
		defer w.subMu.Unlock()
		delete(w.subs, id)
	}
}

func (w *Workspace) notify(snap Snapshot) {
	w.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(w.subs))
	for _, fn := range w.subs {
		fns = append(fns, fn)
	}
	w.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

// isStale reports whether err means the operation referred to a pane that
// is no longer a valid target.
func isStale(err error) bool {
	return errors.Is(err, layout.ErrNotFound) || errors.Is(err, layout.ErrNotALeaf)
}

// classify maps engine errors onto error codes.
func classify(op Op, err error) error {
	var code perrors.Code
	switch {
	case errors.Is(err, layout.ErrInvalidParent),
		errors.Is(err, layout.ErrInconsistentTree),
		errors.Is(err, layout.ErrOrphanedStructure),
		errors.Is(err, layout.ErrMissingRoot),
		errors.Is(err, layout.ErrRedundantSplit):
		code = perrors.ErrCodeCorruptTree
	case errors.Is(err, layout.ErrDuplicateID), errors.Is(err, layout.ErrInvalidID):
		code = perrors.ErrCodeInvalidID
	case errors.Is(err, layout.ErrInvalidPosition), errors.Is(err, layout.ErrSelfReference):
		code = perrors.ErrCodeInvalidPosition
	default:
		code = perrors.ErrCodeInternal
	}
	return perrors.Wrap(code, err, "%s failed", op.Name())
}

// String implements fmt.Stringer for log output.
func (r Result) String() string {
	switch {
	case r.Ignored:
		return fmt.Sprintf("ignored (%v)", r.Reason)
	case !r.Changed:
		return "unchanged"
	case r.Created != "":
		return fmt.Sprintf("created %s (version %d)", r.Created, r.Snapshot.Version)
	default:
		return fmt.Sprintf("version %d", r.Snapshot.Version)
	}
}
