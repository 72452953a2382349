// Package store keeps the current layout snapshot of named workspaces.
//
// A workspace is persisted as a [Record]: its name, the current
// [layout.Tree], a version counter and the time of the last write. Several
// backends implement [Store]:
//   - memory: In-process map, for tests and the TUI
//   - file: One JSON file per workspace, for the CLI
//   - redis: Shared storage for multiple server instances
//   - mongo: Document storage with the tree kept as a nested document
//
// # Versioning
//
// Every backend applies the same optimistic concurrency rule: [Store.Put]
// only accepts a record whose Version is greater than the stored one, and
// returns [ErrConflict] otherwise. Callers that lose the race reload and
// retry.
//
// # Usage
//
//	s, err := store.Open(ctx, store.Options{Backend: store.BackendFile})
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	rec, err := s.Get(ctx, "default")
//	if rec == nil {
//	    // Workspace does not exist yet
//	}
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	perrors "github.com/matzehuels/panetree/pkg/errors"
	"github.com/matzehuels/panetree/pkg/layout"
	"github.com/matzehuels/panetree/pkg/observability"
)

// ErrConflict is returned by Put when the stored record is as new as, or
// newer than, the one being written.
var ErrConflict = errors.New("version conflict")

// Backend names accepted by [Open].
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Backends lists the supported backend names.
var Backends = []string{BackendMemory, BackendFile, BackendRedis, BackendMongo}

// Record is the stored state of one workspace.
type Record struct {
	Name      string       `json:"name"`
	Tree      *layout.Tree `json:"tree"`
	Version   int64        `json:"version"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// MarshalBinary encodes the record as JSON.
func (r *Record) MarshalBinary() ([]byte, error) {
	return json.Marshal(r)
}

// UnmarshalBinary decodes a JSON record. The tree is validated while
// decoding, so a corrupt snapshot is reported here rather than later.
func (r *Record) UnmarshalBinary(data []byte) error {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	if rec.Tree == nil {
		return fmt.Errorf("decode record %q: missing tree", rec.Name)
	}
	*r = rec
	return nil
}

func (r *Record) validate() error {
	if r == nil {
		return perrors.New(perrors.ErrCodeInvalidInput, "record is nil")
	}
	if err := perrors.ValidateName(r.Name); err != nil {
		return err
	}
	if r.Tree == nil {
		return perrors.New(perrors.ErrCodeInvalidInput, "record %s has no tree", r.Name)
	}
	if r.Version < 1 {
		return perrors.New(perrors.ErrCodeInvalidInput, "record %s has version %d", r.Name, r.Version)
	}
	return nil
}

// checkVersion enforces the optimistic versioning rule. current is nil when
// nothing is stored yet.
func checkVersion(current, next *Record) error {
	if current != nil && next.Version <= current.Version {
		return fmt.Errorf("%w: %s is at version %d, got %d", ErrConflict, next.Name, current.Version, next.Version)
	}
	return nil
}

// Store is the interface for workspace storage backends.
type Store interface {
	// Get retrieves a workspace record.
	// Returns nil, nil if the workspace doesn't exist.
	Get(ctx context.Context, name string) (*Record, error)

	// Put stores a record. It returns ErrConflict unless rec.Version is
	// greater than the stored version.
	Put(ctx context.Context, rec *Record) error

	// Delete removes a workspace. Deleting an absent workspace is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all stored workspaces in lexical order.
	List(ctx context.Context) ([]string, error)

	// Close releases the backend's resources.
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend       string // memory, file, redis or mongo
	Dir           string // file: directory for workspace files
	RedisAddr     string // redis: host:port
	MongoURI      string // mongo: connection string
	MongoDatabase string // mongo: database name
}

// Open creates the backend named by opts.Backend. An empty backend means
// memory. The returned store reports loads and saves to the registered
// [observability.StoreHooks].
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	switch opts.Backend {
	case "", BackendMemory:
		opts.Backend = BackendMemory
		s = NewMemoryStore()
	case BackendFile:
		s, err = NewFileStore(opts.Dir)
	case BackendRedis:
		s, err = NewRedisStore(ctx, opts.RedisAddr)
	case BackendMongo:
		s, err = NewMongoStore(ctx, opts.MongoURI, opts.MongoDatabase)
	default:
		return nil, perrors.New(perrors.ErrCodeUnsupported, "unknown store backend %q", opts.Backend)
	}
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeStorage, err, "open %s store", opts.Backend)
	}
	return Instrument(s, opts.Backend), nil
}

// Instrument wraps s so that Get and Put are reported to the store hooks
// under the given backend name.
func Instrument(s Store, backend string) Store {
	return &instrumented{Store: s, backend: backend}
}

type instrumented struct {
	Store
	backend string
}

func (s *instrumented) Get(ctx context.Context, name string) (*Record, error) {
	start := time.Now()
	rec, err := s.Store.Get(ctx, name)
	observability.Store().OnLoad(ctx, s.backend, name, rec != nil, time.Since(start), err)
	return rec, err
}

func (s *instrumented) Put(ctx context.Context, rec *Record) error {
	start := time.Now()
	err := s.Store.Put(ctx, rec)
	var version int64
	if rec != nil {
		version = rec.Version
	}
	observability.Store().OnSave(ctx, s.backend, nameOf(rec), version, time.Since(start), err)
	return err
}

func nameOf(rec *Record) string {
	if rec == nil {
		return ""
	}
	return rec.Name
}
