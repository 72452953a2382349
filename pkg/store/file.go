package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	perrors "github.com/matzehuels/panetree/pkg/errors"
)

// FileStore is a file-based workspace store for CLI applications.
// Each workspace is stored as a JSON file in a config directory.
//
// Writers in different processes are serialized by a <name>.lock file
// created with O_EXCL, so the version check and the rename in Put happen
// under one lock across every CLI run sharing the directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a new file-based workspace store.
// If baseDir is empty, defaults to ~/.config/panetree/workspaces/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "panetree", "workspaces")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create workspace dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) recordPath(name string) string {
	return filepath.Join(s.baseDir, name+".json")
}

const (
	lockRetry = 10 * time.Millisecond
	// A lock older than this was left by a writer that died holding it.
	lockStale = 10 * time.Second
)

// lock takes the cross-process write lock for name, retrying until ctx
// ends. The returned function releases it.
func (s *FileStore) lock(ctx context.Context, name string) (func(), error) {
	path := filepath.Join(s.baseDir, name+".lock")
	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err == nil {
			f.Close()
			return func() { os.Remove(path) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("lock workspace %s: %w", name, err)
		}
		if info, err := os.Stat(path); err == nil && time.Since(info.ModTime()) > lockStale {
			os.Remove(path)
			continue
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("lock workspace %s: %w", name, ctx.Err())
		case <-time.After(lockRetry):
		}
	}
}

func (s *FileStore) Get(ctx context.Context, name string) (*Record, error) {
	if err := perrors.ValidateName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(name)
}

func (s *FileStore) read(name string) (*Record, error) {
	data, err := os.ReadFile(s.recordPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read workspace file: %w", err)
	}

	var rec Record
	if err := rec.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("parse workspace %s: %w", name, err)
	}
	return &rec, nil
}

func (s *FileStore) Put(ctx context.Context, rec *Record) error {
	if err := rec.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	unlock, err := s.lock(ctx, rec.Name)
	if err != nil {
		return err
	}
	defer unlock()

	current, err := s.read(rec.Name)
	if err != nil {
		return err
	}
	if err := checkVersion(current, rec); err != nil {
		return err
	}

	data, err := rec.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal workspace: %w", err)
	}

	// Write to a temp file and rename so readers never see a partial file.
	tmp, err := os.CreateTemp(s.baseDir, rec.Name+".*.tmp")
	if err != nil {
		return fmt.Errorf("write workspace file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write workspace file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write workspace file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.recordPath(rec.Name)); err != nil {
		return fmt.Errorf("write workspace file: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := perrors.ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	unlock, err := s.lock(ctx, name)
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(s.recordPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove workspace file: %w", err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read workspace dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	slices.Sort(names)
	return names, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for workspace files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
