package cache

import (
	"context"
	"time"
)

// NullCache turns caching off, so every render runs graphviz again. The CLI
// falls back to it for --no-cache and when the cache directory is unusable.
type NullCache struct {
	// Reason says why caching is off. It is only used in logs.
	Reason string
}

// NewNullCache returns a disabled cache carrying reason.
func NewNullCache(reason string) *NullCache {
	return &NullCache{Reason: reason}
}

func (*NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (*NullCache) Delete(context.Context, string) error { return nil }

func (*NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
