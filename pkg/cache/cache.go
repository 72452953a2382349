// Package cache provides content-addressed caching for rendered artifacts.
//
// Rendering a layout to SVG runs Graphviz, which is slow compared with the
// layout operations themselves. Renders are keyed by a hash of the DOT
// source, so identical layouts share one entry regardless of which
// workspace produced them.
//
// Implementations:
//   - [FileCache]: Entries on disk, shared between CLI invocations
//   - [MemoryCache]: Entries in process memory, for the HTTP server
//   - [NullCache]: Caching disabled
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/panetree/pkg/observability"
)

// Cache stores opaque byte values by key.
type Cache interface {
	// Get returns the value for key. The bool is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Fetch returns the cached value for key, or computes it with fn and stores
// it. keyType labels the entry in the cache hooks. Cache read and write
// failures are not fatal: fn's result is returned regardless.
func Fetch(ctx context.Context, c Cache, keyType, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error) {
	hooks := observability.Cache()
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		hooks.OnCacheHit(ctx, keyType)
		return data, nil
	}
	hooks.OnCacheMiss(ctx, keyType)

	data, err := fn()
	if err != nil {
		return nil, err
	}
	if err := c.Set(ctx, key, data, ttl); err == nil {
		hooks.OnCacheSet(ctx, keyType, len(data))
	}
	return data, nil
}
