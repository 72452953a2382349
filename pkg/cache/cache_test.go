package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/panetree/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache("--no-cache")
	defer c.Close()

	if c.Reason != "--no-cache" {
		t.Errorf("Reason = %q, want --no-cache", c.Reason)
	}
	if err := c.Set(ctx, "svg:abc", []byte("<svg/>"), time.Hour); err != nil {
		t.Errorf("Set() error = %v", err)
	}
	if data, hit, err := c.Get(ctx, "svg:abc"); err != nil || hit || data != nil {
		t.Errorf("Get() = %q, %v, %v, want a miss", data, hit, err)
	}
	if err := c.Delete(ctx, "svg:abc"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}

func TestFetchNullCacheRendersEveryTime(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache("test")
	renders := 0
	render := func() ([]byte, error) {
		renders++
		return []byte("<svg/>"), nil
	}
	for range 3 {
		if _, err := Fetch(ctx, c, "svg", "svg:abc", time.Hour, render); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
	}
	if renders != 3 {
		t.Errorf("renders = %d, want 3", renders)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// SHA-256 produces 64 hex chars
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestKey(t *testing.T) {
	k1 := Key("svg", "abc", 800)
	k2 := Key("svg", "abc", 800)
	k3 := Key("svg", "abc", 801)
	if k1 != k2 {
		t.Error("Key should be deterministic")
	}
	if k1 == k3 {
		t.Error("Different parts should produce different keys")
	}
	if k1[:4] != "svg:" {
		t.Errorf("Key should carry its prefix: %s", k1)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if _, hit, _ := c.Get(ctx, "missing"); hit {
		t.Error("Get on empty cache should miss")
	}

	if err := c.Set(ctx, "k", []byte("svg"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "svg" {
		t.Errorf("Get = %q, %v, %v; want svg, true, nil", data, hit, err)
	}

	// Expired entries are misses
	if err := c.Set(ctx, "old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry should miss")
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("deleted entry should miss")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		c.Set(ctx, k, []byte(k), 0)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("cache dir has %d entries after Clear", len(entries))
	}
	if c.Dir() != dir {
		t.Errorf("Dir() = %s, want %s", c.Dir(), dir)
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set(ctx, "soon", []byte("1"), time.Minute)
	c.Set(ctx, "later", []byte("2"), time.Hour)
	c.Set(ctx, "never", []byte("3"), 0)

	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if _, hit, _ := c.Get(ctx, "soon"); hit {
		t.Error("entry expiring first should have been evicted")
	}
	if _, hit, _ := c.Get(ctx, "never"); !hit {
		t.Error("newest entry should be present")
	}

	now = now.Add(2 * time.Hour)
	if _, hit, _ := c.Get(ctx, "later"); hit {
		t.Error("expired entry should miss")
	}
	if _, hit, _ := c.Get(ctx, "never"); !hit {
		t.Error("entry without ttl should not expire")
	}
}

type countingCacheHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets int
}

func (h *countingCacheHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *countingCacheHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *countingCacheHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestFetch(t *testing.T) {
	hooks := &countingCacheHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	c := NewMemoryCache(0)
	calls := 0
	render := func() ([]byte, error) {
		calls++
		return []byte("<svg/>"), nil
	}

	for range 3 {
		data, err := Fetch(ctx, c, "svg", "k", 0, render)
		if err != nil || string(data) != "<svg/>" {
			t.Fatalf("Fetch = %q, %v", data, err)
		}
	}
	if calls != 1 {
		t.Errorf("render called %d times, want 1", calls)
	}
	if hooks.hits != 2 || hooks.misses != 1 || hooks.sets != 1 {
		t.Errorf("hooks = %d hits, %d misses, %d sets; want 2, 1, 1", hooks.hits, hooks.misses, hooks.sets)
	}

	boom := errors.New("boom")
	_, err := Fetch(ctx, c, "svg", "other", 0, func() ([]byte, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Errorf("Fetch error = %v, want boom", err)
	}
	if _, hit, _ := c.Get(ctx, "other"); hit {
		t.Error("failed render should not be cached")
	}
}
