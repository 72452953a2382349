package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	perrors "github.com/matzehuels/panetree/pkg/errors"
	"github.com/matzehuels/panetree/pkg/layout"
	"github.com/matzehuels/panetree/pkg/store"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if c.Store.Backend != store.BackendFile {
		t.Errorf("Store.Backend = %q, want %q", c.Store.Backend, store.BackendFile)
	}
	if c.RootOrientation() != layout.Horizontal {
		t.Errorf("RootOrientation() = %s, want horizontal", c.RootOrientation())
	}
	if c.Server.ShutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("ShutdownTimeout = %v, want %v", c.Server.ShutdownTimeout, DefaultShutdownTimeout)
	}
}

func TestLoadMissingFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Workspace != DefaultWorkspace {
		t.Errorf("Workspace = %q, want %q", c.Workspace, DefaultWorkspace)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
orientation = "vertical"
ids = "sequential"
workspace = "work"

[store]
backend = "redis"
redis_addr = "cache:6379"

[server]
addr = "127.0.0.1:9000"
shutdown_timeout = "3s"

[log]
level = "debug"
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if c.RootOrientation() != layout.Vertical {
		t.Errorf("RootOrientation() = %s, want vertical", c.RootOrientation())
	}
	if c.Workspace != "work" {
		t.Errorf("Workspace = %q, want work", c.Workspace)
	}
	if id := c.IDGenerator()(); id != "p1" {
		t.Errorf("IDGenerator()() = %q, want p1", id)
	}
	if c.LogLevel() != log.DebugLevel {
		t.Errorf("LogLevel() = %v, want debug", c.LogLevel())
	}
	if c.Server.ShutdownTimeout != 3*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 3s", c.Server.ShutdownTimeout)
	}

	opts := c.StoreOptions()
	if opts.Backend != store.BackendRedis || opts.RedisAddr != "cache:6379" {
		t.Errorf("StoreOptions() = %+v", opts)
	}
	if !strings.HasSuffix(opts.Dir, filepath.Join(AppName, "workspaces")) {
		t.Errorf("Dir = %q, want default workspace dir", opts.Dir)
	}
	if opts.MongoDatabase != store.DefaultMongoDatabase {
		t.Errorf("MongoDatabase = %q, want default", opts.MongoDatabase)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"Syntax", `orientation = `},
		{"UnknownKey", `colour = "blue"`},
		{"UnknownSectionKey", "[store]\nbackend = \"file\"\npath = \"/tmp\""},
		{"BadOrientation", `orientation = "diagonal"`},
		{"BadIDs", `ids = "random"`},
		{"BadBackend", "[store]\nbackend = \"etcd\""},
		{"BadWorkspace", `workspace = "../up"`},
		{"BadLevel", "[log]\nlevel = \"loud\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !perrors.Is(err, perrors.ErrCodeInvalidConfig) {
				t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	want := Default()
	want.Orientation = "vertical"
	want.Store.Dir = "/var/lib/panetree"

	if err := want.Write(path); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *got != *want {
		t.Errorf("Load(Write(c)) = %+v, want %+v", got, want)
	}
}

func TestPathEnvOverride(t *testing.T) {
	t.Setenv(EnvPath, "/etc/panetree.toml")
	if got := Path(); got != "/etc/panetree.toml" {
		t.Errorf("Path() = %q, want env override", got)
	}
}
