// Package config loads panetree's TOML configuration.
//
// The file lives at $XDG_CONFIG_HOME/panetree/config.toml unless the
// PANETREE_CONFIG environment variable names another path. A missing file
// is not an error: every setting has a default.
//
//	orientation = "horizontal"   # root split of new workspaces
//	ids = "uuid"                 # uuid | sequential
//	workspace = "default"        # workspace used when none is given
//
//	[store]
//	backend = "file"             # memory | file | redis | mongo
//	dir = ""                     # file backend directory
//	redis_addr = "localhost:6379"
//	mongo_uri = "mongodb://localhost:27017"
//	mongo_database = "panetree"
//
//	[server]
//	addr = ":8080"
//	shutdown_timeout = "10s"
//
//	[log]
//	level = "info"
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"

	perrors "github.com/matzehuels/panetree/pkg/errors"
	"github.com/matzehuels/panetree/pkg/layout"
	"github.com/matzehuels/panetree/pkg/store"
)

const (
	// AppName names the config and cache directories.
	AppName = "panetree"

	// EnvPath overrides the config file location.
	EnvPath = "PANETREE_CONFIG"
)

// Id generator names.
const (
	IDsUUID       = "uuid"
	IDsSequential = "sequential"
)

// Defaults.
const (
	DefaultWorkspace       = "default"
	DefaultBackend         = store.BackendFile
	DefaultRedisAddr       = "localhost:6379"
	DefaultMongoURI        = "mongodb://localhost:27017"
	DefaultAddr            = ":8080"
	DefaultShutdownTimeout = 10 * time.Second
)

// Config is the decoded configuration file.
type Config struct {
	Orientation string       `toml:"orientation"`
	IDs         string       `toml:"ids"`
	Workspace   string       `toml:"workspace"`
	Store       StoreConfig  `toml:"store"`
	Server      ServerConfig `toml:"server"`
	Log         LogConfig    `toml:"log"`
}

// StoreConfig selects the workspace storage backend.
type StoreConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `toml:"addr"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

// SetDefaults fills in zero-valued fields.
func (c *Config) SetDefaults() {
	if c.Orientation == "" {
		c.Orientation = layout.Horizontal.String()
	}
	if c.IDs == "" {
		c.IDs = IDsUUID
	}
	if c.Workspace == "" {
		c.Workspace = DefaultWorkspace
	}
	if c.Store.Backend == "" {
		c.Store.Backend = DefaultBackend
	}
	if c.Store.RedisAddr == "" {
		c.Store.RedisAddr = DefaultRedisAddr
	}
	if c.Store.MongoURI == "" {
		c.Store.MongoURI = DefaultMongoURI
	}
	if c.Store.MongoDatabase == "" {
		c.Store.MongoDatabase = store.DefaultMongoDatabase
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = log.InfoLevel.String()
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := layout.ParseOrientation(c.Orientation); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "orientation")
	}
	if c.IDs != IDsUUID && c.IDs != IDsSequential {
		return perrors.New(perrors.ErrCodeInvalidConfig, "ids must be %q or %q, got %q", IDsUUID, IDsSequential, c.IDs)
	}
	if err := perrors.ValidateName(c.Workspace); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "workspace")
	}
	if !slices.Contains(store.Backends, c.Store.Backend) {
		return perrors.New(perrors.ErrCodeInvalidConfig, "store.backend must be one of %s, got %q",
			strings.Join(store.Backends, ", "), c.Store.Backend)
	}
	if c.Server.ShutdownTimeout < 0 {
		return perrors.New(perrors.ErrCodeInvalidConfig, "server.shutdown_timeout must not be negative")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "log.level")
	}
	return nil
}

// Path returns the config file location.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return filepath.Join(xdg.ConfigHome, AppName, "config.toml")
}

// WorkspaceDir returns the directory used by the file store: store.dir
// when set, else $XDG_CONFIG_HOME/panetree/workspaces.
func (c *Config) WorkspaceDir() string {
	if c.Store.Dir != "" {
		return c.Store.Dir
	}
	return filepath.Join(xdg.ConfigHome, AppName, "workspaces")
}

// CacheDir returns the directory for rendered artifacts.
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Load reads the file at path, applies defaults and validates the result.
// A missing file yields the defaults. Unknown keys are rejected so typos
// do not go unnoticed.
func Load(path string) (*Config, error) {
	c := &Config{}
	md, err := toml.DecodeFile(path, c)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if err == nil {
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, perrors.New(perrors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
		}
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Write encodes c as TOML to path, creating parent directories.
func (c *Config) Write(path string) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s configuration\n\n", AppName)
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// RootOrientation returns the parsed orientation setting.
func (c *Config) RootOrientation() layout.Orientation {
	o, _ := layout.ParseOrientation(c.Orientation)
	return o
}

// IDGenerator returns the id generator named by the ids setting.
func (c *Config) IDGenerator() layout.IDGenerator {
	if c.IDs == IDsSequential {
		return layout.SequentialIDs("p")
	}
	return layout.UUIDs
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// StoreOptions converts the [store] section for [store.Open].
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend:       c.Store.Backend,
		Dir:           c.WorkspaceDir(),
		RedisAddr:     c.Store.RedisAddr,
		MongoURI:      c.Store.MongoURI,
		MongoDatabase: c.Store.MongoDatabase,
	}
}
