package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/panetree/pkg/cache"
	"github.com/matzehuels/panetree/pkg/config"
	"github.com/matzehuels/panetree/pkg/layout"
	"github.com/matzehuels/panetree/pkg/store"
	"github.com/matzehuels/panetree/pkg/workspace"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	stderr io.Writer

	// Set by persistent flags.
	configPath string
	workspace  string
	backend    string
	ids        string
	verbose    bool

	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), stderr: w}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig reads the config file and applies flag overrides. It runs
// before every command.
func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if c.workspace != "" {
		cfg.Workspace = c.workspace
	}
	if c.backend != "" {
		cfg.Store.Backend = c.backend
	}
	if c.ids != "" {
		cfg.IDs = c.ids
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if c.verbose {
		c.SetLogLevel(LogDebug)
	} else {
		c.SetLogLevel(cfg.LogLevel())
	}
	c.cfg = cfg
	c.Logger.Debug("loaded config", "path", path, "backend", cfg.Store.Backend, "workspace", cfg.Workspace)
	return nil
}

// settings returns the loaded configuration, or the defaults when no command
// has loaded one yet.
func (c *CLI) settings() *config.Config {
	if c.cfg == nil {
		return config.Default()
	}
	return c.cfg
}

// =============================================================================
// Store and Workspace Factories
// =============================================================================

// openStore opens the configured backend. Network backends show a spinner
// while connecting.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	opts := c.settings().StoreOptions()
	if opts.Backend == store.BackendMemory || opts.Backend == store.BackendFile {
		return store.Open(ctx, opts)
	}

	return spin(ctx, c.stderr, connectMessage(opts), func() (store.Store, error) {
		return store.Open(ctx, opts)
	})
}

func (c *CLI) engine() *layout.Engine {
	return layout.NewEngine(c.settings().IDGenerator())
}

func (c *CLI) workspaceOptions(s store.Store) workspace.Options {
	cfg := c.settings()
	return workspace.Options{
		Engine:      c.engine(),
		Store:       s,
		Logger:      c.Logger,
		Orientation: cfg.RootOrientation(),
	}
}

// openWorkspace opens the selected workspace. The returned function closes
// the underlying store.
func (c *CLI) openWorkspace(ctx context.Context) (*workspace.Workspace, func(), error) {
	s, err := c.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	ws, err := workspace.Open(ctx, c.settings().Workspace, c.workspaceOptions(s))
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	return ws, func() { s.Close() }, nil
}

// =============================================================================
// Cache
// =============================================================================

// newCache returns the on-disk render cache, or a disabled one for
// --no-cache or when the cache directory cannot be created.
func (c *CLI) newCache(noCache bool) cache.Cache {
	if noCache {
		return c.disabledCache("--no-cache")
	}
	fc, err := cache.NewFileCache(config.CacheDir())
	if err != nil {
		c.Logger.Warn("cache unavailable", "err", err)
		return c.disabledCache(err.Error())
	}
	return fc
}

func (c *CLI) disabledCache(reason string) *cache.NullCache {
	nc := cache.NewNullCache(reason)
	c.Logger.Debug("render cache disabled", "reason", nc.Reason)
	return nc
}
