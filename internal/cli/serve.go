package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/panetree/pkg/server"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve workspaces over HTTP",
		Long: `Serve workspaces over HTTP.

Every workspace in the configured store is reachable under
/workspaces/{name}. Operations are posted as JSON to
/workspaces/{name}/ops, for example:

  {"op": "insert_at", "target": "editor", "position": "bottom"}

The server shuts down gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the SVG render cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, noCache bool) error {
	s, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	rc := c.newCache(noCache)
	defer rc.Close()

	logger := loggerFromContext(ctx)
	srv := server.New(server.Options{
		Store:       s,
		Engine:      c.engine(),
		Cache:       rc,
		Logger:      logger,
		Orientation: c.cfg.RootOrientation(),
	})

	printInfo("Serving %s workspaces on %s", c.cfg.Store.Backend, StyleLink.Render(c.cfg.Server.Addr))
	return server.Run(ctx, c.cfg.Server.Addr, srv.Handler(), c.cfg.Server.ShutdownTimeout, logger)
}
