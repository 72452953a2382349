package cli

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/panetree/internal/tui"
	"github.com/matzehuels/panetree/pkg/store"
)

// tuiCommand creates the tui command for the interactive pane viewer.
func (c *CLI) tuiCommand() *cobra.Command {
	var noWatch bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open an interactive view of a workspace",
		Long: `Open an interactive view of a workspace.

Keys: tab cycles focus, h/j/k/l split the focused pane, n adds a pane,
x closes, s swaps with the next pane, q quits. Drag a pane with the mouse
and drop it on an edge of another pane to move it there, or on its center
to swap.

With the file store, changes made by other panetree commands are picked up
while the view is open.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd.Context(), !noWatch)
		},
	}

	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload when the workspace file changes")

	return cmd
}

func (c *CLI) runTUI(ctx context.Context, watch bool) error {
	ws, closeStore, err := c.openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := loggerFromContext(ctx)
	opts := tui.Options{Logger: logger}
	if watch && c.cfg.Store.Backend == store.BackendFile {
		path := filepath.Join(c.cfg.WorkspaceDir(), c.cfg.Workspace+".json")
		changes, err := tui.Watch(ctx, path, logger)
		if err != nil {
			logger.Warn("not watching workspace file", "err", err)
		} else {
			opts.Changes = changes
		}
	}
	return tui.Run(ctx, ws, opts)
}
