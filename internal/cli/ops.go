package cli

import (
	"context"

	"github.com/spf13/cobra"

	perrors "github.com/matzehuels/panetree/pkg/errors"
	"github.com/matzehuels/panetree/pkg/workspace"
)

// applyRequest decodes req and applies it to the selected workspace.
func (c *CLI) applyRequest(ctx context.Context, req workspace.Request) error {
	op, err := req.Decode()
	if err != nil {
		return err
	}
	ws, closeStore, err := c.openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	res, err := ws.Apply(ctx, op)
	if err != nil {
		return err
	}

	switch {
	case res.Ignored:
		printWarning("Ignored %s: %v", op.Name(), res.Reason)
	case !res.Changed:
		printInfo("Nothing to do")
	case res.Created != "":
		printSuccess("Created pane %s", StyleHighlight.Render(res.Created))
	default:
		printSuccess("Applied %s", op.Name())
	}
	printTreeStats(res.Snapshot.Tree, res.Snapshot.Version)
	return nil
}

// addCommand creates the add command for appending a pane to the root.
func (c *CLI) addCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add [id]",
		Short: "Add a pane at the end of the root split",
		Long: `Add a pane at the end of the root split.

Without an id a fresh one is generated (see --ids).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := workspace.Request{Op: workspace.OpInsertRoot}
			if len(args) == 1 {
				req.ID = args[0]
			}
			return c.applyRequest(cmd.Context(), req)
		},
	}
}

// splitCommand creates the split command for inserting a pane beside another.
func (c *CLI) splitCommand() *cobra.Command {
	var wrapper string

	cmd := &cobra.Command{
		Use:   "split <target> <left|right|top|bottom> [id]",
		Short: "Insert a pane beside an existing one",
		Long: `Insert a pane beside an existing one.

When the side runs along the target's split, the new pane becomes its
sibling. Otherwise the target is wrapped in a new split of the crossing
orientation, named by --wrapper or generated.`,
		Args: cobra.RangeArgs(2, 3),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 1 {
				return edgeNames, cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			req := workspace.Request{
				Op:       workspace.OpInsertAt,
				Target:   args[0],
				Position: args[1],
				Wrapper:  wrapper,
			}
			if len(args) == 3 {
				req.ID = args[2]
			}
			return c.applyRequest(cmd.Context(), req)
		},
	}

	cmd.Flags().StringVar(&wrapper, "wrapper", "", "id for a wrapping split (default: generated)")

	return cmd
}

// removeCommand creates the remove command for closing a pane.
func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm", "close"},
		Short:   "Close a pane",
		Long: `Close a pane.

Splits left with a single child are collapsed so the layout stays minimal.
Removing a pane that no longer exists is ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.applyRequest(cmd.Context(), workspace.Request{Op: workspace.OpRemove, ID: args[0]})
		},
	}
}

// moveCommand creates the move command for relocating a pane.
func (c *CLI) moveCommand() *cobra.Command {
	var wrapper string

	cmd := &cobra.Command{
		Use:   "move <id> <target> <left|right|top|bottom>",
		Short: "Move a pane beside another",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.applyRequest(cmd.Context(), workspace.Request{
				Op:       workspace.OpMove,
				ID:       args[0],
				Target:   args[1],
				Position: args[2],
				Wrapper:  wrapper,
			})
		},
	}

	cmd.Flags().StringVar(&wrapper, "wrapper", "", "id for a wrapping split (default: generated)")

	return cmd
}

// swapCommand creates the swap command for exchanging two panes.
func (c *CLI) swapCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "swap <a> <b>",
		Short: "Exchange the positions of two panes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.applyRequest(cmd.Context(), workspace.Request{Op: workspace.OpSwap, ID: args[0], With: args[1]})
		},
	}
}

// dropCommand creates the drop command, the scripted form of a mouse drop.
func (c *CLI) dropCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "drop <dragged> <target> <left|right|top|bottom|center>",
		Short: "Drop one pane onto another",
		Long: `Drop one pane onto another, as a drag and drop would.

Dropping on an edge moves the dragged pane beside the target; dropping on
the center swaps the two. Dropping a pane onto itself does nothing.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.applyRequest(cmd.Context(), workspace.Request{
				Op:       workspace.OpDrop,
				ID:       args[0],
				Target:   args[1],
				Position: args[2],
			})
		},
	}
}

var edgeNames = []string{"left", "right", "top", "bottom"}

// ExitCode maps an error to a process exit status: 2 for bad input, 1 for
// everything else.
func ExitCode(err error) int {
	switch perrors.GetCode(err) {
	case perrors.ErrCodeInvalidInput, perrors.ErrCodeInvalidID, perrors.ErrCodeInvalidName,
		perrors.ErrCodeInvalidPosition, perrors.ErrCodeInvalidConfig:
		return 2
	default:
		return 1
	}
}
