package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	perrors "github.com/matzehuels/panetree/pkg/errors"
	"github.com/matzehuels/panetree/pkg/layout"
	"github.com/matzehuels/panetree/pkg/render"
	"github.com/matzehuels/panetree/pkg/workspace"
)

const (
	defaultTextWidth  = 80 // default width of the box view
	defaultTextHeight = 20 // default height of the box view
)

// newCommand creates the new command for creating an empty workspace.
func (c *CLI) newCommand() *cobra.Command {
	var orientation string

	cmd := &cobra.Command{
		Use:   "new [name]",
		Short: "Create an empty workspace",
		Long: `Create an empty workspace.

The workspace starts with an empty root split. Its orientation decides how
panes added at the top level are laid out: horizontal places them side by
side, vertical stacks them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				c.cfg.Workspace = args[0]
			}
			if orientation != "" {
				c.cfg.Orientation = orientation
			}
			return c.runNew(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&orientation, "orientation", "o", "", "root orientation: horizontal, vertical (default from config)")

	return cmd
}

func (c *CLI) runNew(ctx context.Context) error {
	if _, err := layout.ParseOrientation(c.cfg.Orientation); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidInput, err, "orientation")
	}
	s, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	ws, err := workspace.Create(ctx, c.cfg.Workspace, c.workspaceOptions(s))
	if err != nil {
		return err
	}
	snap := ws.Snapshot()
	printSuccess("Created workspace %s", StyleHighlight.Render(snap.Name))
	printDetail("Root: %s", snap.Tree.Orientation())
	printNewline()
	printNextStep("Add a pane", appName+" add -w "+snap.Name)
	return nil
}

// showCommand creates the show command for printing a workspace.
func (c *CLI) showCommand() *cobra.Command {
	var (
		boxes         bool
		asJSON        bool
		width, height int
		focus         string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the layout of a workspace",
		Long: `Print the layout of a workspace.

By default the tree is printed as an indented outline. --boxes draws the
panes as they would appear on a screen of the given size, and --json prints
the stored snapshot.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, closeStore, err := c.openWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()
			snap := ws.Snapshot()

			switch {
			case asJSON:
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			case boxes:
				fmt.Println(render.Text(snap.Tree, width, height, render.TextOptions{Focused: focus}))
			default:
				fmt.Println(StyleTitle.Render(snap.Name))
				fmt.Print(snap.Tree)
			}
			printTreeStats(snap.Tree, snap.Version)
			return nil
		},
	}

	cmd.Flags().BoolVar(&boxes, "boxes", false, "draw panes as boxes")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the snapshot as JSON")
	cmd.Flags().IntVar(&width, "width", defaultTextWidth, "box view width in cells")
	cmd.Flags().IntVar(&height, "height", defaultTextHeight, "box view height in cells")
	cmd.Flags().StringVar(&focus, "focus", "", "pane to highlight in the box view")

	return cmd
}

// listCommand creates the list command for printing stored workspaces.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			names, err := s.List(cmd.Context())
			if err != nil {
				return perrors.Wrap(perrors.ErrCodeStorage, err, "list workspaces")
			}
			if len(names) == 0 {
				printInfo("No workspaces in the %s store", c.cfg.Store.Backend)
				return nil
			}
			printInfo("%s workspaces in the %s store", StyleNumber.Render(fmt.Sprint(len(names))), c.cfg.Store.Backend)
			for _, name := range names {
				marker := "  "
				if name == c.cfg.Workspace {
					marker = StyleHighlight.Render("* ")
				}
				fmt.Println("  " + marker + StyleValue.Render(name))
			}
			return nil
		},
	}
}

// deleteCommand creates the delete command for removing a workspace.
func (c *CLI) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "delete [name]",
		Short:             "Delete a stored workspace",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.completeWorkspaces,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := c.cfg.Workspace
			if len(args) == 1 {
				name = args[0]
			}
			if err := perrors.ValidateName(name); err != nil {
				return err
			}
			s, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Delete(cmd.Context(), name); err != nil {
				return perrors.Wrap(perrors.ErrCodeStorage, err, "delete workspace %s", name)
			}
			printSuccess("Deleted workspace %s", StyleHighlight.Render(name))
			return nil
		},
	}
}

// validateCommand creates the validate command for checking a stored layout.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that a stored workspace is a valid layout",
		Long: `Check that a stored workspace is a valid layout.

Loading a workspace already rejects broken trees; validate reports the
result and the shape of the layout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, closeStore, err := c.openWorkspace(cmd.Context())
			if err != nil {
				printError("Workspace %s is invalid", c.cfg.Workspace)
				return err
			}
			defer closeStore()

			snap := ws.Snapshot()
			if err := snap.Tree.Validate(); err != nil {
				printError("Workspace %s is invalid", snap.Name)
				return perrors.Wrap(perrors.ErrCodeCorruptTree, err, "validate %s", snap.Name)
			}
			if snap.Version == 0 {
				printWarning("Workspace %s has not been saved yet", snap.Name)
				return nil
			}
			printSuccess("Workspace %s is valid", StyleHighlight.Render(snap.Name))
			printTreeStats(snap.Tree, snap.Version)
			return nil
		},
	}
}
