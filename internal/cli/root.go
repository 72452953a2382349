package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/panetree/pkg/buildinfo"
	"github.com/matzehuels/panetree/pkg/config"
	"github.com/matzehuels/panetree/pkg/store"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Panetree manages tiling pane layouts",
		Long: `Panetree manages tiling pane layouts stored as named workspaces.

A workspace is a tree of splits whose leaves are panes. Commands insert,
remove, move and swap panes; the layout stays valid after every change.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&c.configPath, "config", "", "config file (default: "+config.Path()+")")
	flags.StringVarP(&c.workspace, "workspace", "w", "", "workspace name (default from config)")
	flags.StringVar(&c.backend, "store", "", "store backend: memory, file, redis, mongo")
	flags.StringVar(&c.ids, "ids", "", "generated ids: uuid, sequential")
	root.RegisterFlagCompletionFunc("workspace", c.completeWorkspaces)
	root.RegisterFlagCompletionFunc("store", cobra.FixedCompletions(store.Backends, cobra.ShellCompDirectiveNoFileComp))

	// Workspaces
	root.AddCommand(c.newCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.deleteCommand())
	root.AddCommand(c.validateCommand())

	// Operations
	root.AddCommand(c.addCommand())
	root.AddCommand(c.splitCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.swapCommand())
	root.AddCommand(c.dropCommand())

	// Output and frontends
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.svgCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.tuiCommand())

	// Housekeeping
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
