package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	perrors "github.com/matzehuels/panetree/pkg/errors"
	"github.com/matzehuels/panetree/pkg/render"
)

// exportOpts holds the flags shared by dot and svg.
type exportOpts struct {
	output    string // output file; stdout when empty
	detailed  bool   // label nodes with kind and orientation
	highlight string // pane to highlight
	noCache   bool   // bypass the render cache (svg)
}

func (o *exportOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&o.detailed, "detailed", false, "label nodes with their kind and orientation")
	cmd.Flags().StringVar(&o.highlight, "highlight", "", "pane to highlight")
}

// dotCommand creates the dot command for exporting Graphviz source.
func (c *CLI) dotCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "dot",
		Short: "Export the layout tree as Graphviz DOT",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dot, err := c.workspaceDOT(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return writeOutput(opts.output, []byte(dot))
		},
	}

	opts.register(cmd)

	return cmd
}

// svgCommand creates the svg command for rendering the layout tree.
func (c *CLI) svgCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "svg",
		Short: "Render the layout tree as SVG",
		Long: `Render the layout tree as SVG using Graphviz.

Renders are cached by content in the cache directory (see 'cache path'), so
an unchanged layout is not rendered twice.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSVG(cmd.Context(), opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runSVG(ctx context.Context, opts exportOpts) error {
	dot, err := c.workspaceDOT(ctx, opts)
	if err != nil {
		return err
	}

	rc := c.newCache(opts.noCache)
	defer rc.Close()

	prog := newProgress(loggerFromContext(ctx))
	svg, err := spin(ctx, c.stderr, "Rendering "+c.cfg.Workspace+" with graphviz...", func() ([]byte, error) {
		return render.RenderSVGCached(ctx, rc, dot)
	})
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		return perrors.Wrap(perrors.ErrCodeInternal, err, "render svg")
	}

	if err := writeOutput(opts.output, svg); err != nil {
		return err
	}
	if opts.output != "" {
		prog.done("Rendered " + c.cfg.Workspace)
		printFile(opts.output)
	}
	return nil
}

func (c *CLI) workspaceDOT(ctx context.Context, opts exportOpts) (string, error) {
	ws, closeStore, err := c.openWorkspace(ctx)
	if err != nil {
		return "", err
	}
	defer closeStore()

	return render.ToDOT(ws.Snapshot().Tree, render.DOTOptions{
		Detailed:  opts.detailed,
		Highlight: opts.highlight,
	}), nil
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}
