package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/costgraph/pkg/pipeline"
)

// graphCommand creates the graph command, which normalizes a pipeline's
// resource graph and optionally writes it as JSON or SVG.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		flags  runFlags
		output string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "graph <pipeline>",
		Short: "Normalize a pipeline's resource graph",
		Long: `Normalize a pipeline's resource graph.

The graph command fetches the pipeline's network paths (or reads a saved
response with --paths), merges repeated resources into nodes and prints a
summary with the region legend. With --output the view is written as JSON
(graph, legend and cost comparison) or as an SVG diagram.`,
		Example: `  costgraph graph "Smart Grid Analytics Platform" -p AWS
  costgraph graph "Smart Tourism Platform" -p GCP -f svg -o tourism.svg
  costgraph graph demo --paths paths.json --costs costs.json -o view.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Pipeline = args[0]
			opts.Provider = flags.provider
			opts.Refresh = flags.refresh
			if output != "" {
				if err := opts.ValidateForRender(); err != nil {
					return err
				}
			}
			return c.runGraph(cmd, opts, flags, output)
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the view to this file")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", pipeline.FormatJSON, "output format: json, svg")
	cmd.Flags().StringVar(&opts.Engine, "engine", pipeline.DefaultEngine, "graphviz layout engine: fdp, dot")
	cmd.Flags().BoolVar(&opts.ClusterRegions, "cluster", false, "group nodes by region (svg)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show node state in labels (svg)")
	cmd.Flags().BoolVar(&opts.WithPositions, "positions", false, "include computed node positions (json)")

	return cmd
}

func (c *CLI) runGraph(cmd *cobra.Command, opts pipeline.Options, flags runFlags, output string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close(ctx)

	prog := newProgress(c.Logger)
	var res *pipeline.Result
	err = c.spin(ctx, cmd.ErrOrStderr(), "Fetching "+opts.Pipeline+"...", func() (err error) {
		res, err = c.loadResult(ctx, runner, opts, flags)
		return err
	})
	if err != nil {
		return err
	}
	prog.done("Loaded " + opts.Pipeline)

	printSuccess(out, "%s (%s)", opts.Pipeline, opts.Provider)
	if res.Graph.IsEmpty() {
		printInfo(out, "no data")
		return nil
	}
	printStats(out, res.Graph.Stats(), false)
	printLegend(out, opts.Provider, res.Graph.Legend())

	if output == "" {
		fmt.Fprintln(out)
		printNextStep(out, "Compare region costs", fmt.Sprintf("%s cost %q -p %s", appName, opts.Pipeline, opts.Provider))
		return nil
	}

	data, cached, err := runner.RenderWithCacheInfo(ctx, res, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	fmt.Fprintln(out)
	printSuccess(out, "Wrote %s view", opts.Format)
	if cached {
		printDetail(out, iconCached)
	}
	printFile(out, output)
	return nil
}
