package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/costgraph/pkg/config"
	"github.com/matzehuels/costgraph/pkg/cost"
	"github.com/matzehuels/costgraph/pkg/details"
	errs "github.com/matzehuels/costgraph/pkg/errors"
	"github.com/matzehuels/costgraph/pkg/store"
)

// pipelinesCommand lists the configured pipeline catalogue.
func (c *CLI) pipelinesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pipelines",
		Short: "List the configured pipelines and their providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			writeCatalogue(cmd.OutOrStdout(), cfg.Pipelines)
			return nil
		},
	}
}

func writeCatalogue(w io.Writer, catalogue []config.Pipeline) {
	if len(catalogue) == 0 {
		printInfo(w, "No pipelines configured")
		return
	}
	t := newTable("Pipeline", "Providers")
	for _, p := range catalogue {
		t.Row(p.Name, strings.Join(p.Providers, ", "))
	}
	fmt.Fprintln(w, t.Render())
	if first := catalogue[0]; len(first.Providers) > 0 {
		printNextStep(w, "Show a pipeline", fmt.Sprintf("%s watch %q -p %s", appName, first.Name, first.Providers[0]))
	}
}

// historyCommand lists recorded runs of a pipeline.
func (c *CLI) historyCommand() *cobra.Command {
	var (
		provider string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "history <pipeline>",
		Short: "List recorded cost snapshots of a pipeline",
		Long: `List recorded cost snapshots of a pipeline, newest first.

Every successful 'graph', 'cost' or 'watch' run against the API is recorded.
Configure store.mongo_uri (or COSTGRAPH_MONGO_URI) to keep history between
runs; without it history lives only as long as the process.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errs.ValidatePipelineName(args[0]); err != nil {
				return err
			}
			if err := errs.ValidateProvider(provider); err != nil {
				return err
			}
			if limit < 0 {
				return errs.New(errs.ErrCodeInvalidInput, "limit must not be negative")
			}
			cfg, err := c.config()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close(ctx)

			entries, err := runner.History(ctx, args[0], provider, limit)
			if err != nil {
				return fmt.Errorf("history: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 && cfg.Store.MongoURI == "" {
				printWarning(out, "History is not persisted; set store.mongo_uri to keep it between runs")
			}
			writeHistory(out, entries)
			return nil
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", errs.ProviderAWS, "cloud provider: AWS, Azure, GCP, Multi-Cloud")
	cmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultHistoryLimit, "maximum number of snapshots")

	return cmd
}

func writeHistory(w io.Writer, entries []store.Entry) {
	if len(entries) == 0 {
		printInfo(w, "no data")
		return
	}
	t := newTable("Fetched", "Best Region", "Total", "Regions", "Nodes", "Edges")
	for _, e := range entries {
		total := details.Placeholder
		if v, ok := e.Total(e.BestRegion); ok {
			total = cost.FormatUSD(v)
		}
		t.Row(
			e.FetchedAt.Local().Format("2006-01-02 15:04"),
			e.BestRegion,
			total,
			fmt.Sprint(len(e.Totals)),
			fmt.Sprint(e.Nodes),
			fmt.Sprint(e.Edges),
		)
	}
	fmt.Fprintln(w, t.Render())
}
