package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/costgraph/pkg/cost"
	"github.com/matzehuels/costgraph/pkg/details"
	"github.com/matzehuels/costgraph/pkg/pipeline"
)

// costCommand creates the cost command, which ranks a pipeline's regions by
// total cost.
func (c *CLI) costCommand() *cobra.Command {
	var (
		flags  runFlags
		asJSON bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "cost <pipeline>",
		Short: "Compare a pipeline's cost across regions",
		Long: `Compare a pipeline's cost across regions.

Regions are ranked by total cost, cheapest first, and the cheapest is marked
as the best option. The report also shows each service's cost per region,
how much more every other region costs than the best one and a 12-month
trend. The trend is simulated from current totals; use 'history' for
recorded runs.`,
		Example: `  costgraph cost "Global Media Streaming Platform" -p Azure
  costgraph cost "Smart City Operations Platform" -p Multi-Cloud --json
  costgraph cost demo --costs costs.json --union`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Pipeline = args[0]
			opts.Provider = flags.provider
			opts.Refresh = flags.refresh
			return c.runCost(cmd, opts, flags, asJSON)
		},
	}

	flags.register(cmd, true)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the aggregation as JSON")
	cmd.Flags().BoolVar(&opts.UnionServices, "union", false, "compare the union of all regions' services")

	return cmd
}

func (c *CLI) runCost(cmd *cobra.Command, opts pipeline.Options, flags runFlags, asJSON bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close(ctx)

	var res *pipeline.Result
	err = c.spin(ctx, cmd.ErrOrStderr(), "Fetching "+opts.Pipeline+"...", func() (err error) {
		res, err = c.loadResult(ctx, runner, opts, flags)
		return err
	})
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Costs)
	}
	writeCostReport(out, opts.Pipeline, opts.Provider, res.Costs)
	return nil
}

// writeCostReport prints region cards, the service comparison, percentage
// differences and the trend.
func writeCostReport(w io.Writer, name, provider string, agg *cost.Aggregation) {
	printSuccess(w, "%s (%s)", name, provider)
	if agg.IsEmpty() {
		printInfo(w, "no data")
		return
	}

	printHeading(w, "Regions")
	for _, r := range agg.Ranked {
		line := fmt.Sprintf("  %d. %-24s %s", r.Rank+1, r.Region, StyleNumber.Render(cost.FormatUSD(r.Total())))
		if badge := r.Badge(); badge != "" {
			line += "  " + StyleBadge.Render(badge)
		}
		fmt.Fprintln(w, line)
		for _, item := range r.Breakdown {
			printDetail(w, "   %-22s %s", item.Service, cost.FormatUSD(item.Amount))
		}
	}

	if len(agg.ServiceRows) > 0 {
		printHeading(w, "Service Comparison")
		fmt.Fprintln(w, serviceTable(agg))
	}

	if len(agg.Differences) > 0 {
		printHeading(w, "Compared to "+agg.Summary.BestRegion)
		for _, d := range agg.Differences {
			printKeyValue(w, d.Name, fmt.Sprintf("%-8s %s", cost.FormatPercent(d), StyleDim.Render(cost.FormatUSD(d.ActualCost))))
		}
	}

	if len(agg.Trend) > 0 {
		printHeading(w, "Cost Trend")
		fmt.Fprintln(w, trendTable(agg))
		printDetail(w, "simulated from current totals")
	}
}

func serviceTable(agg *cost.Aggregation) string {
	regions := agg.Regions()
	t := newTable(append([]string{"Service"}, regions...)...)
	for _, row := range agg.ServiceRows {
		cells := []string{row.Service}
		for _, region := range regions {
			if amt := row.Amount(region); amt != nil {
				cells = append(cells, cost.FormatUSD(*amt))
			} else {
				cells = append(cells, details.Placeholder)
			}
		}
		t.Row(cells...)
	}
	return t.Render()
}

func trendTable(agg *cost.Aggregation) string {
	regions := agg.Regions()
	t := newTable(append([]string{"Month"}, regions...)...)
	for _, p := range agg.Trend {
		cells := []string{p.Month}
		for _, region := range regions {
			if v, ok := p.Value(region); ok {
				cells = append(cells, cost.FormatUSD(v))
			} else {
				cells = append(cells, details.Placeholder)
			}
		}
		t.Row(cells...)
	}
	return t.Render()
}
