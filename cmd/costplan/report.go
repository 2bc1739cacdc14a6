package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pario-ai/costplan/pkg/budget"
	"github.com/pario-ai/costplan/pkg/estimator"
	"github.com/pario-ai/costplan/pkg/metrics"
	"github.com/pario-ai/costplan/pkg/models"
	"github.com/pario-ai/costplan/pkg/report"
)

func newReportCmd(opts *rootOptions) *cobra.Command {
	var (
		color       bool
		metricsPath string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run the configured scenario end to end",
		Long: `Print the baseline projection, the token reduction comparison, a summary of
the sensitivity sweep and the cost heatmap, all from the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}

			b, err := estimator.ComputeCost(cfg.Baseline, cfg.Pricing)
			if err != nil {
				return fmt.Errorf("estimate: %w", err)
			}
			s, err := estimator.CompareReduction(cfg.Baseline, cfg.Reduction.Factor, cfg.Pricing)
			if err != nil {
				return fmt.Errorf("reduce: %w", err)
			}
			rows, err := estimator.SweepRanges(cfg.Sweep.DailyRequests, cfg.Sweep.PromptTokens, cfg.Sweep.CompletionTokens,
				cfg.Baseline.Days, cfg.Pricing)
			if err != nil {
				return fmt.Errorf("sweep: %w", err)
			}
			logger.Info("report computed", "total_cost", b.TotalCost, "sweep_rows", len(rows))

			w := cmd.OutOrStdout()
			section(w, "Baseline projection")
			fmt.Fprint(w, report.FormatBreakdown(cfg.Pricing, cfg.Baseline, b))
			if cfg.Budget.Enabled {
				fmt.Fprintln(w)
				fmt.Fprint(w, report.FormatBudget(budget.New(cfg.Budget.Policies).Status(b)))
			}

			section(w, "Token reduction")
			fmt.Fprint(w, report.FormatSavings(s))

			section(w, "Sensitivity sweep")
			fmt.Fprint(w, sweepSummary(rows))

			section(w, "Cost heatmap")
			h, err := report.Pivot(rows, cfg.HeatmapRequests())
			if err != nil {
				// The baseline request count need not lie on the sweep grid.
				logger.Warn("heatmap skipped", "err", err)
				fmt.Fprintf(w, "No sweep rows at %s daily requests.\n", report.Quantity(cfg.HeatmapRequests()))
			} else {
				writeHeatmap(w, cfg, h, color)
			}

			if metricsPath != "" {
				p := metrics.NewProjection()
				p.SetBreakdown(cfg.Pricing.Model, cfg.Baseline, b)
				p.SetSavings(cfg.Pricing.Model, s)
				if err := p.WriteTextfile(metricsPath); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&color, "color", true, "colour heatmap cells")
	cmd.Flags().StringVar(&metricsPath, "metrics-textfile", "", "write Prometheus gauges to this textfile")
	return cmd
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n", title, strings.Repeat("=", len(title)))
}

// sweepSummary reports the grid size and its cheapest and most expensive
// combinations instead of every row.
func sweepSummary(rows []models.SweepRow) string {
	if len(rows) == 0 {
		return "No sweep rows.\n"
	}
	lo, hi := rows[0], rows[0]
	for _, r := range rows[1:] {
		if r.TotalCost < lo.TotalCost {
			lo = r
		}
		if r.TotalCost > hi.TotalCost {
			hi = r
		}
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d combinations\n", len(rows))
	fmt.Fprintf(&sb, "  cheapest:       %s  (%s requests/day, %s prompt, %s completion)\n",
		report.Currency(lo.TotalCost), report.Quantity(lo.DailyRequests), report.Quantity(lo.PromptTokens), report.Quantity(lo.CompletionTokens))
	fmt.Fprintf(&sb, "  most expensive: %s  (%s requests/day, %s prompt, %s completion)\n",
		report.Currency(hi.TotalCost), report.Quantity(hi.DailyRequests), report.Quantity(hi.PromptTokens), report.Quantity(hi.CompletionTokens))
	return sb.String()
}
