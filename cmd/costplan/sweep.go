package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pario-ai/costplan/pkg/budget"
	"github.com/pario-ai/costplan/pkg/config"
	"github.com/pario-ai/costplan/pkg/estimator"
	"github.com/pario-ai/costplan/pkg/models"
	"github.com/pario-ai/costplan/pkg/report"
)

type sweepOutput struct {
	Pricing models.ModelPricing `json:"pricing"`
	Days    int                 `json:"days"`
	Rows    []models.SweepRow   `json:"rows"`
	Heatmap *report.Heatmap     `json:"heatmap,omitempty"`
}

func newSweepCmd(opts *rootOptions) *cobra.Command {
	var (
		proj            projectionFlags
		ranges          rangeFlags
		format          string
		heatmap         bool
		heatmapRequests float64
		color           bool
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Tabulate cost over every combination of requests, prompt and completion tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			proj.apply(cmd, cfg)
			if err := ranges.apply(cmd, &cfg.Sweep.DailyRequests, &cfg.Sweep.PromptTokens, &cfg.Sweep.CompletionTokens); err != nil {
				return err
			}
			// An explicit flag wins even at zero, which config reserves for
			// "use the baseline".
			slice := cfg.HeatmapRequests()
			if cmd.Flags().Changed("heatmap-requests") {
				slice = heatmapRequests
			}

			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			logger.Debug("running sweep",
				"requests", formatRange(cfg.Sweep.DailyRequests),
				"prompt_tokens", formatRange(cfg.Sweep.PromptTokens),
				"completion_tokens", formatRange(cfg.Sweep.CompletionTokens))

			rows, err := estimator.SweepRanges(cfg.Sweep.DailyRequests, cfg.Sweep.PromptTokens, cfg.Sweep.CompletionTokens,
				cfg.Baseline.Days, cfg.Pricing)
			if err != nil {
				return fmt.Errorf("sweep: %w", err)
			}
			logger.Info("sweep complete", "rows", len(rows))

			out := sweepOutput{Pricing: cfg.Pricing, Days: cfg.Baseline.Days, Rows: rows}
			if heatmap {
				h, err := report.Pivot(rows, slice)
				if err != nil {
					return fmt.Errorf("heatmap: %w", err)
				}
				out.Heatmap = &h
			}

			w := cmd.OutOrStdout()
			switch f {
			case report.FormatJSON:
				return report.WriteJSON(w, out)
			case report.FormatCSV:
				return report.WriteSweepCSV(w, rows)
			}

			fmt.Fprint(w, report.FormatSweep(rows))
			if out.Heatmap != nil {
				fmt.Fprintln(w)
				writeHeatmap(w, cfg, *out.Heatmap, color)
			}
			return nil
		},
	}

	proj.registerPricing(cmd)
	ranges.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "o", "text", "output format: text, json or csv")
	cmd.Flags().BoolVar(&heatmap, "heatmap", false, "also render a prompt-by-completion heatmap")
	cmd.Flags().Float64Var(&heatmapRequests, "heatmap-requests", 0, "daily request count to slice the heatmap at (default: baseline)")
	cmd.Flags().BoolVar(&color, "color", true, "colour heatmap cells")
	return cmd
}

// writeHeatmap renders h, marking cells over the tightest budget ceiling
// when budgets are enabled.
func writeHeatmap(w io.Writer, cfg *config.Config, h report.Heatmap, color bool) {
	opts := report.HeatmapOptions{Color: color}
	if cfg.Budget.Enabled {
		opts.Ceiling = budget.New(cfg.Budget.Policies).CostCeiling()
	}
	fmt.Fprint(w, report.RenderHeatmap(h, opts))
}
