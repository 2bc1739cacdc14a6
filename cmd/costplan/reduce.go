package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pario-ai/costplan/pkg/estimator"
	"github.com/pario-ai/costplan/pkg/metrics"
	"github.com/pario-ai/costplan/pkg/models"
	"github.com/pario-ai/costplan/pkg/report"
)

type reductionOutput struct {
	Factor    float64              `json:"factor"`
	Params    models.UsageParams   `json:"params"`
	Reduced   models.UsageParams   `json:"reduced"`
	Baseline  models.CostBreakdown `json:"baseline"`
	Optimized models.CostBreakdown `json:"optimized"`
	Savings   float64              `json:"savings"`
	// Percent is null when the baseline costs nothing.
	Percent *float64 `json:"savings_percent"`
}

func newReduceCmd(opts *rootOptions) *cobra.Command {
	var (
		proj        projectionFlags
		factor      float64
		format      string
		metricsPath string
	)

	cmd := &cobra.Command{
		Use:   "reduce",
		Short: "Compare cost before and after cutting tokens per request",
		Long: `Scale prompt and completion tokens by --factor, the fraction retained
(0.7 models a 30% cut from prompt engineering), and compare the projected
cost with the unreduced baseline.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			proj.apply(cmd, cfg)
			if cmd.Flags().Changed("factor") {
				cfg.Reduction.Factor = factor
			}

			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			if f == report.FormatCSV {
				return errCSVUnsupported
			}

			s, err := estimator.CompareReduction(cfg.Baseline, cfg.Reduction.Factor, cfg.Pricing)
			if err != nil {
				return fmt.Errorf("reduce: %w", err)
			}
			logger.Info("reduction compared",
				"factor", s.Factor,
				"baseline_cost", s.Baseline.TotalCost,
				"optimized_cost", s.Optimized.TotalCost)

			if metricsPath != "" {
				p := metrics.NewProjection()
				p.SetBreakdown(cfg.Pricing.Model, s.Reduced, s.Optimized)
				p.SetSavings(cfg.Pricing.Model, s)
				if err := p.WriteTextfile(metricsPath); err != nil {
					return err
				}
			}

			w := cmd.OutOrStdout()
			if f == report.FormatJSON {
				return report.WriteJSON(w, newReductionOutput(s))
			}
			fmt.Fprint(w, report.FormatSavings(s))
			return nil
		},
	}

	proj.register(cmd)
	cmd.Flags().Float64VarP(&factor, "factor", "f", 0, "fraction of tokens retained, between 0 and 1 (default from config)")
	cmd.Flags().StringVarP(&format, "format", "o", "text", "output format: text or json")
	cmd.Flags().StringVar(&metricsPath, "metrics-textfile", "", "write Prometheus gauges to this textfile")
	return cmd
}

func newReductionOutput(s estimator.Savings) reductionOutput {
	out := reductionOutput{
		Factor:    s.Factor,
		Params:    s.Params,
		Reduced:   s.Reduced,
		Baseline:  s.Baseline,
		Optimized: s.Optimized,
		Savings:   s.Amount(),
	}
	if pct, err := s.Percent(); err == nil {
		out.Percent = &pct
	}
	return out
}
