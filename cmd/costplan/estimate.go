package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pario-ai/costplan/pkg/budget"
	"github.com/pario-ai/costplan/pkg/estimator"
	"github.com/pario-ai/costplan/pkg/metrics"
	"github.com/pario-ai/costplan/pkg/models"
	"github.com/pario-ai/costplan/pkg/report"
)

var errCSVUnsupported = errors.New("csv output is only available for sweep")

type estimateOutput struct {
	Pricing   models.ModelPricing   `json:"pricing"`
	Params    models.UsageParams    `json:"params"`
	Breakdown models.CostBreakdown  `json:"breakdown"`
	Budget    []models.BudgetStatus `json:"budget,omitempty"`
}

func newEstimateCmd(opts *rootOptions) *cobra.Command {
	var (
		proj        projectionFlags
		format      string
		metricsPath string
		enforce     bool
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Project input, output and total cost for one usage scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			proj.apply(cmd, cfg)

			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			if f == report.FormatCSV {
				return errCSVUnsupported
			}

			b, err := estimator.ComputeCost(cfg.Baseline, cfg.Pricing)
			if err != nil {
				return fmt.Errorf("estimate: %w", err)
			}
			logger.Info("projection computed",
				"model", cfg.Pricing.Model,
				"days", cfg.Baseline.Days,
				"total_cost", b.TotalCost)

			out := estimateOutput{Pricing: cfg.Pricing, Params: cfg.Baseline, Breakdown: b}
			var enforcer *budget.Enforcer
			if cfg.Budget.Enabled {
				enforcer = budget.New(cfg.Budget.Policies)
				out.Budget = enforcer.Status(b)
			}

			if metricsPath != "" {
				p := metrics.NewProjection()
				p.SetBreakdown(cfg.Pricing.Model, cfg.Baseline, b)
				if err := p.WriteTextfile(metricsPath); err != nil {
					return err
				}
				logger.Debug("metrics written", "path", metricsPath)
			}

			if err := writeEstimate(cmd.OutOrStdout(), f, out); err != nil {
				return err
			}

			if enforce && enforcer != nil {
				return enforcer.Check(b)
			}
			return nil
		},
	}

	proj.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "o", "text", "output format: text or json")
	cmd.Flags().StringVar(&metricsPath, "metrics-textfile", "", "write Prometheus gauges to this textfile")
	cmd.Flags().BoolVar(&enforce, "enforce", false, "exit non-zero when a budget policy is exceeded")
	return cmd
}

func writeEstimate(w io.Writer, f report.Format, out estimateOutput) error {
	if f == report.FormatJSON {
		return report.WriteJSON(w, out)
	}
	fmt.Fprint(w, report.FormatBreakdown(out.Pricing, out.Params, out.Breakdown))
	if len(out.Budget) > 0 {
		fmt.Fprintln(w)
		fmt.Fprint(w, report.FormatBudget(out.Budget))
	}
	return nil
}
