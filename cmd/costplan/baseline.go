package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pario-ai/costplan/pkg/estimator"
	"github.com/pario-ai/costplan/pkg/models"
	"github.com/pario-ai/costplan/pkg/report"
	"github.com/pario-ai/costplan/pkg/usage"
)

type baselineOutput struct {
	Observed  models.UsageBaseline `json:"observed"`
	Pricing   models.ModelPricing  `json:"pricing"`
	Params    models.UsageParams   `json:"params"`
	Breakdown models.CostBreakdown `json:"breakdown"`
}

func newBaselineCmd(opts *rootOptions) *cobra.Command {
	var (
		proj        projectionFlags
		dbPath      string
		apiKey      string
		filterModel string
		since       string
		format      string
	)

	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Project cost from usage recorded by the pario proxy",
		Long: `Average the requests and tokens recorded in a pario usage database into a
baseline (requests per active day, tokens per request) and project the cost
of that baseline over the billing period.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			proj.apply(cmd, cfg)
			if cmd.Flags().Changed("db") {
				cfg.Usage.DBPath = dbPath
			}

			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			if f == report.FormatCSV {
				return errCSVUnsupported
			}

			filter := usage.Filter{APIKey: apiKey, Model: filterModel}
			if since != "" {
				t, err := time.Parse("2006-01-02", since)
				if err != nil {
					return fmt.Errorf("invalid --since date (use YYYY-MM-DD): %w", err)
				}
				filter.Since = t
			}

			src, err := usage.Open(cfg.Usage.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = src.Close() }()

			observed, err := src.Baseline(cmd.Context(), filter)
			if errors.Is(err, usage.ErrNoUsage) {
				fmt.Fprintln(cmd.OutOrStdout(), "No recorded usage matches the filter.")
				return nil
			}
			if err != nil {
				return err
			}
			logger.Info("baseline derived",
				"db", cfg.Usage.DBPath,
				"requests", observed.Requests,
				"active_days", observed.ActiveDays)

			params := observed.Params(cfg.Baseline.Days)
			b, err := estimator.ComputeCost(params, cfg.Pricing)
			if err != nil {
				return fmt.Errorf("estimate: %w", err)
			}

			w := cmd.OutOrStdout()
			if f == report.FormatJSON {
				return report.WriteJSON(w, baselineOutput{Observed: observed, Pricing: cfg.Pricing, Params: params, Breakdown: b})
			}
			fmt.Fprint(w, report.FormatBaseline(observed))
			fmt.Fprintln(w)
			fmt.Fprint(w, report.FormatBreakdown(cfg.Pricing, params, b))
			return nil
		},
	}

	proj.registerPricing(cmd)
	cmd.Flags().StringVar(&dbPath, "db", "", "pario usage database (default from config)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "only count requests from this API key")
	cmd.Flags().StringVar(&filterModel, "filter-model", "", "only count requests to this model")
	cmd.Flags().StringVar(&since, "since", "", "only count requests on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&format, "format", "o", "text", "output format: text or json")
	return cmd
}
