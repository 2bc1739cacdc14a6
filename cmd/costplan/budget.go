package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pario-ai/costplan/pkg/budget"
	"github.com/pario-ai/costplan/pkg/estimator"
	"github.com/pario-ai/costplan/pkg/report"
)

func newBudgetCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Check projected spend against budget policies",
	}

	var statusProj projectionFlags
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show projected spend vs limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			if !cfg.Budget.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "Budget enforcement is disabled.")
				return nil
			}
			statusProj.apply(cmd, cfg)

			b, err := estimator.ComputeCost(cfg.Baseline, cfg.Pricing)
			if err != nil {
				return fmt.Errorf("estimate: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), report.FormatBudget(budget.New(cfg.Budget.Policies).Status(b)))
			return nil
		},
	}
	statusProj.register(statusCmd)

	var checkProj projectionFlags
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Exit non-zero if the projection exceeds any policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			if !cfg.Budget.Enabled {
				logger.Info("budget enforcement is disabled")
				return nil
			}
			checkProj.apply(cmd, cfg)

			b, err := estimator.ComputeCost(cfg.Baseline, cfg.Pricing)
			if err != nil {
				return fmt.Errorf("estimate: %w", err)
			}
			if err := budget.New(cfg.Budget.Policies).Check(b); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Projected %s is within budget.\n", report.Currency(b.TotalCost))
			return nil
		},
	}
	checkProj.register(checkCmd)

	cmd.AddCommand(statusCmd, checkCmd)
	return cmd
}
