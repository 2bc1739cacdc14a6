package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pario-ai/costplan/pkg/config"
	"github.com/pario-ai/costplan/pkg/logging"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

// setup loads the config and builds the command's logger. Logs go to stderr
// so stdout stays machine-readable.
func (o *rootOptions) setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = o.logFormat
	}

	logger := logging.WithRun(logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr()))
	slog.SetDefault(logger)
	if o.configPath == "" {
		logger.Debug("using built-in reference scenario")
	} else {
		logger.Debug("config loaded", "path", o.configPath)
	}
	return cfg, logger, nil
}

// projectionFlags override the configured baseline and pricing.
type projectionFlags struct {
	model            string
	dailyRequests    float64
	promptTokens     float64
	completionTokens float64
	days             int
	promptCost       float64
	completionCost   float64
}

func (p *projectionFlags) register(cmd *cobra.Command) {
	p.registerPricing(cmd)
	cmd.Flags().Float64VarP(&p.dailyRequests, "requests", "r", 0, "requests per day")
	cmd.Flags().Float64VarP(&p.promptTokens, "prompt-tokens", "p", 0, "average prompt tokens per request")
	cmd.Flags().Float64VarP(&p.completionTokens, "completion-tokens", "t", 0, "average completion tokens per request")
}

// registerPricing registers only the period and pricing overrides, for
// commands that take token counts from elsewhere.
func (p *projectionFlags) registerPricing(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&p.model, "model", "m", "", "model label")
	cmd.Flags().IntVarP(&p.days, "days", "d", 0, "billing period in days")
	cmd.Flags().Float64Var(&p.promptCost, "prompt-cost", 0, "USD per 1,000 prompt tokens")
	cmd.Flags().Float64Var(&p.completionCost, "completion-cost", 0, "USD per 1,000 completion tokens")
}

// apply copies every flag the user set onto cfg.
func (p *projectionFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fs := cmd.Flags()
	if fs.Changed("model") {
		cfg.Pricing.Model = p.model
	}
	if fs.Changed("requests") {
		cfg.Baseline.DailyRequests = p.dailyRequests
	}
	if fs.Changed("prompt-tokens") {
		cfg.Baseline.PromptTokens = p.promptTokens
	}
	if fs.Changed("completion-tokens") {
		cfg.Baseline.CompletionTokens = p.completionTokens
	}
	if fs.Changed("days") {
		cfg.Baseline.Days = p.days
	}
	if fs.Changed("prompt-cost") {
		cfg.Pricing.PromptCost = p.promptCost
	}
	if fs.Changed("completion-cost") {
		cfg.Pricing.CompletionCost = p.completionCost
	}
}
