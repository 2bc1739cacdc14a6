package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pario-ai/costplan/pkg/estimator"
	"github.com/pario-ai/costplan/pkg/models"
)

// FormatBreakdown formats a single projection as a text table.
func FormatBreakdown(pricing models.ModelPricing, params models.UsageParams, b models.CostBreakdown) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Model: %s   Period: %d days   Daily requests: %s\n",
		defaultStr(pricing.Model, "(unnamed)"), params.Days, Quantity(params.DailyRequests))
	fmt.Fprintf(&sb, "Per request: %s prompt tokens, %s completion tokens\n\n",
		Quantity(params.PromptTokens), Quantity(params.CompletionTokens))

	fmt.Fprintf(&sb, "%-10s %16s %10s %16s\n", "COMPONENT", "TOKENS", "RATE/1K", "COST")
	sb.WriteString(strings.Repeat("-", 55) + "\n")
	fmt.Fprintf(&sb, "%-10s %16s %10s %16s\n", "input", Tokens(b.InputTokens), rate(pricing.PromptCost), Currency(b.InputCost))
	fmt.Fprintf(&sb, "%-10s %16s %10s %16s\n", "output", Tokens(b.OutputTokens), rate(pricing.CompletionCost), Currency(b.OutputCost))
	sb.WriteString(strings.Repeat("-", 55) + "\n")
	fmt.Fprintf(&sb, "%-10s %16s %10s %16s\n", "TOTAL:", Tokens(b.TotalTokens()), "", Currency(b.TotalCost))
	return sb.String()
}

// FormatSavings formats a reduction comparison. The percentage is shown as
// n/a when the baseline costs nothing.
func FormatSavings(s estimator.Savings) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Token reduction: keep %.0f%% of prompt and completion tokens\n", s.Factor*100)
	fmt.Fprintf(&sb, "Per request: %s -> %s prompt, %s -> %s completion\n\n",
		Quantity(s.Params.PromptTokens), Quantity(s.Reduced.PromptTokens),
		Quantity(s.Params.CompletionTokens), Quantity(s.Reduced.CompletionTokens))

	fmt.Fprintf(&sb, "%-10s %16s %16s\n", "", "BASELINE", "OPTIMIZED")
	sb.WriteString(strings.Repeat("-", 44) + "\n")
	fmt.Fprintf(&sb, "%-10s %16s %16s\n", "input", Currency(s.Baseline.InputCost), Currency(s.Optimized.InputCost))
	fmt.Fprintf(&sb, "%-10s %16s %16s\n", "output", Currency(s.Baseline.OutputCost), Currency(s.Optimized.OutputCost))
	fmt.Fprintf(&sb, "%-10s %16s %16s\n", "total", Currency(s.Baseline.TotalCost), Currency(s.Optimized.TotalCost))
	sb.WriteString(strings.Repeat("-", 44) + "\n")

	pct, err := s.Percent()
	switch {
	case errors.Is(err, estimator.ErrDivisionUndefined):
		fmt.Fprintf(&sb, "Savings: %s (n/a: baseline cost is zero)\n", Currency(s.Amount()))
	default:
		fmt.Fprintf(&sb, "Savings: %s (%.2f%%)\n", Currency(s.Amount()), pct)
	}
	return sb.String()
}

// FormatSweep formats sweep rows as a text table.
func FormatSweep(rows []models.SweepRow) string {
	if len(rows) == 0 {
		return "No sweep rows.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%14s %14s %18s %16s\n", "DAILY REQUESTS", "PROMPT TOKENS", "COMPLETION TOKENS", "TOTAL COST")
	sb.WriteString(strings.Repeat("-", 65) + "\n")
	for _, r := range rows {
		fmt.Fprintf(&sb, "%14s %14s %18s %16s\n",
			Quantity(r.DailyRequests), Quantity(r.PromptTokens), Quantity(r.CompletionTokens), Currency(r.TotalCost))
	}
	fmt.Fprintf(&sb, "%d combinations\n", len(rows))
	return sb.String()
}

// FormatBudget formats budget statuses as a text table.
func FormatBudget(statuses []models.BudgetStatus) string {
	if len(statuses) == 0 {
		return "No budget policies configured.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-16s %14s %14s %14s %7s %s\n",
		"POLICY", "MAX COST", "PROJECTED", "REMAINING", "USAGE%", "STATUS")
	sb.WriteString(strings.Repeat("-", 78) + "\n")
	for _, s := range statuses {
		maxCost := "-"
		if s.Policy.MaxCost > 0 {
			maxCost = Currency(s.Policy.MaxCost)
		}
		state := "ok"
		if s.Exceeded {
			state = "EXCEEDED"
		}
		fmt.Fprintf(&sb, "%-16s %14s %14s %14s %6.1f%% %s\n",
			s.Policy.Name, maxCost, Currency(s.ProjectedCost), Currency(s.RemainingCost), s.CostUsage(), state)
		if s.Policy.MaxTokens > 0 {
			fmt.Fprintf(&sb, "%-16s %14s tokens, projected %s\n", "", Tokens(float64(s.Policy.MaxTokens)), Tokens(s.ProjectedTokens))
		}
	}
	return sb.String()
}

// FormatBaseline formats usage observed in history.
func FormatBaseline(b models.UsageBaseline) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Observed usage (%s to %s)\n",
		b.FirstSeen.Format("2006-01-02"), b.LastSeen.Format("2006-01-02"))
	if b.APIKey != "" {
		fmt.Fprintf(&sb, "  API key:            %s\n", b.APIKey)
	}
	if b.Model != "" {
		fmt.Fprintf(&sb, "  Model:              %s\n", b.Model)
	}
	fmt.Fprintf(&sb, "  Requests:           %s over %d active days\n", Tokens(float64(b.Requests)), b.ActiveDays)
	fmt.Fprintf(&sb, "  Daily requests:     %s\n", Quantity(b.AvgDailyRequests))
	fmt.Fprintf(&sb, "  Prompt tokens:      %s per request\n", Quantity(b.AvgPromptTokens))
	fmt.Fprintf(&sb, "  Completion tokens:  %s per request\n", Quantity(b.AvgCompletionTokens))
	return sb.String()
}

func rate(v float64) string {
	return fmt.Sprintf("$%.4f", v)
}

func defaultStr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
