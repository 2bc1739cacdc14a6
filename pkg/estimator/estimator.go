// Package estimator projects LLM API spend from request volume and
// per-request token counts.
package estimator

import (
	"math"

	"github.com/pario-ai/costplan/pkg/models"
)

// tokensPerUnit is the token count rates are quoted against.
const tokensPerUnit = 1000

// ComputeCost projects input, output and total cost for params over
// params.Days under the given pricing. Inputs whose product overflows
// float64 are rejected with ErrInvalidInput.
func ComputeCost(params models.UsageParams, pricing models.ModelPricing) (models.CostBreakdown, error) {
	if err := ValidateParams(params); err != nil {
		return models.CostBreakdown{}, err
	}
	if err := ValidatePricing(pricing); err != nil {
		return models.CostBreakdown{}, err
	}
	b := computeCost(params, pricing)
	if err := checkBreakdown(b); err != nil {
		return models.CostBreakdown{}, err
	}
	return b, nil
}

// checkBreakdown rejects projections too large to represent.
func checkBreakdown(b models.CostBreakdown) error {
	for _, f := range []struct {
		field string
		v     float64
	}{
		{"input_tokens", b.InputTokens},
		{"output_tokens", b.OutputTokens},
		{"total_cost", b.TotalCost},
	} {
		if !isFinite(f.v) {
			return invalid(f.field, f.v, "overflows")
		}
	}
	return nil
}

func computeCost(params models.UsageParams, pricing models.ModelPricing) models.CostBreakdown {
	days := float64(params.Days)

	var b models.CostBreakdown
	b.InputTokens = params.PromptTokens * params.DailyRequests * days
	b.OutputTokens = params.CompletionTokens * params.DailyRequests * days
	b.InputCost = (b.InputTokens / tokensPerUnit) * pricing.PromptCost
	b.OutputCost = (b.OutputTokens / tokensPerUnit) * pricing.CompletionCost
	b.TotalCost = b.InputCost + b.OutputCost
	return b
}

// ValidateParams rejects negative or non-finite counts and periods shorter
// than one day.
func ValidateParams(params models.UsageParams) error {
	if err := checkQuantity("daily_requests", params.DailyRequests); err != nil {
		return err
	}
	if err := checkQuantity("prompt_tokens", params.PromptTokens); err != nil {
		return err
	}
	if err := checkQuantity("completion_tokens", params.CompletionTokens); err != nil {
		return err
	}
	return checkDays(params.Days)
}

// ValidatePricing rejects negative or non-finite rates.
func ValidatePricing(pricing models.ModelPricing) error {
	if err := checkQuantity("prompt_cost_per_1k", pricing.PromptCost); err != nil {
		return err
	}
	return checkQuantity("completion_cost_per_1k", pricing.CompletionCost)
}

func checkQuantity(field string, v float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return invalid(field, v, "must be finite")
	case v < 0:
		return invalid(field, v, "must not be negative")
	}
	return nil
}

func checkDays(days int) error {
	if days < 1 {
		return invalid("days", float64(days), "must be at least 1")
	}
	return nil
}
