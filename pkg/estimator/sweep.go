package estimator

import (
	"fmt"
	"math"

	"github.com/pario-ai/costplan/pkg/models"
)

// MaxSweepRows caps the number of combinations a single sweep may produce.
const MaxSweepRows = 1_000_000

// Sweep evaluates every combination of the three value sets over a fixed
// period and pricing. Rows are ordered with daily requests outermost, then
// prompt tokens, then completion tokens, each in input order.
//
// All values are validated before any row is produced, so one bad value
// rejects the whole sweep. An empty value set yields an empty result.
// Grids over MaxSweepRows and rows whose cost overflows are rejected with
// ErrInvalidInput.
func Sweep(dailyRequests, promptTokens, completionTokens []float64, days int, pricing models.ModelPricing) ([]models.SweepRow, error) {
	if err := checkDays(days); err != nil {
		return nil, err
	}
	if err := ValidatePricing(pricing); err != nil {
		return nil, err
	}
	for _, set := range []struct {
		field  string
		values []float64
	}{
		{"daily_requests", dailyRequests},
		{"prompt_tokens", promptTokens},
		{"completion_tokens", completionTokens},
	} {
		for i, v := range set.values {
			if err := checkQuantity(fmt.Sprintf("%s[%d]", set.field, i), v); err != nil {
				return nil, err
			}
		}
	}

	n := float64(len(dailyRequests)) * float64(len(promptTokens)) * float64(len(completionTokens))
	if n > MaxSweepRows {
		return nil, invalid("rows", n, fmt.Sprintf("too many combinations (max %d)", MaxSweepRows))
	}

	rows := make([]models.SweepRow, 0, int(n))
	for _, r := range dailyRequests {
		for _, p := range promptTokens {
			for _, c := range completionTokens {
				b := computeCost(models.UsageParams{
					DailyRequests:    r,
					PromptTokens:     p,
					CompletionTokens: c,
					Days:             days,
				}, pricing)
				if !isFinite(b.TotalCost) {
					return nil, invalid("total_cost", b.TotalCost, "overflows")
				}
				rows = append(rows, models.SweepRow{
					DailyRequests:    r,
					PromptTokens:     p,
					CompletionTokens: c,
					TotalCost:        b.TotalCost,
				})
			}
		}
	}
	return rows, nil
}

// SweepRanges expands three linear ranges and sweeps them. A range with a
// non-positive step, or one that expands to more than models.MaxRangeValues
// values, is rejected rather than treated as empty.
func SweepRanges(dailyRequests, promptTokens, completionTokens models.Range, days int, pricing models.ModelPricing) ([]models.SweepRow, error) {
	for _, r := range []struct {
		field string
		rng   models.Range
	}{
		{"daily_requests", dailyRequests},
		{"prompt_tokens", promptTokens},
		{"completion_tokens", completionTokens},
	} {
		if !(r.rng.Step > 0) {
			return nil, invalid(r.field+".step", r.rng.Step, "must be positive")
		}
		if n := r.rng.Count(); n > models.MaxRangeValues {
			return nil, invalid(r.field, n, fmt.Sprintf("too many values (max %d)", models.MaxRangeValues))
		}
	}
	return Sweep(dailyRequests.Values(), promptTokens.Values(), completionTokens.Values(), days, pricing)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
