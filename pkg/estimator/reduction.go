package estimator

import "github.com/pario-ai/costplan/pkg/models"

// ApplyReduction scales per-request prompt and completion tokens by factor,
// the fraction of tokens retained. Requests and period are unchanged.
func ApplyReduction(params models.UsageParams, factor float64) (models.UsageParams, error) {
	if err := checkQuantity("factor", factor); err != nil {
		return models.UsageParams{}, err
	}
	if factor > 1 {
		return models.UsageParams{}, invalid("factor", factor, "must not exceed 1")
	}
	params.PromptTokens *= factor
	params.CompletionTokens *= factor
	return params, nil
}

// Savings compares a baseline projection with one under reduced token usage.
type Savings struct {
	Factor    float64              `json:"factor"`
	Params    models.UsageParams   `json:"params"`
	Reduced   models.UsageParams   `json:"reduced"`
	Baseline  models.CostBreakdown `json:"baseline"`
	Optimized models.CostBreakdown `json:"optimized"`
}

// Amount returns the absolute saving over the period.
func (s Savings) Amount() float64 {
	return s.Baseline.TotalCost - s.Optimized.TotalCost
}

// Percent returns the saving as a percentage of the baseline total. It
// returns ErrDivisionUndefined when the baseline costs nothing.
func (s Savings) Percent() (float64, error) {
	if s.Baseline.TotalCost <= 0 {
		return 0, ErrDivisionUndefined
	}
	return s.Amount() / s.Baseline.TotalCost * 100, nil
}

// CompareReduction projects cost for params and for params reduced by factor.
func CompareReduction(params models.UsageParams, factor float64, pricing models.ModelPricing) (Savings, error) {
	baseline, err := ComputeCost(params, pricing)
	if err != nil {
		return Savings{}, err
	}
	reduced, err := ApplyReduction(params, factor)
	if err != nil {
		return Savings{}, err
	}
	return Savings{
		Factor:    factor,
		Params:    params,
		Reduced:   reduced,
		Baseline:  baseline,
		Optimized: computeCost(reduced, pricing),
	}, nil
}
