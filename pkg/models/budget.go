package models

// BudgetPolicy caps projected spend and token volume for one billing period.
// A zero limit is not enforced.
type BudgetPolicy struct {
	Name      string  `json:"name" yaml:"name" validate:"required"`
	MaxCost   float64 `json:"max_cost,omitempty" yaml:"max_cost" validate:"gte=0"`
	MaxTokens int64   `json:"max_tokens,omitempty" yaml:"max_tokens" validate:"gte=0"`
}

// BudgetStatus shows a projection against a policy.
type BudgetStatus struct {
	Policy          BudgetPolicy `json:"policy"`
	ProjectedCost   float64      `json:"projected_cost"`
	ProjectedTokens float64      `json:"projected_tokens"`
	RemainingCost   float64      `json:"remaining_cost"`
	Exceeded        bool         `json:"exceeded"`
}

// CostUsage returns projected cost as a percentage of MaxCost, or 0 when
// the policy has no cost ceiling.
func (s BudgetStatus) CostUsage() float64 {
	if s.Policy.MaxCost <= 0 {
		return 0
	}
	return s.ProjectedCost / s.Policy.MaxCost * 100
}
