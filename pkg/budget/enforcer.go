package budget

import (
	"errors"
	"fmt"

	"github.com/pario-ai/costplan/pkg/models"
)

// ErrBudgetExceeded is returned when a projection exceeds a policy.
var ErrBudgetExceeded = errors.New("budget exceeded")

// Enforcer checks projected spend against budget policies.
type Enforcer struct {
	policies []models.BudgetPolicy
}

// New creates an Enforcer with the given policies.
func New(policies []models.BudgetPolicy) *Enforcer {
	return &Enforcer{policies: policies}
}

// Check returns ErrBudgetExceeded, naming the first violated policy, if the
// projection exceeds any cost or token ceiling.
func (e *Enforcer) Check(b models.CostBreakdown) error {
	for _, s := range e.Status(b) {
		if s.Exceeded {
			return fmt.Errorf("%w: policy %q", ErrBudgetExceeded, s.Policy.Name)
		}
	}
	return nil
}

// Status returns the projection measured against every policy.
func (e *Enforcer) Status(b models.CostBreakdown) []models.BudgetStatus {
	statuses := make([]models.BudgetStatus, 0, len(e.policies))
	for _, p := range e.policies {
		s := models.BudgetStatus{
			Policy:          p,
			ProjectedCost:   b.TotalCost,
			ProjectedTokens: b.TotalTokens(),
		}
		if p.MaxCost > 0 {
			s.RemainingCost = p.MaxCost - b.TotalCost
			if s.RemainingCost < 0 {
				s.RemainingCost = 0
			}
			if b.TotalCost > p.MaxCost {
				s.Exceeded = true
			}
		}
		if p.MaxTokens > 0 && b.TotalTokens() > float64(p.MaxTokens) {
			s.Exceeded = true
		}
		statuses = append(statuses, s)
	}
	return statuses
}

// CostCeiling returns the tightest cost ceiling across policies, or 0 when
// no policy caps cost.
func (e *Enforcer) CostCeiling() float64 {
	var ceiling float64
	for _, p := range e.policies {
		if p.MaxCost > 0 && (ceiling == 0 || p.MaxCost < ceiling) {
			ceiling = p.MaxCost
		}
	}
	return ceiling
}
