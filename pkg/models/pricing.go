package models

// ModelPricing defines per-1K token costs for a model. It is the pricing
// schedule every projection is computed against.
type ModelPricing struct {
	Model          string  `json:"model" yaml:"model"`
	PromptCost     float64 `json:"prompt_cost_per_1k" yaml:"prompt_cost_per_1k" validate:"gte=0"`
	CompletionCost float64 `json:"completion_cost_per_1k" yaml:"completion_cost_per_1k" validate:"gte=0"`
}

// CostBreakdown is the projected spend for one set of usage parameters.
// TotalCost is always InputCost + OutputCost.
type CostBreakdown struct {
	InputTokens  float64 `json:"input_tokens"`
	OutputTokens float64 `json:"output_tokens"`
	InputCost    float64 `json:"input_cost"`
	OutputCost   float64 `json:"output_cost"`
	TotalCost    float64 `json:"total_cost"`
}

// TotalTokens returns input plus output tokens over the period.
func (b CostBreakdown) TotalTokens() float64 {
	return b.InputTokens + b.OutputTokens
}
