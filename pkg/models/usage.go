package models

import "time"

// UsageParams describes request volume and per-request token counts over a
// billing period. Token counts are real-valued so that percentage scaling
// stays exact.
type UsageParams struct {
	DailyRequests    float64 `json:"daily_requests" yaml:"daily_requests" validate:"gte=0"`
	PromptTokens     float64 `json:"prompt_tokens" yaml:"prompt_tokens" validate:"gte=0"`
	CompletionTokens float64 `json:"completion_tokens" yaml:"completion_tokens" validate:"gte=0"`
	Days             int     `json:"days" yaml:"days" validate:"gte=1"`
}

// UsageRecord tracks per-request token usage as written by the pario proxy.
type UsageRecord struct {
	ID               int64     `json:"id"`
	APIKey           string    `json:"api_key"`
	Model            string    `json:"model"`
	SessionID        string    `json:"session_id,omitempty"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens"`
	CreatedAt        time.Time `json:"created_at"`
}

// UsageBaseline is usage observed in recorded history, reduced to the
// averages a projection needs.
type UsageBaseline struct {
	APIKey              string    `json:"api_key,omitempty"`
	Model               string    `json:"model,omitempty"`
	Requests            int64     `json:"requests"`
	ActiveDays          int       `json:"active_days"`
	FirstSeen           time.Time `json:"first_seen"`
	LastSeen            time.Time `json:"last_seen"`
	AvgDailyRequests    float64   `json:"avg_daily_requests"`
	AvgPromptTokens     float64   `json:"avg_prompt_tokens"`
	AvgCompletionTokens float64   `json:"avg_completion_tokens"`
}

// Params converts the baseline into usage parameters for the given period.
func (b UsageBaseline) Params(days int) UsageParams {
	return UsageParams{
		DailyRequests:    b.AvgDailyRequests,
		PromptTokens:     b.AvgPromptTokens,
		CompletionTokens: b.AvgCompletionTokens,
		Days:             days,
	}
}
