package estimator

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pario-ai/costplan/pkg/models"
)

var gpt4 = models.ModelPricing{Model: "gpt-4", PromptCost: 0.03, CompletionCost: 0.06}

func baselineParams() models.UsageParams {
	return models.UsageParams{DailyRequests: 1000, PromptTokens: 300, CompletionTokens: 500, Days: 30}
}

func TestComputeCostReferenceScenario(t *testing.T) {
	b, err := ComputeCost(baselineParams(), gpt4)
	require.NoError(t, err)

	assert.InDelta(t, 9_000_000, b.InputTokens, 1e-6)
	assert.InDelta(t, 15_000_000, b.OutputTokens, 1e-6)
	assert.InDelta(t, 270.00, b.InputCost, 1e-9)
	assert.InDelta(t, 900.00, b.OutputCost, 1e-9)
	assert.InDelta(t, 1170.00, b.TotalCost, 1e-9)
}

func TestComputeCostTotalIsSum(t *testing.T) {
	cases := []models.UsageParams{
		{DailyRequests: 1, PromptTokens: 1, CompletionTokens: 1, Days: 1},
		{DailyRequests: 123.5, PromptTokens: 77.7, CompletionTokens: 913.1, Days: 31},
		{DailyRequests: 1e6, PromptTokens: 4096, CompletionTokens: 8192, Days: 365},
		{DailyRequests: 0, PromptTokens: 300, CompletionTokens: 500, Days: 30},
	}
	for _, p := range cases {
		b, err := ComputeCost(p, gpt4)
		require.NoError(t, err)
		assert.Equal(t, b.InputCost+b.OutputCost, b.TotalCost, "params %+v", p)
	}
}

func TestComputeCostZeroRequests(t *testing.T) {
	p := models.UsageParams{DailyRequests: 0, PromptTokens: 5000, CompletionTokens: 9000, Days: 30}
	b, err := ComputeCost(p, gpt4)
	require.NoError(t, err)
	assert.Zero(t, b.TotalCost)
	assert.Zero(t, b.InputTokens)
	assert.Zero(t, b.OutputTokens)
}

func TestComputeCostLinearity(t *testing.T) {
	base, err := ComputeCost(baselineParams(), gpt4)
	require.NoError(t, err)

	scale := func(mut func(*models.UsageParams)) models.CostBreakdown {
		p := baselineParams()
		mut(&p)
		b, err := ComputeCost(p, gpt4)
		require.NoError(t, err)
		return b
	}

	doubled := scale(func(p *models.UsageParams) { p.DailyRequests *= 2 })
	assert.InDelta(t, 2*base.TotalCost, doubled.TotalCost, 1e-9)

	tripledDays := scale(func(p *models.UsageParams) { p.Days *= 3 })
	assert.InDelta(t, 3*base.TotalCost, tripledDays.TotalCost, 1e-9)

	prompt := scale(func(p *models.UsageParams) { p.PromptTokens *= 2.5 })
	assert.InDelta(t, 2.5*base.InputCost, prompt.InputCost, 1e-9)
	assert.InDelta(t, base.OutputCost, prompt.OutputCost, 1e-9)

	completion := scale(func(p *models.UsageParams) { p.CompletionTokens *= 0 })
	assert.Zero(t, completion.OutputCost)
	assert.InDelta(t, base.InputCost, completion.InputCost, 1e-9)
}

func TestComputeCostMonotonic(t *testing.T) {
	prev := -1.0
	for r := 0.0; r <= 2000; r += 250 {
		p := baselineParams()
		p.DailyRequests = r
		b, err := ComputeCost(p, gpt4)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, b.TotalCost, prev)
		prev = b.TotalCost
	}

	prev = -1.0
	for days := 1; days <= 31; days++ {
		p := baselineParams()
		p.Days = days
		b, err := ComputeCost(p, gpt4)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, b.TotalCost, prev)
		prev = b.TotalCost
	}

	prev = -1.0
	for tok := 0.0; tok <= 1000; tok += 50 {
		p := baselineParams()
		p.PromptTokens = tok
		p.CompletionTokens = tok
		b, err := ComputeCost(p, gpt4)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, b.TotalCost, prev)
		prev = b.TotalCost
	}
}

func TestComputeCostInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		params  models.UsageParams
		pricing models.ModelPricing
		field   string
	}{
		{"negative requests", models.UsageParams{DailyRequests: -1, PromptTokens: 1, CompletionTokens: 1, Days: 1}, gpt4, "daily_requests"},
		{"negative prompt", models.UsageParams{DailyRequests: 1, PromptTokens: -1, CompletionTokens: 1, Days: 1}, gpt4, "prompt_tokens"},
		{"negative completion", models.UsageParams{DailyRequests: 1, PromptTokens: 1, CompletionTokens: -0.5, Days: 1}, gpt4, "completion_tokens"},
		{"zero days", models.UsageParams{DailyRequests: 1, PromptTokens: 1, CompletionTokens: 1, Days: 0}, gpt4, "days"},
		{"negative days", models.UsageParams{DailyRequests: 1, PromptTokens: 1, CompletionTokens: 1, Days: -7}, gpt4, "days"},
		{"nan requests", models.UsageParams{DailyRequests: math.NaN(), PromptTokens: 1, CompletionTokens: 1, Days: 1}, gpt4, "daily_requests"},
		{"inf prompt", models.UsageParams{DailyRequests: 1, PromptTokens: math.Inf(1), CompletionTokens: 1, Days: 1}, gpt4, "prompt_tokens"},
		{"negative prompt rate", baselineParams(), models.ModelPricing{PromptCost: -0.01, CompletionCost: 0.06}, "prompt_cost_per_1k"},
		{"negative completion rate", baselineParams(), models.ModelPricing{PromptCost: 0.03, CompletionCost: -0.06}, "completion_cost_per_1k"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeCost(tt.params, tt.pricing)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))

			var inErr *InputError
			require.True(t, errors.As(err, &inErr))
			assert.Equal(t, tt.field, inErr.Field)
		})
	}
}

func TestComputeCostFreePricing(t *testing.T) {
	b, err := ComputeCost(baselineParams(), models.ModelPricing{})
	require.NoError(t, err)
	assert.Zero(t, b.TotalCost)
	assert.InDelta(t, 9_000_000, b.InputTokens, 1e-6)
}

func TestComputeCostOverflow(t *testing.T) {
	params := models.UsageParams{DailyRequests: 1e200, PromptTokens: 1e200, CompletionTokens: 1, Days: 30}
	_, err := ComputeCost(params, gpt4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	var inErr *InputError
	require.True(t, errors.As(err, &inErr))
	assert.Equal(t, "input_tokens", inErr.Field)

	// Tokens that fit but a rate that pushes the cost past float64.
	_, err = ComputeCost(baselineParams(), models.ModelPricing{PromptCost: math.MaxFloat64})
	require.Error(t, err)
	require.True(t, errors.As(err, &inErr))
	assert.Equal(t, "total_cost", inErr.Field)
}
