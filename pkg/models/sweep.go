package models

import "math"

// Range is a stop-inclusive linear range, e.g. 500 to 2000 step 500.
type Range struct {
	Start float64 `json:"start" yaml:"start" validate:"gte=0"`
	Stop  float64 `json:"stop" yaml:"stop" validate:"gte=0"`
	Step  float64 `json:"step" yaml:"step" validate:"gt=0"`
}

// rangeEpsilon absorbs float drift so that Stop is included when it lies on
// the step grid.
const rangeEpsilon = 1e-9

// MaxRangeValues caps how many values a single range may expand to.
const MaxRangeValues = 100_000

// Count returns the number of values in the range as a float so that
// oversized ranges can be detected before conversion. A non-positive step,
// an unbounded bound or a Stop below Start yields zero. A range whose count
// cannot be represented yields +Inf.
func (r Range) Count() float64 {
	if !(r.Step > 0) || !(r.Stop >= r.Start) || math.IsInf(r.Start, 0) || math.IsInf(r.Stop, 0) {
		return 0
	}
	n := math.Floor((r.Stop-r.Start)/r.Step+rangeEpsilon) + 1
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return math.Inf(1)
	}
	return n
}

// Len returns the number of values in the range, or zero when Count exceeds
// MaxRangeValues.
func (r Range) Len() int {
	n := r.Count()
	if n > MaxRangeValues {
		return 0
	}
	return int(n)
}

// Values expands the range. Each value is computed as Start + i*Step rather
// than by accumulation. Ranges over MaxRangeValues expand to nothing.
func (r Range) Values() []float64 {
	n := r.Len()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = r.Start + float64(i)*r.Step
	}
	return out
}

// SweepRow is one combination of a parameter sweep and its total cost.
type SweepRow struct {
	DailyRequests    float64 `json:"daily_requests"`
	PromptTokens     float64 `json:"prompt_tokens"`
	CompletionTokens float64 `json:"completion_tokens"`
	TotalCost        float64 `json:"total_cost"`
}
