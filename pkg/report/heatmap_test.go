package report

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pario-ai/costplan/pkg/estimator"
	"github.com/pario-ai/costplan/pkg/models"
)

func referenceSweep(t *testing.T) []models.SweepRow {
	t.Helper()
	rows, err := estimator.SweepRanges(
		models.Range{Start: 500, Stop: 2000, Step: 500},
		models.Range{Start: 100, Stop: 500, Step: 100},
		models.Range{Start: 200, Stop: 800, Step: 100},
		30, gpt4,
	)
	require.NoError(t, err)
	return rows
}

func TestPivot(t *testing.T) {
	h, err := Pivot(referenceSweep(t), 1000)
	require.NoError(t, err)

	assert.Equal(t, []float64{100, 200, 300, 400, 500}, h.PromptTokens)
	assert.Equal(t, []float64{200, 300, 400, 500, 600, 700, 800}, h.CompletionTokens)
	require.Len(t, h.Cost, 5)
	require.Len(t, h.Cost[0], 7)

	// prompt 300, completion 500 at 1000/day is the baseline projection.
	assert.InDelta(t, 1170.0, h.Cost[2][3], 1e-9)
	// 100*1000*30/1000*0.03 + 200*1000*30/1000*0.06
	assert.InDelta(t, 450.0, h.Cost[0][0], 1e-9)
	assert.InDelta(t, h.Cost[0][0], h.Min(), 1e-9)
	assert.InDelta(t, h.Cost[4][6], h.Max(), 1e-9)
}

func TestPivotMissingValue(t *testing.T) {
	_, err := Pivot(referenceSweep(t), 1234)
	assert.True(t, errors.Is(err, ErrNoRows))
}

func TestPivotIrregularRows(t *testing.T) {
	rows := []models.SweepRow{
		{DailyRequests: 10, PromptTokens: 1, CompletionTokens: 1, TotalCost: 1},
		{DailyRequests: 10, PromptTokens: 2, CompletionTokens: 2, TotalCost: 4},
	}
	h, err := Pivot(rows, 10)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(h.Cost[0][1]))
	assert.True(t, math.IsNaN(h.Cost[1][0]))

	out := RenderHeatmap(h, HeatmapOptions{})
	assert.Contains(t, out, "-")
}

func TestRenderHeatmapPlain(t *testing.T) {
	h, err := Pivot(referenceSweep(t), 1000)
	require.NoError(t, err)

	out := RenderHeatmap(h, HeatmapOptions{Ceiling: 1000})
	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[0], "1,000 daily requests")
	assert.Contains(t, out, "$1,170.00*")
	assert.Contains(t, out, "$450.00 ")
	assert.NotContains(t, out, "$450.00*")
	assert.Contains(t, out, "range $450.00 to")
	assert.Contains(t, out, "* exceeds $1,000.00")
	assert.NotContains(t, out, "\x1b[")
}

func TestRenderHeatmapColor(t *testing.T) {
	h, err := Pivot(referenceSweep(t), 500)
	require.NoError(t, err)

	out := RenderHeatmap(h, HeatmapOptions{Color: true})
	assert.Contains(t, out, "$225.00")
}

func TestHeatColor(t *testing.T) {
	assert.Equal(t, "#1a9850", string(heatColor(0)))
	assert.Equal(t, "#fee08b", string(heatColor(0.5)))
	assert.Equal(t, "#d73027", string(heatColor(1)))
	assert.Equal(t, "#d73027", string(heatColor(7)))
}
