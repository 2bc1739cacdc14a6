package report

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pario-ai/costplan/pkg/models"
)

// ErrNoRows is returned by Pivot when no sweep row matches the requested
// daily request count.
var ErrNoRows = errors.New("no sweep rows for daily request count")

// Heatmap is total cost for one daily request count, with prompt tokens on
// the Y axis and completion tokens on the X axis.
type Heatmap struct {
	DailyRequests    float64     `json:"daily_requests"`
	PromptTokens     []float64   `json:"prompt_tokens"`
	CompletionTokens []float64   `json:"completion_tokens"`
	Cost             [][]float64 `json:"cost"`
}

// Min and Max return the cheapest and most expensive populated cells.
func (h Heatmap) Min() float64 { return h.extreme(math.Min, math.Inf(1)) }
func (h Heatmap) Max() float64 { return h.extreme(math.Max, math.Inf(-1)) }

func (h Heatmap) extreme(pick func(a, b float64) float64, start float64) float64 {
	v := start
	for _, row := range h.Cost {
		for _, c := range row {
			if !math.IsNaN(c) {
				v = pick(v, c)
			}
		}
	}
	return v
}

// Pivot filters sweep rows to one daily request count and arranges them as a
// grid. Axis values keep first-seen order. Cells with no row are NaN.
func Pivot(rows []models.SweepRow, dailyRequests float64) (Heatmap, error) {
	h := Heatmap{DailyRequests: dailyRequests}
	promptIdx := map[float64]int{}
	completionIdx := map[float64]int{}

	var matched []models.SweepRow
	for _, r := range rows {
		if !sameValue(r.DailyRequests, dailyRequests) {
			continue
		}
		matched = append(matched, r)
		if _, ok := promptIdx[r.PromptTokens]; !ok {
			promptIdx[r.PromptTokens] = len(h.PromptTokens)
			h.PromptTokens = append(h.PromptTokens, r.PromptTokens)
		}
		if _, ok := completionIdx[r.CompletionTokens]; !ok {
			completionIdx[r.CompletionTokens] = len(h.CompletionTokens)
			h.CompletionTokens = append(h.CompletionTokens, r.CompletionTokens)
		}
	}
	if len(matched) == 0 {
		return Heatmap{}, fmt.Errorf("%w %v", ErrNoRows, dailyRequests)
	}

	h.Cost = make([][]float64, len(h.PromptTokens))
	for i := range h.Cost {
		h.Cost[i] = make([]float64, len(h.CompletionTokens))
		for j := range h.Cost[i] {
			h.Cost[i][j] = math.NaN()
		}
	}
	for _, r := range matched {
		h.Cost[promptIdx[r.PromptTokens]][completionIdx[r.CompletionTokens]] = r.TotalCost
	}
	return h, nil
}

func sameValue(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(b))
}

// HeatmapOptions controls heatmap rendering.
type HeatmapOptions struct {
	// Color shades cells from green (cheapest) to red (most expensive).
	Color bool
	// Ceiling marks cells whose cost exceeds it with '*'. Zero disables.
	Ceiling float64
}

const cellWidth = 12

// RenderHeatmap draws h as a text grid.
func RenderHeatmap(h Heatmap, opts HeatmapOptions) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Total cost at %s daily requests (rows: prompt tokens, columns: completion tokens)\n\n",
		Quantity(h.DailyRequests))

	fmt.Fprintf(&sb, "%10s |", "prompt")
	for _, c := range h.CompletionTokens {
		fmt.Fprintf(&sb, " %*s", cellWidth, Quantity(c))
	}
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 11) + "+" + strings.Repeat("-", (cellWidth+1)*len(h.CompletionTokens)) + "\n")

	lo, hi := h.Min(), h.Max()
	for i, p := range h.PromptTokens {
		fmt.Fprintf(&sb, "%10s |", Quantity(p))
		for _, cost := range h.Cost[i] {
			sb.WriteString(" ")
			sb.WriteString(renderCell(cost, lo, hi, opts))
		}
		sb.WriteString("\n")
	}

	if !math.IsInf(lo, 0) {
		fmt.Fprintf(&sb, "\nrange %s to %s", Currency(lo), Currency(hi))
		if opts.Ceiling > 0 {
			fmt.Fprintf(&sb, "; * exceeds %s", Currency(opts.Ceiling))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderCell(cost, lo, hi float64, opts HeatmapOptions) string {
	if math.IsNaN(cost) {
		return fmt.Sprintf("%*s", cellWidth, "-")
	}
	text := Currency(cost)
	if opts.Ceiling > 0 && cost > opts.Ceiling {
		text += "*"
	}
	if !opts.Color {
		return fmt.Sprintf("%*s", cellWidth, text)
	}
	frac := 0.0
	if hi > lo {
		frac = (cost - lo) / (hi - lo)
	}
	return lipgloss.NewStyle().
		Width(cellWidth).
		Align(lipgloss.Right).
		Foreground(lipgloss.Color("#000000")).
		Background(heatColor(frac)).
		Render(text)
}

// heatColor interpolates green, yellow and red stops for frac in [0, 1].
func heatColor(frac float64) lipgloss.Color {
	type rgb struct{ r, g, b float64 }
	stops := []rgb{{0x1a, 0x98, 0x50}, {0xfe, 0xe0, 0x8b}, {0xd7, 0x30, 0x27}}

	frac = math.Max(0, math.Min(1, frac))
	pos := frac * float64(len(stops)-1)
	i := int(pos)
	if i >= len(stops)-1 {
		i = len(stops) - 2
	}
	t := pos - float64(i)
	a, b := stops[i], stops[i+1]
	mix := func(x, y float64) int { return int(math.Round(x + (y-x)*t)) }
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", mix(a.r, b.r), mix(a.g, b.g), mix(a.b, b.b)))
}
