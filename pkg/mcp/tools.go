package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/pario-ai/costplan/pkg/estimator"
	"github.com/pario-ai/costplan/pkg/models"
	"github.com/pario-ai/costplan/pkg/report"
	"github.com/pario-ai/costplan/pkg/usage"
)

// toolHandler handles one tools/call.
type toolHandler func(ctx context.Context, s *Server, args json.RawMessage) ToolCallResult

var toolHandlers = map[string]toolHandler{
	"costplan_estimate":  handleEstimate,
	"costplan_reduction": handleReduction,
	"costplan_sweep":     handleSweep,
	"costplan_heatmap":   handleHeatmap,
	"costplan_baseline":  handleBaseline,
}

func number(desc string) map[string]any {
	return map[string]any{"type": "number", "minimum": 0, "description": desc}
}

func rangeSchema(desc string) map[string]any {
	return map[string]any{
		"type":        "object",
		"description": desc,
		"properties": map[string]any{
			"start": number("First value"),
			"stop":  number("Last value (inclusive)"),
			"step":  map[string]any{"type": "number", "exclusiveMinimum": 0, "description": "Increment"},
		},
		"required": []string{"start", "stop", "step"},
	}
}

// usageProperties are shared by every projection tool.
func usageProperties() map[string]any {
	return map[string]any{
		"daily_requests":         number("Requests per day (default from config)"),
		"prompt_tokens":          number("Average prompt tokens per request"),
		"completion_tokens":      number("Average completion tokens per request"),
		"days":                   map[string]any{"type": "integer", "minimum": 1, "description": "Billing period in days"},
		"prompt_cost_per_1k":     number("USD per 1,000 prompt tokens"),
		"completion_cost_per_1k": number("USD per 1,000 completion tokens"),
	}
}

func withProperties(base map[string]any, extra map[string]any) map[string]any {
	for k, v := range extra {
		base[k] = v
	}
	return map[string]any{"type": "object", "properties": base}
}

var allTools = []ToolDefinition{
	{
		Name:        "costplan_estimate",
		Description: "Project input, output and total API cost over a billing period. Omitted arguments use the configured baseline.",
		InputSchema: withProperties(usageProperties(), nil),
	},
	{
		Name:        "costplan_reduction",
		Description: "Compare baseline cost with cost after scaling prompt and completion tokens by a retained fraction (e.g. 0.7 for a 30% cut).",
		InputSchema: withProperties(usageProperties(), map[string]any{
			"factor": map[string]any{"type": "number", "minimum": 0, "maximum": 1, "description": "Fraction of tokens retained"},
		}),
	},
	{
		Name:        "costplan_sweep",
		Description: "Tabulate total cost over every combination of daily requests, prompt tokens and completion tokens.",
		InputSchema: withProperties(map[string]any{
			"days":                   map[string]any{"type": "integer", "minimum": 1, "description": "Billing period in days"},
			"prompt_cost_per_1k":     number("USD per 1,000 prompt tokens"),
			"completion_cost_per_1k": number("USD per 1,000 completion tokens"),
		}, map[string]any{
			"daily_requests_range":    rangeSchema("Daily request range"),
			"prompt_tokens_range":     rangeSchema("Prompt token range"),
			"completion_tokens_range": rangeSchema("Completion token range"),
		}),
	},
	{
		Name:        "costplan_heatmap",
		Description: "Render total cost as a prompt-by-completion token grid at one daily request count.",
		InputSchema: withProperties(map[string]any{
			"daily_requests":         number("Daily request count to slice at (default: baseline)"),
			"days":                   map[string]any{"type": "integer", "minimum": 1, "description": "Billing period in days"},
			"prompt_cost_per_1k":     number("USD per 1,000 prompt tokens"),
			"completion_cost_per_1k": number("USD per 1,000 completion tokens"),
		}, map[string]any{
			"prompt_tokens_range":     rangeSchema("Prompt token range"),
			"completion_tokens_range": rangeSchema("Completion token range"),
		}),
	},
	{
		Name:        "costplan_baseline",
		Description: "Derive daily requests and per-request tokens from recorded pario usage and project cost from them.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"api_key": map[string]any{"type": "string", "description": "Filter by API key (optional)"},
				"model":   map[string]any{"type": "string", "description": "Filter by model (optional)"},
				"since":   map[string]any{"type": "string", "description": "Start date in YYYY-MM-DD format (optional)"},
				"days":    map[string]any{"type": "integer", "minimum": 1, "description": "Projection period in days"},
			},
		},
	},
}

func textResult(text string) ToolCallResult {
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
	}
}

func errorResult(text string) ToolCallResult {
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
		IsError: true,
	}
}

func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// projectionArgs are optional overrides of the configured baseline.
type projectionArgs struct {
	DailyRequests    *float64 `json:"daily_requests"`
	PromptTokens     *float64 `json:"prompt_tokens"`
	CompletionTokens *float64 `json:"completion_tokens"`
	Days             *int     `json:"days"`
	PromptCost       *float64 `json:"prompt_cost_per_1k"`
	CompletionCost   *float64 `json:"completion_cost_per_1k"`
}

func (a projectionArgs) resolve(s *Server) (models.UsageParams, models.ModelPricing) {
	params := s.cfg.Baseline
	pricing := s.cfg.Pricing
	setFloat(&params.DailyRequests, a.DailyRequests)
	setFloat(&params.PromptTokens, a.PromptTokens)
	setFloat(&params.CompletionTokens, a.CompletionTokens)
	if a.Days != nil {
		params.Days = *a.Days
	}
	setFloat(&pricing.PromptCost, a.PromptCost)
	setFloat(&pricing.CompletionCost, a.CompletionCost)
	return params, pricing
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func handleEstimate(_ context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args projectionArgs
	if err := decodeArgs(rawArgs, &args); err != nil {
		return errorResult("Invalid arguments: " + err.Error())
	}
	params, pricing := args.resolve(s)
	b, err := estimator.ComputeCost(params, pricing)
	if err != nil {
		return errorResult("Error computing cost: " + err.Error())
	}
	return textResult(report.FormatBreakdown(pricing, params, b))
}

type reductionArgs struct {
	projectionArgs
	Factor *float64 `json:"factor"`
}

func handleReduction(_ context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args reductionArgs
	if err := decodeArgs(rawArgs, &args); err != nil {
		return errorResult("Invalid arguments: " + err.Error())
	}
	params, pricing := args.resolve(s)
	factor := s.cfg.Reduction.Factor
	setFloat(&factor, args.Factor)

	savings, err := estimator.CompareReduction(params, factor, pricing)
	if err != nil {
		return errorResult("Error computing reduction: " + err.Error())
	}
	return textResult(report.FormatSavings(savings))
}

type sweepArgs struct {
	projectionArgs
	DailyRequestsRange    *models.Range `json:"daily_requests_range"`
	PromptTokensRange     *models.Range `json:"prompt_tokens_range"`
	CompletionTokensRange *models.Range `json:"completion_tokens_range"`
}

func (a sweepArgs) ranges(s *Server) (req, prompt, completion models.Range) {
	req, prompt, completion = s.cfg.Sweep.DailyRequests, s.cfg.Sweep.PromptTokens, s.cfg.Sweep.CompletionTokens
	if a.DailyRequestsRange != nil {
		req = *a.DailyRequestsRange
	}
	if a.PromptTokensRange != nil {
		prompt = *a.PromptTokensRange
	}
	if a.CompletionTokensRange != nil {
		completion = *a.CompletionTokensRange
	}
	return req, prompt, completion
}

func handleSweep(_ context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args sweepArgs
	if err := decodeArgs(rawArgs, &args); err != nil {
		return errorResult("Invalid arguments: " + err.Error())
	}
	params, pricing := args.resolve(s)
	req, prompt, completion := args.ranges(s)

	rows, err := estimator.SweepRanges(req, prompt, completion, params.Days, pricing)
	if err != nil {
		return errorResult("Error running sweep: " + err.Error())
	}
	return textResult(report.FormatSweep(rows))
}

func handleHeatmap(_ context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args sweepArgs
	if err := decodeArgs(rawArgs, &args); err != nil {
		return errorResult("Invalid arguments: " + err.Error())
	}
	params, pricing := args.resolve(s)
	slice := s.cfg.HeatmapRequests()
	setFloat(&slice, args.DailyRequests)
	_, prompt, completion := args.ranges(s)

	rows, err := estimator.SweepRanges(models.Range{Start: slice, Stop: slice, Step: 1}, prompt, completion, params.Days, pricing)
	if err != nil {
		return errorResult("Error running sweep: " + err.Error())
	}
	h, err := report.Pivot(rows, slice)
	if err != nil {
		return errorResult("Error building heatmap: " + err.Error())
	}
	return textResult(report.RenderHeatmap(h, report.HeatmapOptions{}))
}

type baselineArgs struct {
	APIKey string `json:"api_key"`
	Model  string `json:"model"`
	Since  string `json:"since"`
	Days   *int   `json:"days"`
}

func handleBaseline(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	if s.usage == nil {
		return textResult("Usage history is not configured.")
	}
	var args baselineArgs
	if err := decodeArgs(rawArgs, &args); err != nil {
		return errorResult("Invalid arguments: " + err.Error())
	}

	f := usage.Filter{APIKey: args.APIKey, Model: args.Model}
	if args.Since != "" {
		t, err := time.Parse("2006-01-02", args.Since)
		if err != nil {
			return errorResult("Invalid since date (use YYYY-MM-DD): " + err.Error())
		}
		f.Since = t
	}

	b, err := s.usage.Baseline(ctx, f)
	if errors.Is(err, usage.ErrNoUsage) {
		return textResult("No recorded usage matches the filter.")
	}
	if err != nil {
		return errorResult("Error reading usage: " + err.Error())
	}

	days := s.cfg.Baseline.Days
	if args.Days != nil {
		days = *args.Days
	}
	params := b.Params(days)
	breakdown, err := estimator.ComputeCost(params, s.cfg.Pricing)
	if err != nil {
		return errorResult("Error computing cost: " + err.Error())
	}

	var sb strings.Builder
	sb.WriteString(report.FormatBaseline(b))
	sb.WriteString("\n")
	sb.WriteString(report.FormatBreakdown(s.cfg.Pricing, params, breakdown))
	return textResult(sb.String())
}
