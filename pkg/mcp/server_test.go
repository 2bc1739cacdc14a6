package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pario-ai/costplan/pkg/config"
	"github.com/pario-ai/costplan/pkg/models"
	"github.com/pario-ai/costplan/pkg/usage"
)

// fakeSource implements usage.Source for testing.
type fakeSource struct {
	baseline models.UsageBaseline
	err      error
	got      usage.Filter
}

func (f *fakeSource) Baseline(_ context.Context, filter usage.Filter) (models.UsageBaseline, error) {
	f.got = filter
	return f.baseline, f.err
}
func (f *fakeSource) Close() error { return nil }

func newTestServer(src usage.Source) *Server {
	return New(config.Default(), src, nil, "test")
}

func sendAndReceive(t *testing.T, srv *Server, req Request) Response {
	t.Helper()
	line, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	line = append(line, '\n')

	var out bytes.Buffer
	if err := srv.Run(context.Background(), bytes.NewReader(line), &out); err != nil {
		t.Fatal(err)
	}

	var resp Response
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v\nraw: %s", err, out.String())
	}
	return resp
}

func callTool(t *testing.T, srv *Server, name, args string) ToolCallResult {
	t.Helper()
	params, _ := json.Marshal(ToolCallParams{Name: name, Arguments: json.RawMessage(args)})
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`1`),
		Method:  "tools/call",
		Params:  params,
	})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}

	data, _ := json.Marshal(resp.Result)
	var result ToolCallResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Content) == 0 {
		t.Fatal("expected content")
	}
	return result
}

func TestInitialize(t *testing.T) {
	resp := sendAndReceive(t, newTestServer(nil), Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`1`),
		Method:  "initialize",
	})

	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}

	data, _ := json.Marshal(resp.Result)
	var result InitializeResult
	_ = json.Unmarshal(data, &result)

	if result.ProtocolVersion != "2024-11-05" {
		t.Errorf("protocol version = %s, want 2024-11-05", result.ProtocolVersion)
	}
	if result.ServerInfo.Name != "costplan" {
		t.Errorf("server name = %s, want costplan", result.ServerInfo.Name)
	}
}

func TestToolsList(t *testing.T) {
	resp := sendAndReceive(t, newTestServer(nil), Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`2`),
		Method:  "tools/list",
	})

	data, _ := json.Marshal(resp.Result)
	var result ToolsListResult
	_ = json.Unmarshal(data, &result)

	if len(result.Tools) != len(toolHandlers) {
		t.Errorf("got %d tools, want %d", len(result.Tools), len(toolHandlers))
	}
	for _, tool := range result.Tools {
		if _, ok := toolHandlers[tool.Name]; !ok {
			t.Errorf("listed tool %s has no handler", tool.Name)
		}
	}
}

func TestToolCallEstimateDefaults(t *testing.T) {
	result := callTool(t, newTestServer(nil), "costplan_estimate", `{}`)
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", result.Content[0].Text)
	}
	if !strings.Contains(result.Content[0].Text, "$1,170.00") {
		t.Errorf("expected $1,170.00 in output, got: %s", result.Content[0].Text)
	}
}

func TestToolCallEstimateOverrides(t *testing.T) {
	result := callTool(t, newTestServer(nil), "costplan_estimate", `{"daily_requests":2000}`)
	if !strings.Contains(result.Content[0].Text, "$2,340.00") {
		t.Errorf("expected doubled cost, got: %s", result.Content[0].Text)
	}
}

func TestToolCallEstimateInvalid(t *testing.T) {
	srv := newTestServer(nil)

	result := callTool(t, srv, "costplan_estimate", `{"daily_requests":-1}`)
	if !result.IsError || !strings.Contains(result.Content[0].Text, "invalid input") {
		t.Errorf("expected invalid input error, got: %+v", result)
	}

	result = callTool(t, srv, "costplan_estimate", `{"days":30.5}`)
	if !result.IsError {
		t.Error("expected error for fractional days")
	}
}

func TestToolCallReduction(t *testing.T) {
	result := callTool(t, newTestServer(nil), "costplan_reduction", `{}`)
	text := result.Content[0].Text
	if !strings.Contains(text, "$819.00") || !strings.Contains(text, "30.00%") {
		t.Errorf("unexpected reduction output: %s", text)
	}
}

func TestToolCallReductionZeroBaseline(t *testing.T) {
	result := callTool(t, newTestServer(nil), "costplan_reduction", `{"daily_requests":0}`)
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", result.Content[0].Text)
	}
	if !strings.Contains(result.Content[0].Text, "n/a") {
		t.Errorf("expected n/a percentage, got: %s", result.Content[0].Text)
	}
}

func TestToolCallSweep(t *testing.T) {
	result := callTool(t, newTestServer(nil), "costplan_sweep", `{
		"daily_requests_range": {"start": 500, "stop": 1000, "step": 500},
		"prompt_tokens_range": {"start": 100, "stop": 200, "step": 100},
		"completion_tokens_range": {"start": 200, "stop": 300, "step": 100}
	}`)
	text := result.Content[0].Text
	if !strings.Contains(text, "8 combinations") || !strings.Contains(text, "$225.00") {
		t.Errorf("unexpected sweep output: %s", text)
	}
}

func TestToolCallHeatmap(t *testing.T) {
	result := callTool(t, newTestServer(nil), "costplan_heatmap", `{}`)
	text := result.Content[0].Text
	if !strings.Contains(text, "1,000 daily requests") || !strings.Contains(text, "$1,170.00") {
		t.Errorf("unexpected heatmap output: %s", text)
	}
}

func TestToolCallBaselineNotConfigured(t *testing.T) {
	result := callTool(t, newTestServer(nil), "costplan_baseline", `{}`)
	if !strings.Contains(result.Content[0].Text, "not configured") {
		t.Errorf("expected 'not configured', got: %s", result.Content[0].Text)
	}
}

func TestToolCallBaseline(t *testing.T) {
	src := &fakeSource{baseline: models.UsageBaseline{
		Requests:            30000,
		ActiveDays:          30,
		FirstSeen:           time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		LastSeen:            time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
		AvgDailyRequests:    1000,
		AvgPromptTokens:     300,
		AvgCompletionTokens: 500,
	}}
	result := callTool(t, newTestServer(src), "costplan_baseline", `{"model":"gpt-4","since":"2026-09-01"}`)
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", result.Content[0].Text)
	}
	if !strings.Contains(result.Content[0].Text, "$1,170.00") {
		t.Errorf("expected projected cost, got: %s", result.Content[0].Text)
	}
	if src.got.Model != "gpt-4" || src.got.Since.Day() != 1 {
		t.Errorf("filter not passed through: %+v", src.got)
	}
}

func TestToolCallBaselineNoUsage(t *testing.T) {
	src := &fakeSource{err: usage.ErrNoUsage}
	result := callTool(t, newTestServer(src), "costplan_baseline", `{}`)
	if !strings.Contains(result.Content[0].Text, "No recorded usage") {
		t.Errorf("unexpected output: %s", result.Content[0].Text)
	}
}

func TestToolCallBaselineBadDate(t *testing.T) {
	result := callTool(t, newTestServer(&fakeSource{}), "costplan_baseline", `{"since":"last week"}`)
	if !result.IsError {
		t.Error("expected isError=true for bad since date")
	}
}

func TestUnknownTool(t *testing.T) {
	result := callTool(t, newTestServer(nil), "costplan_nope", `{}`)
	if !result.IsError {
		t.Error("expected isError=true for unknown tool")
	}
}

func TestNotificationNoResponse(t *testing.T) {
	line, _ := json.Marshal(Request{
		JSONRPC: "2.0",
		Method:  "notifications/initialized",
	})
	line = append(line, '\n')

	var out bytes.Buffer
	_ = newTestServer(nil).Run(context.Background(), bytes.NewReader(line), &out)

	if out.Len() != 0 {
		t.Errorf("expected no output for notification, got: %s", out.String())
	}
}

func TestUnknownMethod(t *testing.T) {
	resp := sendAndReceive(t, newTestServer(nil), Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`9`),
		Method:  "unknown/method",
	})

	if resp.Error == nil {
		t.Fatal("expected error for unknown method")
	}
	if resp.Error.Code != CodeMethodNotFound {
		t.Errorf("error code = %d, want %d", resp.Error.Code, CodeMethodNotFound)
	}
}

func TestParseError(t *testing.T) {
	var out bytes.Buffer
	_ = newTestServer(nil).Run(context.Background(), strings.NewReader("{not json\n"), &out)

	var resp Response
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error == nil || resp.Error.Code != CodeParseError {
		t.Errorf("expected parse error, got %+v", resp)
	}
}

func TestToolCallSweepOversizedRange(t *testing.T) {
	result := callTool(t, newTestServer(nil), "costplan_sweep", `{
		"daily_requests_range": {"start": 0, "stop": 1e300, "step": 1e-300}
	}`)
	if !result.IsError {
		t.Fatalf("expected isError=true, got: %s", result.Content[0].Text)
	}
	if !strings.Contains(result.Content[0].Text, "too many values") {
		t.Errorf("unexpected error text: %s", result.Content[0].Text)
	}
}

func TestToolCallEstimateOverflow(t *testing.T) {
	result := callTool(t, newTestServer(nil), "costplan_estimate", `{"daily_requests":1e200,"prompt_tokens":1e200}`)
	if !result.IsError {
		t.Errorf("expected isError=true for overflowing projection, got: %s", result.Content[0].Text)
	}
}
