package sdk

import (
	"context"
	"strings"
	"testing"

	"greensentry/estimator"
	"greensentry/tools"
)

type fixedProbe struct {
	sample estimator.LocalAuditSample
}

func (f fixedProbe) Sample(ctx context.Context) (estimator.LocalAuditSample, error) {
	return f.sample, nil
}

func metricsTool() tools.Tool {
	return tools.NewGreenMetricsTool(fixedProbe{
		sample: estimator.LocalAuditSample{CPUPercent: 10, RAMPercent: 30},
	})
}

func TestToolRunner_Execute(t *testing.T) {
	runner := NewToolRunner()
	runner.Register(metricsTool())

	result, err := runner.Execute(context.Background(), "get_green_metrics", `{}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result, "Local Hardware Audit") {
		t.Errorf("expected audit report, got %q", result)
	}
	if len(runner.GetCalls()) != 1 {
		t.Errorf("expected 1 call, got %d", len(runner.GetCalls()))
	}
}

func TestToolRunner_ExecuteUnknownTool(t *testing.T) {
	runner := NewToolRunner()

	_, err := runner.Execute(context.Background(), "unknown_tool", `{}`)
	if err == nil {
		t.Error("expected error for unknown tool")
	}
}

func TestMockProvider_QueueAndChat(t *testing.T) {
	ctx := context.Background()
	mock := NewMockProvider()

	mock.QueueTextResponse("Hello!")
	mock.QueueTextResponse("How can I help?")

	resp1, err := mock.Chat(ctx, "", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp1.Content != "Hello!" {
		t.Errorf("expected 'Hello!', got '%s'", resp1.Content)
	}

	resp2, err := mock.Chat(ctx, "", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.Content != "How can I help?" {
		t.Errorf("expected 'How can I help?', got '%s'", resp2.Content)
	}
}

func TestMockProvider_StreamForwardsToolCalls(t *testing.T) {
	ctx := context.Background()
	mock := NewMockProvider()
	mock.QueueToolCall("get_green_metrics", nil)

	ch, err := mock.ChatStream(ctx, "", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sawToolCall := false
	for delta := range ch {
		if delta.ToolCall != nil && delta.ToolCall.Name == "get_green_metrics" {
			sawToolCall = true
		}
	}
	if !sawToolCall {
		t.Error("expected stream to forward the tool call")
	}
}

func TestHarness_ToolLoop(t *testing.T) {
	ctx := context.Background()
	harness := NewHarness().
		WithTool(metricsTool()).
		QueueToolCallWithFollowup("get_green_metrics", nil,
			"Your machine draws 10.50W right now. Consider enabling CPU frequency scaling.")

	harness.SendUserMessage("What's my carbon footprint?")
	if err := harness.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !harness.ToolWasCalled("get_green_metrics") {
		t.Error("expected the metrics tool to be called")
	}

	result, ok := harness.GetToolResult("get_green_metrics")
	if !ok {
		t.Fatal("expected a tool result")
	}
	if !strings.Contains(result, "Estimated Power Draw: 10.50W") {
		t.Errorf("unexpected tool result:\n%s", result)
	}

	if got := harness.LastAssistantMessage(); !strings.Contains(got, "10.50W") {
		t.Errorf("unexpected final answer: %q", got)
	}
}

func TestHarness_UnknownToolBecomesErrorResult(t *testing.T) {
	ctx := context.Background()
	harness := NewHarness().
		QueueToolCallWithFollowup("does_not_exist", nil, "Sorry, I can't do that.")

	harness.SendUserMessage("audit something")
	if err := harness.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, ok := harness.GetToolResult("does_not_exist")
	if !ok {
		t.Fatal("expected an error tool result")
	}
	if !strings.Contains(result, "not found") {
		t.Errorf("unexpected result: %q", result)
	}
}
