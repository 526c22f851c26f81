package agent

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/gridiron-ai/gridiron/internal/llm"
	"github.com/gridiron-ai/gridiron/internal/tools"
)

func TestRunReturnsAnswerWithoutTools(t *testing.T) {
	provider := newScriptProvider(
		step{resp: &llm.ChatResponse{Content: "Sit him this week.", FinishReason: llm.FinishStop, Model: "scripted-model"}},
	)
	reg, exec := testRegistry(t, echoTool{name: "web_search", out: "ok"})
	rec := &recordingExecutor{inner: exec}

	orch, err := New(Config{Provider: provider, Registry: reg, Executor: rec, Operation: "ask"})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	res, err := orch.Run(context.Background(), "Start or sit?")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.Content != "Sit him this week." {
		t.Fatalf("expected answer unchanged, got %q", res.Content)
	}
	if res.TurnsUsed != 1 {
		t.Fatalf("expected exactly one turn, got %d", res.TurnsUsed)
	}
	if res.ToolCallsUsed != 0 {
		t.Fatalf("expected zero tool calls, got %d", res.ToolCallsUsed)
	}
	if len(rec.dispatched) != 0 {
		t.Fatalf("expected no dispatches, got %d", len(rec.dispatched))
	}
	if provider.calls != 1 {
		t.Fatalf("expected 1 provider call, got %d", provider.calls)
	}
	if res.FinishReason != llm.FinishStop {
		t.Fatalf("expected stop finish, got %q", res.FinishReason)
	}
}

func TestRunDispatchesToolThenAnswers(t *testing.T) {
	provider := newScriptProvider(
		step{resp: &llm.ChatResponse{
			ToolCalls:    []llm.ToolCall{{ID: "call_1", Name: "web_search", Arguments: `{"query":"Justin Jefferson injury"}`}},
			FinishReason: llm.FinishToolUse,
			Usage:        llm.TokenUsage{InputTokens: 100, OutputTokens: 20, TotalTokens: 120},
		}},
		step{resp: &llm.ChatResponse{
			Content:      "He is questionable but expected to play.",
			FinishReason: llm.FinishStop,
			Usage:        llm.TokenUsage{InputTokens: 200, OutputTokens: 40, TotalTokens: 240},
		}},
	)
	reg, exec := testRegistry(t, echoTool{name: "web_search", out: "Questionable, limited practice Friday."})

	orch, err := New(Config{Provider: provider, Registry: reg, Executor: exec})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	res, err := orch.Run(context.Background(), "Is Jefferson playing?")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.Content != "He is questionable but expected to play." {
		t.Fatalf("unexpected answer: %q", res.Content)
	}
	if res.TurnsUsed != 2 || res.ToolCallsUsed != 1 {
		t.Fatalf("expected 2 turns and 1 tool call, got %d/%d", res.TurnsUsed, res.ToolCallsUsed)
	}
	if res.Usage.TotalTokens != 360 {
		t.Fatalf("expected accumulated usage 360, got %d", res.Usage.TotalTokens)
	}

	// The second request must carry the assistant tool request, the tool
	// result, and the wrap-up instruction, in that order.
	second := provider.requests[1].Messages
	if len(second) != 4 {
		t.Fatalf("expected 4 messages on second request, got %d", len(second))
	}
	if second[1].Role != llm.RoleAssistant || len(second[1].ToolCalls) != 1 {
		t.Fatalf("expected assistant tool request at index 1, got %+v", second[1])
	}
	if second[2].Role != llm.RoleTool || second[2].ToolCallID != "call_1" {
		t.Fatalf("expected tool result at index 2, got %+v", second[2])
	}
	if second[2].Content != "Questionable, limited practice Friday." {
		t.Fatalf("expected tool output in history, got %q", second[2].Content)
	}
	if second[3].Role != llm.RoleSystem || !strings.Contains(second[3].Content, "final answer") {
		t.Fatalf("expected wrap-up instruction at index 3, got %+v", second[3])
	}
}

func TestRunUnknownToolDoesNotConsumeBudget(t *testing.T) {
	provider := newScriptProvider(
		step{resp: &llm.ChatResponse{
			ToolCalls:    []llm.ToolCall{{ID: "call_1", Name: "lookup_weather", Arguments: `{}`}},
			FinishReason: llm.FinishToolUse,
		}},
		step{resp: &llm.ChatResponse{Content: "Answering without weather.", FinishReason: llm.FinishStop}},
	)
	reg, exec := testRegistry(t, echoTool{name: "web_search", out: "ok"})
	rec := &recordingExecutor{inner: exec}

	orch, err := New(Config{Provider: provider, Registry: reg, Executor: rec})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	res, err := orch.Run(context.Background(), "Check the weather.")
	if err != nil {
		t.Fatalf("expected run to continue past unknown tool, got %v", err)
	}

	if res.Content != "Answering without weather." {
		t.Fatalf("unexpected answer: %q", res.Content)
	}
	if res.ToolCallsUsed != 0 {
		t.Fatalf("expected unknown tool to cost nothing, got %d", res.ToolCallsUsed)
	}
	if len(rec.dispatched) != 0 {
		t.Fatalf("expected no dispatch for unknown tool, got %d", len(rec.dispatched))
	}

	var found bool
	for _, msg := range res.Messages {
		if msg.Role == llm.RoleTool && msg.ToolCallID == "call_1" && strings.Contains(msg.Content, "unknown tool lookup_weather") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected unknown tool result in history: %+v", res.Messages)
	}
}

func TestRunStopsAtTurnCeilingWithoutExtraProviderCall(t *testing.T) {
	toolCall := func(id string) step {
		return step{resp: &llm.ChatResponse{
			ToolCalls:    []llm.ToolCall{{ID: id, Name: "web_search", Arguments: `{"query":"news"}`}},
			FinishReason: llm.FinishToolUse,
		}}
	}
	// Only three scripted responses exist; a fourth provider call would
	// fail the run with "unexpected extra call".
	provider := newScriptProvider(toolCall("call_1"), toolCall("call_2"), toolCall("call_3"))
	reg, exec := testRegistry(t, echoTool{name: "web_search", out: "nothing new"})

	orch, err := New(Config{Provider: provider, Registry: reg, Executor: exec, TurnsMax: 3})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	res, err := orch.Run(context.Background(), "Keep searching.")

	var exceeded *BudgetExceededError
	if !errors.As(err, &exceeded) {
		t.Fatalf("expected BudgetExceededError, got %v", err)
	}
	if exceeded.What != "turns" || exceeded.Max != 3 {
		t.Fatalf("unexpected ceiling: %+v", exceeded)
	}
	if res == nil {
		t.Fatalf("expected best-effort result alongside the error")
	}
	if res.TurnsUsed != 3 {
		t.Fatalf("expected 3 turns used, got %d", res.TurnsUsed)
	}
	if provider.calls != 3 {
		t.Fatalf("expected exactly 3 provider calls, got %d", provider.calls)
	}
	if res.Content != turnLimitNotice {
		t.Fatalf("expected turn limit notice, got %q", res.Content)
	}
	if res.ToolCallsUsed > 3 {
		t.Fatalf("tool calls exceeded requests: %d", res.ToolCallsUsed)
	}
}

func TestRunRecoversFromTransientProviderFailures(t *testing.T) {
	flaky := &flakyProvider{
		failures: 2,
		response: &llm.ChatResponse{
			Content:      "Finally through.",
			FinishReason: llm.FinishStop,
			Usage:        llm.TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
		},
	}
	retrying := llm.NewRetryer(flaky, llm.RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	})

	orch, err := New(Config{Provider: retrying})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	res, err := orch.Run(context.Background(), "hello")
	if err != nil {
		t.Fatalf("expected retries to absorb failures, got %v", err)
	}

	if flaky.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", flaky.calls)
	}
	if res.TurnsUsed != 1 {
		t.Fatalf("expected one logical turn, got %d", res.TurnsUsed)
	}
	if res.Usage.TotalTokens != 15 {
		t.Fatalf("expected usage from the successful call only, got %d", res.Usage.TotalTokens)
	}
	if res.Content != "Finally through." {
		t.Fatalf("unexpected answer: %q", res.Content)
	}
}

func TestRunToolBudgetExhaustionForcesToolFreeTurn(t *testing.T) {
	provider := newScriptProvider(
		step{resp: &llm.ChatResponse{
			ToolCalls: []llm.ToolCall{
				{ID: "call_1", Name: "web_search", Arguments: `{"query":"rb rankings"}`},
				{ID: "call_2", Name: "web_search", Arguments: `{"query":"wr rankings"}`},
			},
			FinishReason: llm.FinishToolUse,
		}},
		step{resp: &llm.ChatResponse{Content: "Best lineup set.", FinishReason: llm.FinishStop}},
	)
	reg, exec := testRegistry(t, echoTool{name: "web_search", out: "rankings text"})
	rec := &recordingExecutor{inner: exec}

	orch, err := New(Config{Provider: provider, Registry: reg, Executor: rec, ToolCallsMax: 1})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	res, err := orch.Run(context.Background(), "Set my lineup.")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.ToolCallsUsed != 1 {
		t.Fatalf("expected tool budget capped at 1, got %d", res.ToolCallsUsed)
	}
	if len(rec.dispatched) != 1 || rec.dispatched[0].ID != "call_1" {
		t.Fatalf("expected only the first call dispatched, got %+v", rec.dispatched)
	}

	var refused, noMore bool
	for _, msg := range res.Messages {
		if msg.Role == llm.RoleTool && msg.ToolCallID == "call_2" && strings.Contains(msg.Content, "tool call not executed") {
			refused = true
		}
		if msg.Role == llm.RoleSystem && strings.Contains(msg.Content, "No further tool use") {
			noMore = true
		}
	}
	if !refused {
		t.Fatalf("expected refused result for second call: %+v", res.Messages)
	}
	if !noMore {
		t.Fatalf("expected no-more-tools instruction in history")
	}
	if offered := provider.requests[1].Tools; len(offered) != 0 {
		t.Fatalf("expected tool-free follow-up request, got %d tools", len(offered))
	}
	if res.Content != "Best lineup set." {
		t.Fatalf("unexpected answer: %q", res.Content)
	}
}

func TestRunFallsBackWithoutToolsWhenProviderFails(t *testing.T) {
	provider := newScriptProvider(
		step{err: &llm.ProviderError{Provider: "scripted", StatusCode: 401, Kind: llm.KindAuth, Message: "tools rejected"}},
		step{resp: &llm.ChatResponse{Content: "Answer without tools.", FinishReason: llm.FinishStop}},
	)
	reg, exec := testRegistry(t, echoTool{name: "web_search", out: "ok"})

	orch, err := New(Config{Provider: provider, Registry: reg, Executor: exec})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	res, err := orch.Run(context.Background(), "hello")
	if err != nil {
		t.Fatalf("expected fallback to succeed, got %v", err)
	}

	if len(provider.requests) != 2 {
		t.Fatalf("expected 2 provider calls, got %d", len(provider.requests))
	}
	if len(provider.requests[0].Tools) == 0 {
		t.Fatalf("expected first request to offer tools")
	}
	if len(provider.requests[1].Tools) != 0 {
		t.Fatalf("expected fallback request without tools")
	}
	if provider.requests[1].ToolChoice != llm.ToolChoiceNone {
		t.Fatalf("expected fallback to forbid tool calls, got %q", provider.requests[1].ToolChoice)
	}
	if res.Content != "Answer without tools." {
		t.Fatalf("unexpected answer: %q", res.Content)
	}
	if res.TurnsUsed != 1 {
		t.Fatalf("expected one consumed turn, got %d", res.TurnsUsed)
	}
}

func TestRunPropagatesProviderFailureAfterFallback(t *testing.T) {
	provider := newScriptProvider(
		step{err: &llm.ProviderError{Provider: "scripted", StatusCode: 500, Kind: llm.KindServer, Message: "down"}},
		step{err: &llm.ProviderError{Provider: "scripted", StatusCode: 500, Kind: llm.KindServer, Message: "still down"}},
	)
	reg, exec := testRegistry(t, echoTool{name: "web_search", out: "ok"})

	orch, err := New(Config{Provider: provider, Registry: reg, Executor: exec})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	res, err := orch.Run(context.Background(), "hello")

	if res != nil {
		t.Fatalf("expected no result on total failure, got %+v", res)
	}
	var pe *llm.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if provider.calls != 2 {
		t.Fatalf("expected tools call plus one fallback, got %d", provider.calls)
	}
}

func TestRunDeadlineReturnsTimeoutError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	orch, err := New(Config{Provider: blockingProvider{}})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	res, err := orch.Run(ctx, "hello")

	if res != nil {
		t.Fatalf("expected no result on timeout, got %+v", res)
	}
	var timeout *TimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline cause preserved, got %v", err)
	}
}

func TestRunTerminatesWhenEveryToolFails(t *testing.T) {
	provider := newScriptProvider(
		step{resp: &llm.ChatResponse{
			ToolCalls:    []llm.ToolCall{{ID: "call_1", Name: "web_search", Arguments: `{}`}},
			FinishReason: llm.FinishToolUse,
		}},
		step{resp: &llm.ChatResponse{
			ToolCalls:    []llm.ToolCall{{ID: "call_2", Name: "web_search", Arguments: `{}`}},
			FinishReason: llm.FinishToolUse,
		}},
		step{resp: &llm.ChatResponse{Content: "Working from what I know instead.", FinishReason: llm.FinishStop}},
	)
	reg, _ := testRegistry(t, echoTool{name: "web_search", out: "unused"})

	orch, err := New(Config{Provider: provider, Registry: reg, Executor: &failingExecutor{}, TurnsMax: 3})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	res, err := orch.Run(context.Background(), "research this")
	if err != nil {
		t.Fatalf("expected failing tools to stay non-fatal, got %v", err)
	}

	if res.Content != "Working from what I know instead." {
		t.Fatalf("unexpected answer: %q", res.Content)
	}
	if res.ToolCallsUsed != 2 {
		t.Fatalf("expected both failed dispatches to count, got %d", res.ToolCallsUsed)
	}
	var errorResults int
	for _, msg := range res.Messages {
		if msg.Role == llm.RoleTool && strings.Contains(msg.Content, "failed: upstream unavailable") {
			errorResults++
		}
	}
	if errorResults != 2 {
		t.Fatalf("expected 2 error results in history, got %d", errorResults)
	}
}

func TestRunPreservesMessageOrder(t *testing.T) {
	provider := newScriptProvider(
		step{resp: &llm.ChatResponse{
			ToolCalls: []llm.ToolCall{
				{ID: "call_1", Name: "get_roster", Arguments: `{}`},
				{ID: "call_2", Name: "web_search", Arguments: `{"query":"injuries"}`},
			},
			FinishReason: llm.FinishToolUse,
		}},
		step{resp: &llm.ChatResponse{Content: "Lineup advice.", FinishReason: llm.FinishStop}},
	)
	reg, exec := testRegistry(t,
		echoTool{name: "get_roster", out: "roster"},
		echoTool{name: "web_search", out: "news"},
	)

	orch, err := New(Config{Provider: provider, Registry: reg, Executor: exec})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	res, err := orch.Run(context.Background(), "help")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	wantRoles := []llm.Role{
		llm.RoleUser,
		llm.RoleAssistant,
		llm.RoleTool,
		llm.RoleTool,
		llm.RoleSystem,
		llm.RoleAssistant,
	}
	if len(res.Messages) != len(wantRoles) {
		t.Fatalf("expected %d messages, got %d: %+v", len(wantRoles), len(res.Messages), res.Messages)
	}
	for i, want := range wantRoles {
		if res.Messages[i].Role != want {
			t.Fatalf("expected role %q at index %d, got %q", want, i, res.Messages[i].Role)
		}
	}
	if res.Messages[2].ToolCallID != "call_1" || res.Messages[3].ToolCallID != "call_2" {
		t.Fatalf("tool results out of request order: %+v", res.Messages[2:4])
	}
}

func TestRunSeededHistoryPrecedesNewInput(t *testing.T) {
	provider := newScriptProvider(
		step{resp: &llm.ChatResponse{Content: "Start Achane.", FinishReason: llm.FinishStop}},
	)

	orch, err := New(Config{
		Provider: provider,
		History: []llm.ChatMessage{
			{Role: llm.RoleUser, Content: "My team is the Sharks."},
			{Role: llm.RoleAssistant, Content: "Noted."},
		},
	})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	res, err := orch.Run(context.Background(), "Who should I start?")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	first := provider.requests[0].Messages
	if len(first) != 3 {
		t.Fatalf("expected 3 messages on first request, got %d", len(first))
	}
	if first[0].Content != "My team is the Sharks." || first[2].Content != "Who should I start?" {
		t.Fatalf("history order wrong: %+v", first)
	}
	if len(res.Messages) != 4 {
		t.Fatalf("expected full transcript in result, got %d messages", len(res.Messages))
	}
}

func TestRunEmitsCostRecordPerProviderCall(t *testing.T) {
	provider := newScriptProvider(
		step{resp: &llm.ChatResponse{
			ToolCalls:    []llm.ToolCall{{ID: "call_1", Name: "web_search", Arguments: `{}`}},
			FinishReason: llm.FinishToolUse,
			Usage:        llm.TokenUsage{InputTokens: 100, OutputTokens: 50, TotalTokens: 150},
			Model:        "scripted-model",
		}},
		step{resp: &llm.ChatResponse{
			Content:      "done",
			FinishReason: llm.FinishStop,
			Usage:        llm.TokenUsage{InputTokens: 200, OutputTokens: 80, TotalTokens: 280},
			Model:        "scripted-model",
		}},
	)
	provider.pricing = llm.Pricing{InputPerMTok: 1, OutputPerMTok: 2}
	reg, exec := testRegistry(t, echoTool{name: "web_search", out: "ok"})
	rec := &memoryRecorder{}

	orch, err := New(Config{Provider: provider, Registry: reg, Executor: exec, Recorder: rec, Operation: "ask"})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	res, err := orch.Run(context.Background(), "go")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(rec.records) != 2 {
		t.Fatalf("expected one record per provider call, got %d", len(rec.records))
	}
	first := rec.records[0]
	if first.Provider != "scripted" || first.Model != "scripted-model" || first.Operation != "ask" {
		t.Fatalf("unexpected record identity: %+v", first)
	}
	if first.RunID != res.RunID || first.RunID == "" {
		t.Fatalf("expected records tagged with run id %q, got %q", res.RunID, first.RunID)
	}
	if math.Abs(first.CostUSD-0.0002) > 1e-9 {
		t.Fatalf("expected first call cost 0.0002, got %f", first.CostUSD)
	}
	var sum float64
	for _, r := range rec.records {
		sum += r.CostUSD
	}
	if math.Abs(sum-res.Cost) > 1e-9 {
		t.Fatalf("expected records to sum to result cost %f, got %f", res.Cost, sum)
	}
}

func TestRunRecorderFailureDoesNotAbort(t *testing.T) {
	provider := newScriptProvider(
		step{resp: &llm.ChatResponse{Content: "fine", FinishReason: llm.FinishStop}},
	)

	orch, err := New(Config{Provider: provider, Recorder: failingRecorder{}})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	res, err := orch.Run(context.Background(), "go")
	if err != nil {
		t.Fatalf("expected recorder failure to be absorbed, got %v", err)
	}
	if res.Content != "fine" {
		t.Fatalf("unexpected answer: %q", res.Content)
	}
}

func TestRunIsSingleUse(t *testing.T) {
	provider := newScriptProvider(
		step{resp: &llm.ChatResponse{Content: "one", FinishReason: llm.FinishStop}},
	)
	orch, err := New(Config{Provider: provider})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	if _, err := orch.Run(context.Background(), "first"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := orch.Run(context.Background(), "second"); err == nil {
		t.Fatalf("expected second run to be rejected")
	}
}

func TestNewValidatesConfig(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected provider requirement")
	}

	reg, _ := testRegistry(t, echoTool{name: "web_search", out: "ok"})
	provider := newScriptProvider()
	if _, err := New(Config{Provider: provider, Registry: reg}); err == nil {
		t.Fatalf("expected executor requirement when tools are offered")
	}
}

func testRegistry(t *testing.T, toolset ...tools.Tool) (*tools.Registry, *tools.Executor) {
	t.Helper()
	reg := tools.NewRegistry()
	for _, tool := range toolset {
		if err := reg.Register(tool); err != nil {
			t.Fatalf("register %s: %v", tool.Name(), err)
		}
	}
	return reg, tools.NewExecutor(reg, time.Second)
}

type step struct {
	resp *llm.ChatResponse
	err  error
}

type scriptProvider struct {
	steps    []step
	requests []llm.ChatRequest
	calls    int
	pricing  llm.Pricing
}

func newScriptProvider(steps ...step) *scriptProvider {
	return &scriptProvider{steps: steps}
}

func (p *scriptProvider) Name() string     { return "scripted" }
func (p *scriptProvider) Models() []string { return []string{"scripted-model"} }

func (p *scriptProvider) Pricing(model string) llm.Pricing { return p.pricing }
func (p *scriptProvider) SupportsTools() bool              { return true }

func (p *scriptProvider) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	captured := req
	captured.Messages = append([]llm.ChatMessage(nil), req.Messages...)
	p.requests = append(p.requests, captured)

	i := p.calls
	p.calls++
	if i >= len(p.steps) {
		return nil, fmt.Errorf("unexpected extra call %d", i+1)
	}
	if p.steps[i].err != nil {
		return nil, p.steps[i].err
	}
	return p.steps[i].resp, nil
}

type flakyProvider struct {
	failures int
	calls    int
	response *llm.ChatResponse
}

func (p *flakyProvider) Name() string                     { return "flaky" }
func (p *flakyProvider) Models() []string                 { return []string{"flaky-model"} }
func (p *flakyProvider) Pricing(model string) llm.Pricing { return llm.Pricing{} }
func (p *flakyProvider) SupportsTools() bool              { return true }

func (p *flakyProvider) Chat(_ context.Context, _ llm.ChatRequest) (*llm.ChatResponse, error) {
	p.calls++
	if p.calls <= p.failures {
		return nil, &llm.ProviderError{Provider: "flaky", StatusCode: 500, Kind: llm.KindServer, Message: "upstream hiccup"}
	}
	return p.response, nil
}

type blockingProvider struct{}

func (blockingProvider) Name() string                     { return "blocking" }
func (blockingProvider) Models() []string                 { return []string{"blocking-model"} }
func (blockingProvider) Pricing(model string) llm.Pricing { return llm.Pricing{} }
func (blockingProvider) SupportsTools() bool              { return true }

func (blockingProvider) Chat(ctx context.Context, _ llm.ChatRequest) (*llm.ChatResponse, error) {
	<-ctx.Done()
	return nil, llm.WrapTransportError("blocking", "blocking-model", ctx.Err())
}

type echoTool struct {
	name string
	out  string
}

func (t echoTool) Name() string           { return t.name }
func (t echoTool) Description() string    { return t.name }
func (t echoTool) Schema() map[string]any { return map[string]any{"type": "object"} }

func (t echoTool) Execute(_ context.Context, _ map[string]any) (string, error) {
	return t.out, nil
}

type recordingExecutor struct {
	inner      Executor
	dispatched []llm.ToolCall
}

func (e *recordingExecutor) Dispatch(ctx context.Context, calls []llm.ToolCall) []llm.ToolResult {
	e.dispatched = append(e.dispatched, calls...)
	return e.inner.Dispatch(ctx, calls)
}

type failingExecutor struct{}

func (failingExecutor) Dispatch(_ context.Context, calls []llm.ToolCall) []llm.ToolResult {
	results := make([]llm.ToolResult, len(calls))
	for i, call := range calls {
		results[i] = llm.ToolResult{
			ToolCallID: call.ID,
			Name:       call.Name,
			Content:    fmt.Sprintf("tool %s failed: upstream unavailable", call.Name),
			IsError:    true,
		}
	}
	return results
}

type memoryRecorder struct {
	records []CallCost
}

func (r *memoryRecorder) Record(_ context.Context, cost CallCost) error {
	r.records = append(r.records, cost)
	return nil
}

type failingRecorder struct{}

func (failingRecorder) Record(_ context.Context, _ CallCost) error {
	return errors.New("ledger offline")
}
