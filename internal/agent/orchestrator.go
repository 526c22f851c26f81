// Package agent drives bounded tool-calling conversations. One Orchestrator
// instance owns one run: it alternates provider calls and tool dispatches as
// an explicit state machine whose termination is guaranteed by the Budget,
// not by model cooperation.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gridiron-ai/gridiron/internal/llm"
	"github.com/gridiron-ai/gridiron/internal/logging"
	"github.com/gridiron-ai/gridiron/internal/tools"
)

// Executor dispatches one batch of accepted tool calls and returns results
// in request order, one per call. Implementations fold their own failures
// into IsError results; Dispatch never returns an error and never panics.
type Executor interface {
	Dispatch(ctx context.Context, calls []llm.ToolCall) []llm.ToolResult
}

// CallCost is the cost record emitted once per provider call.
type CallCost struct {
	RunID        string
	Provider     string
	Model        string
	Operation    string
	InputTokens  int
	OutputTokens int
	TotalTokens  int
	CostUSD      float64
}

// Recorder receives one CallCost per provider call, fire and forget.
// Failures are logged and never interrupt the conversation.
type Recorder interface {
	Record(ctx context.Context, cost CallCost) error
}

// state is the orchestrator's position in the conversation loop.
type state int

const (
	stateAwaitingProvider state = iota
	stateHasResponse
	stateDispatchingTools
	stateTerminal
)

// Orchestrator-authored messages inserted into the conversation.
const (
	finalAnswerInstruction = "Use the tool results above to produce the final answer. Only request another tool if those results are insufficient."
	noMoreToolsInstruction = "No further tool use is permitted in this conversation. Produce the final answer from the information above."
	turnLimitNotice        = "The conversation reached its turn limit before a final answer was produced."
	emptyAnswerNotice      = "The model returned an empty answer."
)

// Config assembles one conversation run.
type Config struct {
	// Provider answers chat requests. Callers usually pass a *llm.Retryer
	// so transient vendor failures are absorbed before they reach the
	// conversation loop.
	Provider llm.Provider
	// Registry is the tool set offered to this conversation. Nil offers none.
	Registry *tools.Registry
	// Executor dispatches accepted tool calls. Required when Registry
	// holds at least one tool.
	Executor Executor
	// Recorder receives one cost record per provider call. Optional.
	Recorder Recorder

	SystemPrompt string
	// History seeds the conversation with an earlier transcript, for
	// continuing sessions. It is sanitized on ingest so dangling tool
	// calls cannot poison the first provider request.
	History []llm.ChatMessage

	// Model labels cost records when the vendor response omits its model.
	Model        string
	MaxTokens    int
	Temperature  *float64
	TurnsMax     int
	ToolCallsMax int
	// Operation labels cost records, e.g. "ask" or "start_sit".
	Operation string
}

// Result is the terminal outcome of one conversation run.
type Result struct {
	RunID         string
	Content       string
	Messages      []llm.ChatMessage
	Usage         llm.TokenUsage
	Cost          float64
	TurnsUsed     int
	ToolCallsUsed int
	FinishReason  llm.FinishReason
}

// Orchestrator runs one conversation to a terminal state. Instances are
// single-run and not safe for concurrent use; concurrent conversations each
// get their own Orchestrator with their own Budget and history.
type Orchestrator struct {
	cfg    Config
	budget *Budget
	runID  string
	ran    bool
}

// New validates cfg and creates a single-run orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Provider == nil {
		return nil, errors.New("provider is required")
	}
	if cfg.Registry != nil && len(cfg.Registry.Names()) > 0 && cfg.Executor == nil {
		return nil, errors.New("executor is required when tools are offered")
	}
	return &Orchestrator{
		cfg:    cfg,
		budget: NewBudget(cfg.TurnsMax, cfg.ToolCallsMax),
		runID:  uuid.NewString(),
	}, nil
}

// RunID identifies this conversation in logs and cost records.
func (o *Orchestrator) RunID() string { return o.runID }

// Run drives the conversation for input until it reaches a terminal state.
//
// The returned error is nil for a normal answer. When the turn ceiling stops
// the conversation, Run returns a non-nil *Result carrying the best
// available content together with a *BudgetExceededError, so callers can
// both detect the stop and still use the content. A *TimeoutError or
// provider failure returns a nil Result.
func (o *Orchestrator) Run(ctx context.Context, input string) (*Result, error) {
	if o.ran {
		return nil, errors.New("orchestrator is single-run; create a new instance")
	}
	o.ran = true

	history, changed := sanitizeToolTurns(o.cfg.History)
	if changed {
		logging.Logger().Warn("seeded history needed sanitizing", "run_id", o.runID)
	}
	if strings.TrimSpace(input) != "" {
		history = append(history, llm.ChatMessage{Role: llm.RoleUser, Content: input})
	}
	if len(history) == 0 {
		return nil, errors.New("conversation needs input or seeded history")
	}

	var toolDefs []llm.ToolDefinition
	if o.cfg.Registry != nil {
		toolDefs = o.cfg.Registry.Definitions()
	}
	logging.Logger().Info(
		"conversation start",
		"run_id", o.runID,
		"provider", o.cfg.Provider.Name(),
		"operation", o.cfg.Operation,
		"tools", toolNames(toolDefs),
		"turns_max", o.budget.TurnsMax,
		"tool_calls_max", o.budget.ToolCallsMax,
	)

	var (
		resp        *llm.ChatResponse
		lastContent string
		finish      = llm.FinishUnknown
	)

	st := stateAwaitingProvider
	for st != stateTerminal {
		if err := ctx.Err(); err != nil {
			return nil, &TimeoutError{Err: err}
		}

		switch st {
		case stateAwaitingProvider:
			if !o.budget.AllowTurn() {
				// Forced stop: the model never produced a final answer
				// within the turn ceiling. Return the best content seen
				// alongside the typed error instead of looping.
				content := lastContent
				if content == "" {
					content = turnLimitNotice
				}
				res := o.finish(history, content, finish)
				return res, &BudgetExceededError{What: "turns", Used: o.budget.TurnsUsed, Max: o.budget.TurnsMax}
			}
			var err error
			resp, err = o.callProvider(ctx, history, toolDefs)
			if err != nil {
				if ctx.Err() != nil {
					return nil, &TimeoutError{Err: err}
				}
				return nil, err
			}
			st = stateHasResponse

		case stateHasResponse:
			if resp.Content != "" {
				lastContent = resp.Content
			}
			finish = resp.FinishReason
			switch {
			case len(resp.ToolCalls) == 0 || terminalFinish(resp.FinishReason):
				if resp.Content != "" {
					history = append(history, llm.ChatMessage{Role: llm.RoleAssistant, Content: resp.Content})
				}
				st = stateTerminal
			case !o.budget.AllowToolCall():
				// The model asked for tools on a request that offered
				// none. Keep its text, drop the unanswerable calls, and
				// tell it to wrap up.
				logging.Logger().Warn(
					"tool calls refused, budget exhausted",
					"run_id", o.runID,
					"requested", len(resp.ToolCalls),
				)
				if resp.Content != "" {
					history = append(history, llm.ChatMessage{Role: llm.RoleAssistant, Content: resp.Content})
				}
				history = append(history, llm.ChatMessage{Role: llm.RoleSystem, Content: noMoreToolsInstruction})
				st = stateAwaitingProvider
			default:
				history = append(history, llm.ChatMessage{
					Role:      llm.RoleAssistant,
					Content:   resp.Content,
					ToolCalls: resp.ToolCalls,
				})
				st = stateDispatchingTools
			}

		case stateDispatchingTools:
			results, budgetHit := o.dispatchTools(ctx, resp.ToolCalls)
			for _, r := range results {
				history = append(history, llm.ChatMessage{
					Role:       llm.RoleTool,
					ToolCallID: r.ToolCallID,
					ToolName:   r.Name,
					Content:    r.Content,
				})
			}
			instruction := finalAnswerInstruction
			if budgetHit || !o.budget.AllowToolCall() {
				instruction = noMoreToolsInstruction
			}
			history = append(history, llm.ChatMessage{Role: llm.RoleSystem, Content: instruction})
			st = stateAwaitingProvider
		}
	}

	content := resp.Content
	if content == "" {
		content = lastContent
	}
	if content == "" {
		logging.Logger().Warn("conversation ended without content", "run_id", o.runID, "finish_reason", finish)
		content = emptyAnswerNotice
	}
	return o.finish(history, content, finish), nil
}

// terminalFinish reports whether a finish reason ends the conversation even
// if tool calls were returned alongside it.
func terminalFinish(reason llm.FinishReason) bool {
	return reason == llm.FinishStop || reason == llm.FinishContentFilter
}

// callProvider makes one provider call through the configured provider,
// offering tools only while the tool budget allows. On total failure of a
// tools call it falls back to one last call without tools so the
// conversation can still end with an answer.
func (o *Orchestrator) callProvider(ctx context.Context, history []llm.ChatMessage, defs []llm.ToolDefinition) (*llm.ChatResponse, error) {
	req := llm.ChatRequest{
		SystemPrompt: o.cfg.SystemPrompt,
		Messages:     history,
		MaxTokens:    o.cfg.MaxTokens,
		Temperature:  o.cfg.Temperature,
	}
	withTools := len(defs) > 0 && o.budget.AllowToolCall()
	if withTools {
		req.Tools = defs
	}

	resp, err := o.chat(ctx, req)
	if err == nil {
		return resp, nil
	}
	if !withTools || ctx.Err() != nil {
		return nil, err
	}

	logging.Logger().Warn(
		"provider failed with tools, retrying once without",
		"run_id", o.runID,
		"provider", o.cfg.Provider.Name(),
		"err", err,
	)
	req.Tools = nil
	req.ToolChoice = llm.ToolChoiceNone
	return o.chat(ctx, req)
}

func (o *Orchestrator) chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	log := logging.Logger()
	log.Info(
		"llm request",
		"run_id", o.runID,
		"turn", o.budget.TurnsUsed+1,
		"message_count", len(req.Messages),
		"tool_count", len(req.Tools),
		"latest_user_message", summarizeTextForLog(latestUserMessage(req.Messages), 300),
	)

	resp, err := o.cfg.Provider.Chat(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := o.budget.UseTurn(); err != nil {
		return nil, err
	}

	model := resp.Model
	if model == "" {
		model = o.cfg.Model
	}
	cost := o.budget.AddUsage(resp.Usage, o.cfg.Provider.Pricing(model))
	log.Info(
		"llm response",
		"run_id", o.runID,
		"turn", o.budget.TurnsUsed,
		"finish_reason", resp.FinishReason,
		"tool_call_count", len(resp.ToolCalls),
		"simulated", resp.Simulated,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"cost_usd", cost,
	)

	o.record(ctx, model, resp.Usage, cost)
	return resp, nil
}

// dispatchTools validates each requested call, dispatches the accepted ones
// as one concurrent batch, and returns results in request order. The bool
// reports whether any call was refused for budget, which changes the
// follow-up instruction.
func (o *Orchestrator) dispatchTools(ctx context.Context, calls []llm.ToolCall) ([]llm.ToolResult, bool) {
	results := make([]llm.ToolResult, len(calls))
	accepted := make([]llm.ToolCall, 0, len(calls))
	acceptedIdx := make([]int, 0, len(calls))
	budgetHit := false

	for i, call := range calls {
		if err := o.validateCall(call); err != nil {
			logging.Logger().Warn(
				"tool call rejected",
				"run_id", o.runID,
				"tool", call.Name,
				"tool_call_id", call.ID,
				"error", err,
			)
			results[i] = llm.ToolResult{ToolCallID: call.ID, Name: call.Name, Content: err.Error(), IsError: true}
			continue
		}
		if err := o.budget.UseToolCall(); err != nil {
			budgetHit = true
			logging.Logger().Warn(
				"tool call refused, budget exhausted",
				"run_id", o.runID,
				"tool", call.Name,
				"tool_call_id", call.ID,
			)
			results[i] = llm.ToolResult{
				ToolCallID: call.ID,
				Name:       call.Name,
				Content:    "tool call not executed: " + err.Error(),
				IsError:    true,
			}
			continue
		}
		accepted = append(accepted, call)
		acceptedIdx = append(acceptedIdx, i)
	}

	if len(accepted) > 0 {
		logging.Logger().Info("dispatching tools", "run_id", o.runID, "count", len(accepted))
		dispatched := o.cfg.Executor.Dispatch(ctx, accepted)
		for j := range dispatched {
			results[acceptedIdx[j]] = dispatched[j]
		}
	}
	return results, budgetHit
}

// validateCall checks a requested call against the registry: the name must
// be registered and the arguments must parse as an object. Rejected calls
// never reach the executor and never consume tool budget.
func (o *Orchestrator) validateCall(call llm.ToolCall) error {
	known := []string{}
	if o.cfg.Registry != nil {
		known = o.cfg.Registry.Names()
	}
	if o.cfg.Registry == nil {
		return &tools.UnknownToolError{Name: call.Name, Known: known}
	}
	if _, ok := o.cfg.Registry.Lookup(call.Name); !ok {
		return &tools.UnknownToolError{Name: call.Name, Known: known}
	}
	if err := validateArguments(call.Arguments); err != nil {
		return fmt.Errorf("invalid tool arguments for %s: %w", call.Name, err)
	}
	return nil
}

func (o *Orchestrator) record(ctx context.Context, model string, usage llm.TokenUsage, cost float64) {
	if o.cfg.Recorder == nil {
		return
	}
	rec := CallCost{
		RunID:        o.runID,
		Provider:     o.cfg.Provider.Name(),
		Model:        model,
		Operation:    o.cfg.Operation,
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		TotalTokens:  usage.TotalTokens,
		CostUSD:      cost,
	}
	if err := o.cfg.Recorder.Record(ctx, rec); err != nil {
		logging.Logger().Warn("cost record failed", "run_id", o.runID, "err", err)
	}
}

func (o *Orchestrator) finish(history []llm.ChatMessage, content string, reason llm.FinishReason) *Result {
	logging.Logger().Info(
		"conversation complete",
		"run_id", o.runID,
		"turns", o.budget.TurnsUsed,
		"tool_calls", o.budget.ToolCallsUsed,
		"total_tokens", o.budget.Usage.TotalTokens,
		"cost_usd", o.budget.Cost,
		"finish_reason", reason,
	)
	return &Result{
		RunID:         o.runID,
		Content:       content,
		Messages:      history,
		Usage:         o.budget.Usage,
		Cost:          o.budget.Cost,
		TurnsUsed:     o.budget.TurnsUsed,
		ToolCallsUsed: o.budget.ToolCallsUsed,
		FinishReason:  reason,
	}
}

func toolNames(defs []llm.ToolDefinition) string {
	if len(defs) == 0 {
		return "<none>"
	}
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
	}
	return strings.Join(names, ", ")
}

func latestUserMessage(history []llm.ChatMessage) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == llm.RoleUser && strings.TrimSpace(history[i].Content) != "" {
			return history[i].Content
		}
	}
	return ""
}

func summarizeTextForLog(text string, maxLen int) string {
	if maxLen <= 0 || len(text) <= maxLen {
		return text
	}
	return fmt.Sprintf("%s...[truncated %d chars]", text[:maxLen], len(text)-maxLen)
}
