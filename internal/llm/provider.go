// Package llm defines the vendor-neutral chat contract shared by every
// provider adapter, plus the retry wrapper and pricing types that sit
// directly on top of it.
package llm

import "context"

// Provider is the capability contract implemented once per vendor.
type Provider interface {
	// Name reports the vendor identifier used in logs, errors, and cost records.
	Name() string
	// Chat sends one request and maps the vendor response to the neutral shape.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	// Models lists the model IDs this adapter prices explicitly.
	Models() []string
	// Pricing returns per-token pricing for a model, with a default tier
	// when the model is unrecognized.
	Pricing(model string) Pricing
	// SupportsTools reports whether the vendor has native tool calling.
	// Vendors without it receive tool definitions through the
	// text-simulated channel instead.
	SupportsTools() bool
}

// Role is the author role for a chat message.
type Role string

const (
	// RoleUser is a user-authored message.
	RoleUser Role = "user"
	// RoleAssistant is an assistant-authored message.
	RoleAssistant Role = "assistant"
	// RoleSystem is an orchestrator-authored instruction inserted mid-conversation.
	RoleSystem Role = "system"
	// RoleTool is a tool-result message addressed to the model.
	RoleTool Role = "tool"
)

// ChatMessage is a single message in model conversation history.
// History is append-only; callers never mutate or reorder entries.
type ChatMessage struct {
	Role    Role
	Content string
	// ToolCallID and ToolName are set on RoleTool messages and identify
	// which requested call the result answers.
	ToolCallID string
	ToolName   string
	ToolCalls  []ToolCall
}

// ToolDefinition describes a callable tool exposed to the model.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is a model request to execute a tool. Arguments is raw JSON
// exactly as the vendor returned it and is not guaranteed to parse.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolResult is the outcome of one tool dispatch, appended to the
// conversation before the next provider call.
type ToolResult struct {
	ToolCallID string
	Name       string
	Content    string
	IsError    bool
}

// TokenUsage reports provider token accounting for one response.
// Fields stay zero when the vendor omits usage data.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Add accumulates another response's usage into u.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}

// FinishReason explains why the model stopped generating.
type FinishReason string

const (
	// FinishStop is a normal end-of-turn answer.
	FinishStop FinishReason = "stop"
	// FinishLength means the response hit the max-token ceiling.
	FinishLength FinishReason = "length"
	// FinishToolUse means the model is requesting tool execution.
	FinishToolUse FinishReason = "tool_use"
	// FinishContentFilter means the vendor suppressed the output.
	FinishContentFilter FinishReason = "content_filter"
	// FinishUnknown covers absent or unrecognized vendor stop reasons.
	// Callers treat it conservatively, as if the turn may be terminal.
	FinishUnknown FinishReason = "unknown"
)

// ToolChoice directs whether and how the model may call tools.
type ToolChoice string

const (
	// ToolChoiceAuto lets the model decide.
	ToolChoiceAuto ToolChoice = "auto"
	// ToolChoiceNone forbids tool calls for this request.
	ToolChoiceNone ToolChoice = "none"
)

// ChatRequest is the provider-agnostic request payload.
type ChatRequest struct {
	SystemPrompt string
	Messages     []ChatMessage
	Tools        []ToolDefinition
	MaxTokens    int
	// Temperature is optional; nil leaves the vendor default in place.
	Temperature *float64
	// ToolChoice is auto, none, or the name of a specific tool.
	ToolChoice ToolChoice
}

// ChatResponse is the provider-agnostic response payload.
type ChatResponse struct {
	Content      string
	ToolCalls    []ToolCall
	Usage        TokenUsage
	FinishReason FinishReason
	// Model echoes the model that produced the response when known.
	Model string
	// Simulated marks tool calls recovered from free text rather than a
	// native tool-calling channel. Simulated calls are lower confidence
	// and must be validated before dispatch.
	Simulated bool
}
