package agent

import (
	"github.com/gridiron-ai/gridiron/internal/llm"
)

const (
	defaultTurnsMax     = 6
	defaultToolCallsMax = 8
)

// Budget is the bookkeeping for one conversation: turn and tool-call
// ceilings plus accumulated token usage and cost. It is pure state with no
// side effects; persisting cost records is the caller's concern.
//
// TurnsUsed never exceeds TurnsMax and ToolCallsUsed never exceeds
// ToolCallsMax. The guard methods reject increments past a ceiling instead
// of clamping after the fact.
type Budget struct {
	TurnsUsed     int
	TurnsMax      int
	ToolCallsUsed int
	ToolCallsMax  int
	Cost          float64
	Usage         llm.TokenUsage
}

// NewBudget creates a budget with the given ceilings. Non-positive values
// select the defaults.
func NewBudget(turnsMax, toolCallsMax int) *Budget {
	if turnsMax <= 0 {
		turnsMax = defaultTurnsMax
	}
	if toolCallsMax <= 0 {
		toolCallsMax = defaultToolCallsMax
	}
	return &Budget{TurnsMax: turnsMax, ToolCallsMax: toolCallsMax}
}

// AllowTurn reports whether another provider call fits the turn ceiling.
func (b *Budget) AllowTurn() bool {
	return b.TurnsUsed < b.TurnsMax
}

// UseTurn consumes one turn. It fails with a BudgetExceededError when the
// ceiling is already reached, leaving the count unchanged.
func (b *Budget) UseTurn() error {
	if !b.AllowTurn() {
		return &BudgetExceededError{What: "turns", Used: b.TurnsUsed, Max: b.TurnsMax}
	}
	b.TurnsUsed++
	return nil
}

// AllowToolCall reports whether another tool dispatch fits the ceiling.
func (b *Budget) AllowToolCall() bool {
	return b.ToolCallsUsed < b.ToolCallsMax
}

// UseToolCall consumes one tool call. It fails with a BudgetExceededError
// when the ceiling is already reached, leaving the count unchanged.
func (b *Budget) UseToolCall() error {
	if !b.AllowToolCall() {
		return &BudgetExceededError{What: "tool_calls", Used: b.ToolCallsUsed, Max: b.ToolCallsMax}
	}
	b.ToolCallsUsed++
	return nil
}

// AddUsage accumulates one response's token usage priced at the given tier
// and returns the cost of that call alone.
func (b *Budget) AddUsage(usage llm.TokenUsage, pricing llm.Pricing) float64 {
	b.Usage.Add(usage)
	cost := pricing.Cost(usage)
	b.Cost += cost
	return cost
}
