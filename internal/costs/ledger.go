// Package costs persists one spend record per LLM provider call and
// aggregates them into daily and monthly totals.
package costs

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Record is one persisted usage entry.
type Record struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	Operation    string    `json:"operation,omitempty"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	TotalTokens  int       `json:"total_tokens"`
	CostUSD      float64   `json:"cost_usd"`
}

// Spend holds aggregated spend totals in USD.
type Spend struct {
	TodayUSD float64
	MonthUSD float64
}

// Ledger persists usage records and computes period spend totals.
type Ledger interface {
	Append(ctx context.Context, rec Record) error
	Spend(ctx context.Context, now time.Time) (Spend, error)
}

// Open selects a ledger backend by name. The default backend is the JSONL
// tracker; "sqlite" opens a SQLite database at path instead.
func Open(backend, path string) (Ledger, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "jsonl":
		return NewTracker(path), nil
	case "sqlite":
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unsupported costs backend %q (supported: jsonl, sqlite)", backend)
	}
}
