package advisor

import (
	"context"

	"github.com/gridiron-ai/gridiron/internal/agent"
	"github.com/gridiron-ai/gridiron/internal/costs"
)

// ledgerRecorder adapts the costs ledger to the orchestrator's Recorder.
// The backend fills record ID and timestamp.
type ledgerRecorder struct {
	ledger costs.Ledger
}

var _ agent.Recorder = ledgerRecorder{}

func (r ledgerRecorder) Record(ctx context.Context, cost agent.CallCost) error {
	if r.ledger == nil {
		return nil
	}
	return r.ledger.Append(ctx, costs.Record{
		Provider:     cost.Provider,
		Model:        cost.Model,
		Operation:    cost.Operation,
		InputTokens:  cost.InputTokens,
		OutputTokens: cost.OutputTokens,
		TotalTokens:  cost.TotalTokens,
		CostUSD:      cost.CostUSD,
	})
}
