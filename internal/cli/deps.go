package cli

import (
	"context"
	"io"
	"time"

	"github.com/gridiron-ai/gridiron/internal/advisor"
	"github.com/gridiron-ai/gridiron/internal/agent"
	"github.com/gridiron-ai/gridiron/internal/config"
	"github.com/gridiron-ai/gridiron/internal/costs"
	"github.com/gridiron-ai/gridiron/internal/fantasy"
	"github.com/gridiron-ai/gridiron/internal/llm"
	"github.com/gridiron-ai/gridiron/internal/logging"
)

// adviser is the advisor surface the subcommands drive.
type adviser interface {
	Ask(ctx context.Context, question string, history []llm.ChatMessage) (*agent.Result, error)
	StartSit(ctx context.Context, week int) (*agent.Result, error)
	Waivers(ctx context.Context, week int) (*agent.Result, error)
	Matchup(ctx context.Context, week int, opponentTeamID string) (*agent.Result, error)
}

// newAdviser is swapped out in tests.
var newAdviser = func(cfg *config.Config, ledger costs.Ledger) adviser {
	return advisor.New(cfg, ledger)
}

// loadValidatedConfig loads config, runs startup validation, and logs the
// non-fatal warnings.
func loadValidatedConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	report, err := config.ValidateStartup(cfg)
	if report != nil {
		for _, warning := range report.Warnings {
			logging.Logger().Warn(warning)
		}
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func openLedger(cfg *config.Config) (costs.Ledger, error) {
	path := cfg.CostsPath()
	if cfg.Costs.Backend == "sqlite" {
		path = cfg.CostsDBPath()
	}
	return costs.Open(cfg.Costs.Backend, path)
}

func closeLedger(ledger costs.Ledger) {
	if closer, ok := ledger.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logging.Logger().Warn("close cost ledger", "err", err)
		}
	}
}

// reportWeek resolves a --week flag value, defaulting to the current NFL week.
func reportWeek(week int) int {
	if week > 0 {
		return week
	}
	return fantasy.CurrentWeek(time.Now())
}
