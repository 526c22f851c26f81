package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/gridiron-ai/gridiron/internal/agent"
	"github.com/gridiron-ai/gridiron/internal/config"
	"github.com/gridiron-ai/gridiron/internal/costs"
	"github.com/gridiron-ai/gridiron/internal/llm"
)

func createTestHome(t *testing.T) string {
	t.Helper()
	home := filepath.Join(t.TempDir(), ".gridiron")
	t.Setenv("GRIDIRON_HOME", home)
	return home
}

func writeValidConfig(t *testing.T, home, extra string) {
	t.Helper()
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	configBody := `
[llm.default]
api_key = "test-key"
provider = "anthropic"
model = "claude-sonnet-4-5"

[league]
provider = "espn"
league_id = "111"
team_id = "3"
` + extra
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte(configBody), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

type fakeAdviser struct {
	question string
	week     int
	opponent string
	calls    []string
	res      *agent.Result
	err      error
}

func (f *fakeAdviser) Ask(_ context.Context, question string, _ []llm.ChatMessage) (*agent.Result, error) {
	f.calls = append(f.calls, "ask")
	f.question = question
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

func (f *fakeAdviser) StartSit(_ context.Context, week int) (*agent.Result, error) {
	f.calls = append(f.calls, "start_sit")
	f.week = week
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

func (f *fakeAdviser) Waivers(_ context.Context, week int) (*agent.Result, error) {
	f.calls = append(f.calls, "waivers")
	f.week = week
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

func (f *fakeAdviser) Matchup(_ context.Context, week int, opponentTeamID string) (*agent.Result, error) {
	f.calls = append(f.calls, "matchup")
	f.week = week
	f.opponent = opponentTeamID
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

func stubAdviser(t *testing.T, fake *fakeAdviser) {
	t.Helper()
	orig := newAdviser
	t.Cleanup(func() { newAdviser = orig })
	newAdviser = func(_ *config.Config, _ costs.Ledger) adviser { return fake }
}

func answerResult(text string) *agent.Result {
	return &agent.Result{
		Content: text,
		Usage:   llm.TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	}
}

func seedCostRecord(t *testing.T, home string, costUSD float64) {
	t.Helper()
	cfg := &config.Config{HomeDir: home}
	tracker := costs.NewTracker(cfg.CostsPath())
	err := tracker.Append(context.Background(), costs.Record{
		ID:          fmt.Sprintf("rec-%.4f", costUSD),
		Provider:    "anthropic",
		Model:       "claude-sonnet-4-5",
		Operation:   "ask",
		TotalTokens: 15,
		CostUSD:     costUSD,
	})
	if err != nil {
		t.Fatalf("seed cost record: %v", err)
	}
}
