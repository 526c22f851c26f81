// Package advisor assembles one conversation run from config: provider plus
// retry wrapper, tool registry, budget, and cost ledger. The CLI, scheduler,
// and serve mode all go through it. Every run gets a fresh orchestrator;
// nothing is shared across runs.
package advisor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gridiron-ai/gridiron/internal/agent"
	"github.com/gridiron-ai/gridiron/internal/config"
	"github.com/gridiron-ai/gridiron/internal/costs"
	"github.com/gridiron-ai/gridiron/internal/fantasy"
	"github.com/gridiron-ai/gridiron/internal/llm"
	"github.com/gridiron-ai/gridiron/internal/logging"
	"github.com/gridiron-ai/gridiron/internal/provider"
	"github.com/gridiron-ai/gridiron/internal/tools"
)

const fetchTimeout = 30 * time.Second

// Advisor runs advice conversations against the configured provider.
type Advisor struct {
	cfg    *config.Config
	ledger costs.Ledger
	client *http.Client

	// newProvider and the base URLs are swapped out in tests.
	newProvider func(ctx context.Context, cfg config.LLMProviderConfig) (llm.Provider, error)
	espnBaseURL string
	fpBaseURL   string
}

// New creates an advisor over the loaded config and cost ledger. The ledger
// may be nil to disable cost records.
func New(cfg *config.Config, ledger costs.Ledger) *Advisor {
	return &Advisor{
		cfg:         cfg,
		ledger:      ledger,
		client:      &http.Client{Timeout: fetchTimeout},
		newProvider: provider.New,
	}
}

// Ask answers a free-form question, optionally continuing from an earlier
// transcript.
func (a *Advisor) Ask(ctx context.Context, question string, history []llm.ChatMessage) (*agent.Result, error) {
	return a.run(ctx, "ask", question, history)
}

// StartSit fetches the roster and rankings and asks for a lineup review.
// Week of 0 means the current week.
func (a *Advisor) StartSit(ctx context.Context, week int) (*agent.Result, error) {
	week = resolveWeek(week)
	roster, rankings, err := a.leagueContext(ctx, week)
	if err != nil {
		return nil, err
	}
	return a.run(ctx, "start_sit", fantasy.StartSitPrompt(roster, rankings, week), nil)
}

// Waivers fetches the roster and rankings and asks for waiver-wire targets.
// Week of 0 means the current week.
func (a *Advisor) Waivers(ctx context.Context, week int) (*agent.Result, error) {
	week = resolveWeek(week)
	roster, rankings, err := a.leagueContext(ctx, week)
	if err != nil {
		return nil, err
	}
	return a.run(ctx, "waivers", fantasy.WaiverPrompt(roster, rankings, week), nil)
}

// Matchup previews the week's head-to-head. The opponent roster is included
// when opponentTeamID is set and fetchable; a fetch failure degrades to a
// one-sided preview instead of aborting.
func (a *Advisor) Matchup(ctx context.Context, week int, opponentTeamID string) (*agent.Result, error) {
	week = resolveWeek(week)
	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	espn := a.espnClient()
	roster, err := espn.Roster(fetchCtx, a.cfg.League.LeagueID, a.cfg.League.TeamID, week)
	if err != nil {
		return nil, err
	}

	var opponent *fantasy.Roster
	if opponentTeamID != "" {
		opponent, err = espn.Roster(fetchCtx, a.cfg.League.LeagueID, opponentTeamID, week)
		if err != nil {
			logging.Logger().Warn("opponent roster fetch failed", "team_id", opponentTeamID, "err", err)
			opponent = nil
		}
	}
	return a.run(ctx, "matchup", fantasy.MatchupPrompt(roster, opponent, week), nil)
}

// run builds a fresh orchestrator and drives it to completion under the
// configured run timeout.
func (a *Advisor) run(ctx context.Context, operation, input string, history []llm.ChatMessage) (*agent.Result, error) {
	a.warnIfOverLimit(ctx)

	llmCfg := a.cfg.DefaultLLM()
	prov, err := a.newProvider(ctx, llmCfg)
	if err != nil {
		return nil, err
	}
	wrapped := llm.NewRetryer(prov, llm.RetryConfig{
		MaxAttempts:        uint(a.cfg.Retry.MaxAttempts),
		InitialDelay:       a.cfg.Retry.InitialDelay,
		MaxDelay:           a.cfg.Retry.MaxDelay,
		UseProviderBackoff: true,
	})

	registry, executor, err := a.buildTools()
	if err != nil {
		return nil, err
	}

	var temperature *float64
	if llmCfg.Temperature > 0 {
		t := llmCfg.Temperature
		temperature = &t
	}

	orc, err := agent.New(agent.Config{
		Provider:     wrapped,
		Registry:     registry,
		Executor:     executor,
		Recorder:     ledgerRecorder{ledger: a.ledger},
		SystemPrompt: systemPrompt(a.cfg, time.Now()),
		History:      history,
		Model:        llmCfg.Model,
		MaxTokens:    llmCfg.MaxTokens,
		Temperature:  temperature,
		TurnsMax:     a.cfg.Budget.TurnsMax,
		ToolCallsMax: a.cfg.Budget.ToolCallsMax,
		Operation:    operation,
	})
	if err != nil {
		return nil, err
	}

	runCtx := ctx
	if a.cfg.Budget.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, a.cfg.Budget.RunTimeout)
		defer cancel()
	}

	res, err := orc.Run(runCtx, input)
	var budgetErr *agent.BudgetExceededError
	if err != nil && errors.As(err, &budgetErr) && res != nil {
		// Turn exhaustion still produced usable content; surface it as a
		// normal answer. The transcript carries the limit notice.
		return res, nil
	}
	return res, err
}

// buildTools registers the tools the config enables. An unconfigured tool is
// simply absent; the orchestrator rejects calls to unknown names.
func (a *Advisor) buildTools() (*tools.Registry, *tools.Executor, error) {
	registry := tools.NewRegistry()

	if a.cfg.Tools.WebSearch.APIKey != "" {
		err := registry.Register(tools.WebSearchTool{
			Client:     a.client,
			APIKey:     a.cfg.Tools.WebSearch.APIKey,
			MaxResults: a.cfg.Tools.WebSearch.MaxResults,
		})
		if err != nil {
			return nil, nil, err
		}
	}
	if a.cfg.League.LeagueID != "" && a.cfg.League.TeamID != "" {
		err := registry.Register(tools.RosterTool{
			ESPN:     a.espnClient(),
			LeagueID: a.cfg.League.LeagueID,
			TeamID:   a.cfg.League.TeamID,
		})
		if err != nil {
			return nil, nil, err
		}
	}
	if err := registry.Register(tools.RankingsTool{
		FantasyPros: a.fantasyProsClient(),
	}); err != nil {
		return nil, nil, err
	}

	return registry, tools.NewExecutor(registry, 0), nil
}

// leagueContext fetches the roster and the flex rankings for prompt
// assembly. The roster is required; rankings degrade to empty on failure.
func (a *Advisor) leagueContext(ctx context.Context, week int) (*fantasy.Roster, []fantasy.Ranking, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	roster, err := a.espnClient().Roster(fetchCtx, a.cfg.League.LeagueID, a.cfg.League.TeamID, week)
	if err != nil {
		return nil, nil, err
	}

	rankings, err := a.fantasyProsClient().Rankings(fetchCtx, "FLX", week)
	if err != nil {
		logging.Logger().Warn("rankings fetch failed, continuing without", "week", week, "err", err)
		rankings = nil
	}
	if len(rankings) > 40 {
		rankings = rankings[:40]
	}
	return roster, rankings, nil
}

func (a *Advisor) espnClient() *fantasy.ESPNClient {
	return &fantasy.ESPNClient{
		Client:  a.client,
		BaseURL: a.espnBaseURL,
		Season:  a.cfg.League.Season,
		SWID:    a.cfg.League.SWID,
		ESPNS2:  a.cfg.League.ESPNS2,
	}
}

func (a *Advisor) fantasyProsClient() *fantasy.FantasyProsClient {
	return &fantasy.FantasyProsClient{
		Client:  a.client,
		BaseURL: a.fpBaseURL,
		Season:  a.cfg.League.Season,
	}
}

// warnIfOverLimit logs when accumulated spend passed a configured limit.
// Limits warn, they never block a run.
func (a *Advisor) warnIfOverLimit(ctx context.Context) {
	if a.ledger == nil {
		return
	}
	daily, monthly := a.cfg.Costs.DailyLimit, a.cfg.Costs.MonthlyLimit
	if daily <= 0 && monthly <= 0 {
		return
	}
	spend, err := a.ledger.Spend(ctx, time.Now())
	if err != nil {
		logging.Logger().Warn("spend lookup failed", "err", err)
		return
	}
	if daily > 0 && spend.TodayUSD >= daily {
		logging.Logger().Warn("daily spend limit reached", "spent_usd", spend.TodayUSD, "limit_usd", daily)
	}
	if monthly > 0 && spend.MonthUSD >= monthly {
		logging.Logger().Warn("monthly spend limit reached", "spent_usd", spend.MonthUSD, "limit_usd", monthly)
	}
}

func resolveWeek(week int) int {
	if week > 0 {
		return week
	}
	return fantasy.CurrentWeek(time.Now())
}
