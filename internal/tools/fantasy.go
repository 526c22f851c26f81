package tools

import (
	"context"
	"errors"

	"github.com/gridiron-ai/gridiron/internal/fantasy"
)

// RosterTool exposes the configured league's roster to the model. LeagueID,
// TeamID and Week are config-sourced defaults the model may override per call.
type RosterTool struct {
	ESPN     *fantasy.ESPNClient
	LeagueID string
	TeamID   string
	Week     int
}

func (t RosterTool) Name() string {
	return "get_roster"
}

func (t RosterTool) Description() string {
	return "Fetch a fantasy team's current roster with positions, lineup slots, injury status, and weekly projections"
}

func (t RosterTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"league_id": map[string]any{
				"type":        "string",
				"description": "ESPN league ID; defaults to the configured league",
			},
			"team_id": map[string]any{
				"type":        "string",
				"description": "Team ID within the league; defaults to the configured team",
			},
			"week": map[string]any{
				"type":        "integer",
				"description": "NFL week for projections; defaults to the current week",
			},
		},
	}
}

func (t RosterTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	if t.ESPN == nil {
		return "", errors.New("espn client is not configured")
	}

	leagueID, err := optionalStringArg(args, "league_id", t.LeagueID)
	if err != nil {
		return "", err
	}
	if leagueID == "" {
		return "", errors.New("league.league_id is required")
	}
	teamID, err := optionalStringArg(args, "team_id", t.TeamID)
	if err != nil {
		return "", err
	}
	if teamID == "" {
		return "", errors.New("league.team_id is required")
	}
	week, err := optionalIntArg(args, "week", t.Week)
	if err != nil {
		return "", err
	}

	roster, err := t.ESPN.Roster(ctx, leagueID, teamID, week)
	if err != nil {
		return "", err
	}
	return Truncate(fantasy.FormatRoster(roster)), nil
}

// RankingsTool exposes weekly consensus rankings to the model.
type RankingsTool struct {
	FantasyPros *fantasy.FantasyProsClient
	Week        int
	// MaxRows caps output size; 0 means the default of 30.
	MaxRows int
}

func (t RankingsTool) Name() string {
	return "get_rankings"
}

func (t RankingsTool) Description() string {
	return "Fetch expert-consensus weekly rankings for one position (QB, RB, WR, TE, K, DST, FLX)"
}

func (t RankingsTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"position": map[string]any{
				"type":        "string",
				"description": "Position to rank: QB, RB, WR, TE, K, DST, or FLX",
			},
			"week": map[string]any{
				"type":        "integer",
				"description": "NFL week; defaults to the current week",
			},
		},
		"required": []string{"position"},
	}
}

func (t RankingsTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	if t.FantasyPros == nil {
		return "", errors.New("fantasypros client is not configured")
	}

	position, err := stringArg(args, "position")
	if err != nil {
		return "", err
	}
	week, err := optionalIntArg(args, "week", t.Week)
	if err != nil {
		return "", err
	}

	rankings, err := t.FantasyPros.Rankings(ctx, position, week)
	if err != nil {
		return "", err
	}

	maxRows := t.MaxRows
	if maxRows <= 0 {
		maxRows = 30
	}
	if len(rankings) > maxRows {
		rankings = rankings[:maxRows]
	}
	return Truncate(fantasy.FormatRankings(rankings)), nil
}
