package fantasy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const espnBaseURL = "https://lm-api-reads.fantasy.espn.com"

// seasonTotalThreshold is the weekly-points ceiling above which a projection
// is treated as a season total and divided across a 17-game season.
const seasonTotalThreshold = 60.0

// ESPNClient reads rosters from the ESPN fantasy v3 API. SWID and ESPNS2 are
// the auth cookies for private leagues and may be empty for public ones.
type ESPNClient struct {
	Client  *http.Client
	BaseURL string
	// Season of 0 resolves to the current NFL season.
	Season int
	SWID   string
	ESPNS2 string
}

// Roster fetches the lineup of one team. Week of 0 uses the league's current
// scoring period.
func (c *ESPNClient) Roster(ctx context.Context, leagueID, teamID string, week int) (*Roster, error) {
	if c.Client == nil {
		return nil, errors.New("http client is required")
	}
	if strings.TrimSpace(leagueID) == "" {
		return nil, errors.New("league id is required")
	}
	wantTeam, err := strconv.Atoi(strings.TrimSpace(teamID))
	if err != nil {
		return nil, fmt.Errorf("team id must be numeric, got %q", teamID)
	}

	season := c.Season
	if season == 0 {
		season = CurrentSeason(time.Now())
	}
	base := c.BaseURL
	if base == "" {
		base = espnBaseURL
	}

	url := fmt.Sprintf("%s/apis/v3/games/ffl/seasons/%d/segments/0/leagues/%s", base, season, leagueID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create roster request: %w", err)
	}
	q := req.URL.Query()
	q.Add("view", "mTeam")
	q.Add("view", "mRoster")
	if week > 0 {
		q.Set("scoringPeriodId", strconv.Itoa(week))
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")
	if c.SWID != "" {
		req.AddCookie(&http.Cookie{Name: "SWID", Value: c.SWID})
	}
	if c.ESPNS2 != "" {
		req.AddCookie(&http.Cookie{Name: "espn_s2", Value: c.ESPNS2})
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute roster request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read roster response: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("espn returned %s (private leagues need espn_s2 and SWID cookies)", resp.Status)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("roster request failed: %s", resp.Status)
	}

	var payload espnLeagueResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode roster response: %w", err)
	}

	for _, team := range payload.Teams {
		if team.ID != wantTeam {
			continue
		}
		roster := &Roster{TeamName: team.displayName()}
		for _, entry := range team.Roster.Entries {
			player := entry.PlayerPoolEntry.Player
			roster.Players = append(roster.Players, Player{
				Name:         player.FullName,
				Position:     espnPositionName(player.DefaultPositionID),
				ProTeam:      espnProTeamName(player.ProTeamID),
				Slot:         espnSlotName(entry.LineupSlotID),
				InjuryStatus: player.InjuryStatus,
				Projected:    weeklyProjection(player.Stats, week),
			})
		}
		return roster, nil
	}
	return nil, fmt.Errorf("team %d not found in league %s", wantTeam, leagueID)
}

type espnLeagueResponse struct {
	Teams []espnTeam `json:"teams"`
}

type espnTeam struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Nickname string `json:"nickname"`
	Roster   struct {
		Entries []struct {
			LineupSlotID    int `json:"lineupSlotId"`
			PlayerPoolEntry struct {
				Player struct {
					FullName          string     `json:"fullName"`
					DefaultPositionID int        `json:"defaultPositionId"`
					ProTeamID         int        `json:"proTeamId"`
					InjuryStatus      string     `json:"injuryStatus"`
					Stats             []espnStat `json:"stats"`
				} `json:"player"`
			} `json:"playerPoolEntry"`
		} `json:"entries"`
	} `json:"roster"`
}

type espnStat struct {
	ScoringPeriodID int     `json:"scoringPeriodId"`
	StatSourceID    int     `json:"statSourceId"`
	AppliedTotal    float64 `json:"appliedTotal"`
}

// displayName handles both payload generations: newer leagues carry a single
// name field, older ones split location and nickname.
func (t espnTeam) displayName() string {
	if t.Name != "" {
		return t.Name
	}
	return strings.TrimSpace(t.Location + " " + t.Nickname)
}

// weeklyProjection picks the projected points for week from a player's stat
// lines (statSourceId 1 marks projections). A value above the weekly ceiling
// is a season total and is spread across a 17-game season.
func weeklyProjection(stats []espnStat, week int) float64 {
	var points float64
	for _, s := range stats {
		if s.StatSourceID != 1 {
			continue
		}
		if week > 0 && s.ScoringPeriodID == week {
			points = s.AppliedTotal
			break
		}
		if s.AppliedTotal > points {
			points = s.AppliedTotal
		}
	}
	if points > seasonTotalThreshold {
		points /= 17
	}
	return points
}

var espnPositions = map[int]string{
	1:  "QB",
	2:  "RB",
	3:  "WR",
	4:  "TE",
	5:  "K",
	16: "D/ST",
}

func espnPositionName(id int) string {
	if name, ok := espnPositions[id]; ok {
		return name
	}
	return fmt.Sprintf("POS%d", id)
}

var espnSlots = map[int]string{
	0:  "QB",
	2:  "RB",
	4:  "WR",
	6:  "TE",
	16: "D/ST",
	17: "K",
	20: "BE",
	21: "IR",
	23: "FLEX",
}

func espnSlotName(id int) string {
	if name, ok := espnSlots[id]; ok {
		return name
	}
	return fmt.Sprintf("SLOT%d", id)
}

var espnProTeams = map[int]string{
	1: "ATL", 2: "BUF", 3: "CHI", 4: "CIN", 5: "CLE", 6: "DAL", 7: "DEN",
	8: "DET", 9: "GB", 10: "TEN", 11: "IND", 12: "KC", 13: "LV", 14: "LAR",
	15: "MIA", 16: "MIN", 17: "NE", 18: "NO", 19: "NYG", 20: "NYJ", 21: "PHI",
	22: "ARI", 23: "PIT", 24: "LAC", 25: "SF", 26: "SEA", 27: "TB", 28: "WSH",
	29: "CAR", 30: "JAX", 33: "BAL", 34: "HOU",
}

func espnProTeamName(id int) string {
	if name, ok := espnProTeams[id]; ok {
		return name
	}
	return "FA"
}
