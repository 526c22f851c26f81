package fantasy

import (
	"bytes"
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

const fantasyProsBaseURL = "https://api.fantasypros.com"

// FantasyProsClient reads weekly consensus rankings.
type FantasyProsClient struct {
	Client  *http.Client
	BaseURL string
	APIKey  string
	// Scoring defaults to PPR.
	Scoring string
	// Season of 0 resolves to the current NFL season.
	Season int
}

// Rankings fetches the weekly expert-consensus ranking for one position.
// Week of 0 uses the provider's current week.
func (c *FantasyProsClient) Rankings(ctx context.Context, position string, week int) ([]Ranking, error) {
	if c.Client == nil {
		return nil, errors.New("http client is required")
	}
	position = strings.ToUpper(strings.TrimSpace(position))
	if position == "" {
		return nil, errors.New("position is required")
	}

	season := c.Season
	if season == 0 {
		season = CurrentSeason(time.Now())
	}
	scoring := c.Scoring
	if scoring == "" {
		scoring = "PPR"
	}
	base := c.BaseURL
	if base == "" {
		base = fantasyProsBaseURL
	}

	url := fmt.Sprintf("%s/v2/json/nfl/%d/consensus-rankings", base, season)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create rankings request: %w", err)
	}
	q := req.URL.Query()
	q.Set("type", "weekly")
	q.Set("scoring", scoring)
	q.Set("position", position)
	if week > 0 {
		q.Set("week", strconv.Itoa(week))
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("x-api-key", c.APIKey)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute rankings request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read rankings response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("rankings request failed: %s", resp.Status)
	}

	var payload struct {
		Players []struct {
			Name     string  `json:"player_name"`
			Rank     flexInt `json:"rank_ecr"`
			Team     string  `json:"player_team_id"`
			Position string  `json:"player_position_id"`
			Tier     flexInt `json:"tier"`
		} `json:"players"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode rankings response: %w", err)
	}

	rankings := make([]Ranking, 0, len(payload.Players))
	for _, p := range payload.Players {
		if p.Name == "" {
			continue
		}
		rankings = append(rankings, Ranking{
			Rank:     int(p.Rank),
			Name:     p.Name,
			Team:     p.Team,
			Position: p.Position,
			Tier:     int(p.Tier),
		})
	}
	return rankings, nil
}

// flexInt tolerates rank fields arriving as numbers or quoted numbers, which
// the FantasyPros payload mixes between endpoints.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("parse rank %q: %w", s, err)
		}
		*f = flexInt(n)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}
