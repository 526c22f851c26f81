package fantasy

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const espnLeagueFixture = `{
	"teams": [
		{
			"id": 7,
			"name": "Gridiron Gang",
			"roster": {
				"entries": [
					{
						"lineupSlotId": 0,
						"playerPoolEntry": {
							"player": {
								"fullName": "Josh Allen",
								"defaultPositionId": 1,
								"proTeamId": 2,
								"injuryStatus": "ACTIVE",
								"stats": [
									{"scoringPeriodId": 8, "statSourceId": 0, "appliedTotal": 18.0},
									{"scoringPeriodId": 8, "statSourceId": 1, "appliedTotal": 22.4}
								]
							}
						}
					},
					{
						"lineupSlotId": 2,
						"playerPoolEntry": {
							"player": {
								"fullName": "Bijan Robinson",
								"defaultPositionId": 2,
								"proTeamId": 1,
								"injuryStatus": "QUESTIONABLE",
								"stats": [
									{"scoringPeriodId": 0, "statSourceId": 1, "appliedTotal": 255.0}
								]
							}
						}
					},
					{
						"lineupSlotId": 20,
						"playerPoolEntry": {
							"player": {
								"fullName": "Jaylen Waddle",
								"defaultPositionId": 3,
								"proTeamId": 15,
								"injuryStatus": "ACTIVE",
								"stats": []
							}
						}
					}
				]
			}
		},
		{"id": 9, "location": "Punt", "nickname": "Intended", "roster": {"entries": []}}
	]
}`

func TestESPNRosterFetchesAndMapsTeam(t *testing.T) {
	t.Parallel()

	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(r.Context())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(espnLeagueFixture))
	}))
	defer server.Close()

	client := &ESPNClient{
		Client:  server.Client(),
		BaseURL: server.URL,
		Season:  2025,
		SWID:    "{ABC-123}",
		ESPNS2:  "s2cookie",
	}

	roster, err := client.Roster(context.Background(), "123456", "7", 8)
	if err != nil {
		t.Fatalf("fetch roster: %v", err)
	}

	if want := "/apis/v3/games/ffl/seasons/2025/segments/0/leagues/123456"; got.URL.Path != want {
		t.Fatalf("expected path %s, got %s", want, got.URL.Path)
	}
	if got.URL.Query().Get("scoringPeriodId") != "8" {
		t.Fatalf("expected scoringPeriodId=8, got %q", got.URL.RawQuery)
	}
	views := got.URL.Query()["view"]
	if len(views) != 2 {
		t.Fatalf("expected two view params, got %v", views)
	}
	if c, err := got.Cookie("SWID"); err != nil || c.Value != "{ABC-123}" {
		t.Fatalf("expected SWID cookie, got %v (%v)", c, err)
	}
	if c, err := got.Cookie("espn_s2"); err != nil || c.Value != "s2cookie" {
		t.Fatalf("expected espn_s2 cookie, got %v (%v)", c, err)
	}

	if roster.TeamName != "Gridiron Gang" {
		t.Fatalf("expected team name Gridiron Gang, got %q", roster.TeamName)
	}
	if len(roster.Players) != 3 {
		t.Fatalf("expected 3 players, got %d", len(roster.Players))
	}

	qb := roster.Players[0]
	if qb.Name != "Josh Allen" || qb.Position != "QB" || qb.ProTeam != "BUF" || qb.Slot != "QB" {
		t.Fatalf("unexpected QB mapping: %+v", qb)
	}
	if qb.Projected != 22.4 {
		t.Fatalf("expected week projection 22.4, got %.2f", qb.Projected)
	}

	bench := roster.Players[2]
	if bench.Slot != "BE" {
		t.Fatalf("expected bench slot BE, got %q", bench.Slot)
	}
}

func TestESPNRosterSpreadsSeasonTotalProjection(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(espnLeagueFixture))
	}))
	defer server.Close()

	client := &ESPNClient{Client: server.Client(), BaseURL: server.URL, Season: 2025}
	roster, err := client.Roster(context.Background(), "123456", "7", 8)
	if err != nil {
		t.Fatalf("fetch roster: %v", err)
	}

	rb := roster.Players[1]
	if want := 255.0 / 17; math.Abs(rb.Projected-want) > 1e-9 {
		t.Fatalf("expected season total spread to %.2f, got %.2f", want, rb.Projected)
	}
}

func TestESPNRosterTeamNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(espnLeagueFixture))
	}))
	defer server.Close()

	client := &ESPNClient{Client: server.Client(), BaseURL: server.URL, Season: 2025}
	_, err := client.Roster(context.Background(), "123456", "42", 0)
	if err == nil || !strings.Contains(err.Error(), "team 42 not found") {
		t.Fatalf("expected team-not-found error, got %v", err)
	}
}

func TestESPNRosterPrivateLeagueHint(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := &ESPNClient{Client: server.Client(), BaseURL: server.URL, Season: 2025}
	_, err := client.Roster(context.Background(), "123456", "7", 0)
	if err == nil || !strings.Contains(err.Error(), "espn_s2") {
		t.Fatalf("expected private league hint, got %v", err)
	}
}

func TestESPNRosterRejectsBadTeamID(t *testing.T) {
	t.Parallel()

	client := &ESPNClient{Client: http.DefaultClient}
	if _, err := client.Roster(context.Background(), "123456", "best-team", 0); err == nil {
		t.Fatalf("expected error for non-numeric team id")
	}
}
