// Package fantasy fetches league data from ESPN and consensus rankings from
// FantasyPros, and assembles the prompt text for advice runs. Clients take an
// injectable http.Client and base URL so tests can stub the vendors.
package fantasy

import (
	"fmt"
	"strings"
	"time"
)

// Player is one rostered player.
type Player struct {
	Name         string
	Position     string
	ProTeam      string
	Slot         string
	InjuryStatus string
	Projected    float64
}

// Roster is a fantasy team's current lineup.
type Roster struct {
	TeamName string
	Players  []Player
}

// Ranking is one row of a consensus ranking list.
type Ranking struct {
	Rank     int
	Name     string
	Team     string
	Position string
	Tier     int
}

// CurrentSeason returns the NFL season year containing now. January through
// July belong to the prior season's year.
func CurrentSeason(now time.Time) int {
	if now.Month() >= time.August {
		return now.Year()
	}
	return now.Year() - 1
}

// CurrentWeek estimates the NFL week for now, clamped to 1..18. Fantasy
// weeks roll over on Tuesdays.
func CurrentWeek(now time.Time) int {
	kickoff := seasonKickoff(CurrentSeason(now))
	firstRollover := kickoff.AddDate(0, 0, 5)
	if now.Before(firstRollover) {
		return 1
	}
	week := 2 + int(now.Sub(firstRollover).Hours()/(24*7))
	if week > 18 {
		week = 18
	}
	return week
}

// seasonKickoff returns the opening Thursday of a season, three days after
// the first Monday of September.
func seasonKickoff(season int) time.Time {
	d := time.Date(season, time.September, 1, 0, 0, 0, 0, time.Local)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d.AddDate(0, 0, 3)
}

// benchSlots are lineup slots that do not score.
var benchSlots = map[string]bool{
	"BE": true,
	"IR": true,
}

// FormatRoster renders a roster as prompt-ready text, starters before bench.
func FormatRoster(r *Roster) string {
	var out strings.Builder
	fmt.Fprintf(&out, "Team: %s\n", r.TeamName)

	writeGroup := func(header string, bench bool) {
		wrote := false
		for _, p := range r.Players {
			if benchSlots[p.Slot] != bench {
				continue
			}
			if !wrote {
				out.WriteString(header + "\n")
				wrote = true
			}
			fmt.Fprintf(&out, "  %-4s %s (%s, %s)", p.Slot, p.Name, p.Position, p.ProTeam)
			if p.Projected > 0 {
				fmt.Fprintf(&out, " proj %.1f", p.Projected)
			}
			if p.InjuryStatus != "" && p.InjuryStatus != "ACTIVE" {
				fmt.Fprintf(&out, " [%s]", p.InjuryStatus)
			}
			out.WriteString("\n")
		}
	}
	writeGroup("Starters:", false)
	writeGroup("Bench:", true)

	return strings.TrimRight(out.String(), "\n")
}

// FormatRankings renders consensus rankings as prompt-ready text.
func FormatRankings(rankings []Ranking) string {
	if len(rankings) == 0 {
		return "no rankings available"
	}
	var out strings.Builder
	for i, r := range rankings {
		if i > 0 {
			out.WriteString("\n")
		}
		fmt.Fprintf(&out, "%d. %s (%s, %s)", r.Rank, r.Name, r.Position, r.Team)
		if r.Tier > 0 {
			fmt.Fprintf(&out, " tier %d", r.Tier)
		}
	}
	return out.String()
}
