package fantasy

import (
	"fmt"
	"strings"
)

// StartSitPrompt assembles the user prompt for a weekly start/sit review.
func StartSitPrompt(roster *Roster, rankings []Ranking, week int) string {
	var out strings.Builder
	fmt.Fprintf(&out, "Review my fantasy football lineup for week %d.\n\n", week)
	out.WriteString(FormatRoster(roster))
	out.WriteString("\n\nConsensus rankings for context:\n")
	out.WriteString(FormatRankings(rankings))
	out.WriteString("\n\nRecommend who to start and who to sit at each position. ")
	out.WriteString("Call out injury risks and tough matchups, and keep the final answer short enough to read on a phone.")
	return out.String()
}

// WaiverPrompt assembles the user prompt for a waiver-wire scan.
func WaiverPrompt(roster *Roster, rankings []Ranking, week int) string {
	var out strings.Builder
	fmt.Fprintf(&out, "Scan the waiver wire ahead of week %d.\n\n", week)
	out.WriteString(FormatRoster(roster))
	out.WriteString("\n\nConsensus rankings for context:\n")
	out.WriteString(FormatRankings(rankings))
	out.WriteString("\n\nSuggest the top pickups worth a claim, who to drop for each, and a priority order. ")
	out.WriteString("Skip players who are obviously rostered in every league.")
	return out.String()
}

// MatchupPrompt assembles the user prompt for a head-to-head preview.
func MatchupPrompt(roster, opponent *Roster, week int) string {
	var out strings.Builder
	fmt.Fprintf(&out, "Preview my week %d fantasy football matchup.\n\nMy roster:\n", week)
	out.WriteString(FormatRoster(roster))
	if opponent != nil {
		out.WriteString("\n\nOpponent roster:\n")
		out.WriteString(FormatRoster(opponent))
	}
	out.WriteString("\n\nEstimate the result, name the swing players on both sides, and flag any lineup change that improves my odds.")
	return out.String()
}
