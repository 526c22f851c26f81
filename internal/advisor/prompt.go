package advisor

import (
	"fmt"
	"strings"
	"time"

	"github.com/gridiron-ai/gridiron/internal/config"
	"github.com/gridiron-ai/gridiron/internal/fantasy"
)

// systemPrompt builds the persona and grounding context for one run.
func systemPrompt(cfg *config.Config, now time.Time) string {
	var out strings.Builder
	out.WriteString("You are Gridiron, a fantasy football assistant. ")
	out.WriteString("Give direct, decisive advice: name who to start, claim, or trade and why, in a few short paragraphs or a compact list. ")
	out.WriteString("When you need current data, use the available tools instead of guessing; if a tool fails, say what is missing rather than inventing numbers.\n\n")

	fmt.Fprintf(&out, "Today is %s, NFL week %d of the %d season.",
		now.Format("Monday, January 2, 2006"),
		fantasy.CurrentWeek(now),
		fantasy.CurrentSeason(now),
	)
	if cfg.League.LeagueID != "" {
		fmt.Fprintf(&out, " The user plays in ESPN league %s", cfg.League.LeagueID)
		if cfg.League.TeamID != "" {
			fmt.Fprintf(&out, " as team %s", cfg.League.TeamID)
		}
		out.WriteString(".")
	}
	return out.String()
}
