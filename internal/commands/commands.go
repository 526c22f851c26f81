// Package commands provides channel-agnostic slash command handling. Commands
// answer locally from config and the cost ledger; everything else goes to the
// model.
package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gridiron-ai/gridiron/internal/costs"
	"github.com/gridiron-ai/gridiron/internal/fantasy"
	"github.com/gridiron-ai/gridiron/internal/runtime"
)

const helpText = "Commands: /help, /new, /reset, /costs, /week, /jobs. Anything else is sent to the assistant."

// Resetter resets the active conversation/session state.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Job describes one configured scheduled run.
type Job struct {
	Name string
	Spec string
	Next time.Time
}

// JobsFunc reports the currently scheduled runs.
type JobsFunc func() []Job

// Handler dispatches supported slash commands. Fields left nil disable the
// corresponding command with a short notice instead of an error.
type Handler struct {
	Resetter Resetter
	Ledger   costs.Ledger
	Jobs     JobsFunc

	DailyLimitUSD   float64
	MonthlyLimitUSD float64
}

// Handle executes one command and reports whether it was handled.
func (h *Handler) Handle(ctx context.Context, cmd string, w runtime.ResponseWriter) (handled bool, err error) {
	if w == nil {
		return false, errors.New("response writer is required")
	}

	switch normalize(cmd) {
	case "/help", "/commands", "/start":
		return true, w.WriteMessage(ctx, helpText)
	case "/new", "/reset":
		return true, h.handleReset(ctx, w)
	case "/costs":
		return true, h.handleCosts(ctx, w)
	case "/week":
		return true, h.handleWeek(ctx, w)
	case "/jobs":
		return true, h.handleJobs(ctx, w)
	default:
		return false, nil
	}
}

func (h *Handler) handleReset(ctx context.Context, w runtime.ResponseWriter) error {
	if h.Resetter == nil {
		return w.WriteMessage(ctx, "No session to reset on this channel.")
	}
	if err := h.Resetter.Reset(ctx); err != nil {
		return err
	}
	return w.WriteMessage(ctx, "Session cleared.")
}

func (h *Handler) handleCosts(ctx context.Context, w runtime.ResponseWriter) error {
	if h.Ledger == nil {
		return w.WriteMessage(ctx, "Cost tracking is not configured.")
	}
	spend, err := h.Ledger.Spend(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("read spend: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Spend today: %s", FormatSpend(spend.TodayUSD, h.DailyLimitUSD))
	fmt.Fprintf(&b, "\nThis month: %s", FormatSpend(spend.MonthUSD, h.MonthlyLimitUSD))
	return w.WriteMessage(ctx, b.String())
}

func (h *Handler) handleWeek(ctx context.Context, w runtime.ResponseWriter) error {
	now := time.Now()
	return w.WriteMessage(ctx, fmt.Sprintf(
		"NFL week %d of the %d season.",
		fantasy.CurrentWeek(now),
		fantasy.CurrentSeason(now),
	))
}

func (h *Handler) handleJobs(ctx context.Context, w runtime.ResponseWriter) error {
	if h.Jobs == nil {
		return w.WriteMessage(ctx, "The scheduler is not running on this server.")
	}
	jobs := h.Jobs()
	if len(jobs) == 0 {
		return w.WriteMessage(ctx, "No scheduled runs. Add [schedule] entries to config.toml.")
	}

	var b strings.Builder
	b.WriteString("Scheduled runs:\n")
	for i, job := range jobs {
		fmt.Fprintf(&b, "%d. %s (%s)", i+1, job.Name, job.Spec)
		if !job.Next.IsZero() {
			fmt.Fprintf(&b, " next %s", job.Next.Format("Mon Jan 2 15:04"))
		}
		if i < len(jobs)-1 {
			b.WriteByte('\n')
		}
	}
	return w.WriteMessage(ctx, b.String())
}

// FormatSpend renders a dollar amount, with the limit when one is set.
func FormatSpend(spent, limit float64) string {
	if limit > 0 {
		return fmt.Sprintf("$%.4f of $%.2f", spent, limit)
	}
	return fmt.Sprintf("$%.4f", spent)
}

// Router dispatches slash commands before delegating to the next runtime.Handler.
type Router struct {
	Commands *Handler
	Next     runtime.Handler
}

// HandleMessage runs command dispatch first, then forwards non-command input.
func (r Router) HandleMessage(ctx context.Context, w runtime.ResponseWriter, msg *runtime.Message) error {
	if msg == nil {
		return errors.New("message is required")
	}
	if r.Next == nil {
		return errors.New("next handler is required")
	}
	if r.Commands != nil {
		handled, err := r.Commands.Handle(ctx, msg.Text, w)
		if handled || err != nil {
			return err
		}
	}
	return r.Next.HandleMessage(ctx, w, msg)
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
