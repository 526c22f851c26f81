package channels

import (
	"context"
	"errors"
	"strings"

	"github.com/gridiron-ai/gridiron/internal/agent"
	"github.com/gridiron-ai/gridiron/internal/llm"
	"github.com/gridiron-ai/gridiron/internal/logging"
	"github.com/gridiron-ai/gridiron/internal/runtime"
	"github.com/gridiron-ai/gridiron/internal/session"
)

// historyLimit bounds how much persisted context is replayed into a run so
// old transcripts never dominate the token budget.
const historyLimit = 40

// Asker runs one advisor conversation over optional seeded history.
type Asker interface {
	Ask(ctx context.Context, question string, history []llm.ChatMessage) (*agent.Result, error)
}

// AdvisorHandler answers channel messages with advisor runs and persists
// each exchange to the channel's session transcript. Only the question and
// the final answer are persisted; intermediate tool traffic stays in logs.
type AdvisorHandler struct {
	Advisor Asker
	Session *session.Store
}

var _ runtime.Handler = (*AdvisorHandler)(nil)

// HandleMessage runs one question through the advisor and writes the answer.
func (h *AdvisorHandler) HandleMessage(ctx context.Context, w runtime.ResponseWriter, msg *runtime.Message) error {
	if h.Advisor == nil {
		return errors.New("advisor is required")
	}
	if msg == nil {
		return nil
	}
	question := strings.TrimSpace(msg.Text)
	if question == "" {
		return nil
	}

	var history []llm.ChatMessage
	if h.Session != nil {
		loaded, err := h.Session.Load(ctx)
		if err != nil {
			logging.Logger().Warn("session load failed, starting fresh", "err", err)
		} else {
			history = trimHistory(loaded, historyLimit)
		}
	}

	res, err := h.Advisor.Ask(ctx, question, history)
	if err != nil {
		return err
	}
	if err := w.WriteMessage(ctx, res.Content); err != nil {
		return err
	}

	if h.Session != nil {
		exchange := []llm.ChatMessage{
			{Role: llm.RoleUser, Content: question},
			{Role: llm.RoleAssistant, Content: res.Content},
		}
		if err := h.Session.Append(ctx, exchange); err != nil {
			logging.Logger().Warn("session append failed", "err", err)
		}
	}
	return nil
}

// Reset clears the handler's session transcript.
func (h *AdvisorHandler) Reset(ctx context.Context) error {
	if h.Session == nil {
		return nil
	}
	return h.Session.Reset(ctx)
}

func trimHistory(history []llm.ChatMessage, limit int) []llm.ChatMessage {
	if limit <= 0 || len(history) <= limit {
		return history
	}
	return history[len(history)-limit:]
}
