package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/gridiron-ai/gridiron/internal/logging"
)

// TelegramMessageLimit is Telegram's per-message text cap.
const TelegramMessageLimit = 4096

type telegramSendFunc func(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)

// Telegram sends notifications to one chat, rendering markdown into
// Telegram-safe HTML.
type Telegram struct {
	chatID int64
	send   telegramSendFunc
}

var _ Notifier = (*Telegram)(nil)

// NewTelegram connects a notifier to one chat. The token is not verified
// until the first send so startup works offline.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("telegram: token is required")
	}
	if chatID == 0 {
		return nil, errors.New("telegram: chat_id is required")
	}
	b, err := bot.New(strings.TrimSpace(token), bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("telegram: create bot: %w", err)
	}
	return &Telegram{chatID: chatID, send: b.SendMessage}, nil
}

func (t *Telegram) Send(ctx context.Context, title, text string) error {
	if t.send == nil {
		return errors.New("telegram: bot is not connected")
	}

	message := text
	if title != "" {
		message = "**" + title + "**\n\n" + text
	}

	rendered := MarkdownToTelegramHTML(message)
	for _, chunk := range ChunkMessage(rendered, TelegramMessageLimit) {
		if err := t.sendChunk(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (t *Telegram) sendChunk(ctx context.Context, chunk string) error {
	_, err := t.send(ctx, &bot.SendMessageParams{
		ChatID:    t.chatID,
		Text:      chunk,
		ParseMode: models.ParseModeHTML,
	})
	if err == nil {
		return nil
	}

	// Telegram rejects malformed HTML outright; plain text still delivers.
	logging.Logger().Warn("telegram html send failed, retrying as plain text", "err", err)
	if _, plainErr := t.send(ctx, &bot.SendMessageParams{
		ChatID: t.chatID,
		Text:   StripHTMLTags(chunk),
	}); plainErr != nil {
		return fmt.Errorf("telegram: send message: %w", errors.Join(err, plainErr))
	}
	return nil
}
