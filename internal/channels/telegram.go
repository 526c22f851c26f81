package channels

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/gridiron-ai/gridiron/internal/logging"
	"github.com/gridiron-ai/gridiron/internal/notify"
	"github.com/gridiron-ai/gridiron/internal/runtime"
)

type telegramSendMessageFunc func(context.Context, *bot.SendMessageParams) (*models.Message, error)
type telegramSendChatActionFunc func(context.Context, *bot.SendChatActionParams) (bool, error)

var _ runtime.Listener = (*TelegramListener)(nil)

// TelegramListener long-polls one bot and answers messages from the single
// configured chat. Messages from any other chat are logged and dropped, so a
// leaked bot token cannot be used to run up provider spend.
type TelegramListener struct {
	token  string
	chatID int64

	sendMessage    telegramSendMessageFunc
	sendChatAction telegramSendChatActionFunc
}

// NewTelegram creates a Telegram listener bound to one chat ID.
func NewTelegram(token string, chatID int64) *TelegramListener {
	return &TelegramListener{token: token, chatID: chatID}
}

// Listen starts long-polling Telegram and dispatches messages from the
// allowed chat until ctx is done.
func (t *TelegramListener) Listen(ctx context.Context, handler runtime.Handler) error {
	if handler == nil {
		return errors.New("handler is required")
	}
	if strings.TrimSpace(t.token) == "" {
		return errors.New("telegram token is required")
	}
	if t.chatID == 0 {
		return errors.New("telegram chat_id is required")
	}

	dispatchCtx, cancelDispatch := context.WithCancel(ctx)
	dispatcher := runtime.NewDispatcher(&typingHandler{listener: t, next: handler}, defaultDispatchQueue)
	defaultHandler := func(updateCtx context.Context, _ *bot.Bot, update *models.Update) {
		if update == nil || update.Message == nil || update.Message.From == nil {
			return
		}
		t.handleInbound(updateCtx, dispatcher, update.Message)
	}

	b, err := bot.New(strings.TrimSpace(t.token), bot.WithDefaultHandler(defaultHandler), bot.WithSkipGetMe())
	if err != nil {
		cancelDispatch()
		return fmt.Errorf("create telegram bot: %w", err)
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		cancelDispatch()
		return fmt.Errorf("fetch telegram bot profile: %w", err)
	}
	logging.Logger().Info("connected to telegram", "bot", strings.TrimSpace(me.Username), "chat_id", t.chatID)

	t.sendMessage = b.SendMessage
	t.sendChatAction = b.SendChatAction

	if err := dispatcher.Start(dispatchCtx); err != nil {
		cancelDispatch()
		return err
	}
	defer func() {
		cancelDispatch()
		dispatcher.Wait()
	}()

	go b.Start(ctx)
	<-ctx.Done()
	dispatcher.Stop()
	return nil
}

func (t *TelegramListener) handleInbound(ctx context.Context, dispatcher *runtime.Dispatcher, msg *models.Message) {
	if msg == nil || msg.From == nil {
		return
	}
	if msg.Chat.ID != t.chatID {
		logging.Logger().Warn(
			"ignoring message from unknown chat",
			"chat_id", msg.Chat.ID,
			"user_id", msg.From.ID,
		)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	logging.Logger().Info(
		"telegram inbound message",
		"chat_id", msg.Chat.ID,
		"user_id", msg.From.ID,
		"text", messagePreview(text, 100),
	)

	writer := &telegramWriter{listener: t, chatID: msg.Chat.ID}
	if err := dispatcher.Enqueue(ctx, &runtime.Message{Text: text}, writer); err != nil {
		logging.Logger().Warn("telegram enqueue failed", "chat_id", msg.Chat.ID, "err", err)
	}
}

// telegramWriter renders answers as Telegram HTML and falls back to plain
// text when Telegram rejects the markup.
type telegramWriter struct {
	listener *TelegramListener
	chatID   int64
}

func (w *telegramWriter) WriteMessage(ctx context.Context, text string) error {
	if w == nil || w.listener == nil {
		return errors.New("telegram sender is not configured")
	}

	rendered := notify.MarkdownToTelegramHTML(text)
	for _, chunk := range notify.ChunkMessage(rendered, notify.TelegramMessageLimit) {
		if err := w.sendChunk(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (w *telegramWriter) sendChunk(ctx context.Context, chunk string) error {
	send := w.listener.sendMessage
	if send == nil {
		return errors.New("telegram bot is not connected")
	}

	_, htmlErr := send(ctx, &bot.SendMessageParams{
		ChatID:    w.chatID,
		Text:      chunk,
		ParseMode: models.ParseModeHTML,
	})
	if htmlErr == nil {
		return nil
	}
	logging.Logger().Warn("telegram html send failed, retrying as plain text", "chat_id", w.chatID, "err", htmlErr)

	_, plainErr := send(ctx, &bot.SendMessageParams{
		ChatID: w.chatID,
		Text:   notify.StripHTMLTags(chunk),
	})
	if plainErr != nil {
		return errors.Join(htmlErr, plainErr)
	}
	return nil
}

// typingHandler keeps the chat's typing indicator alive while the advisor
// works on a non-command message.
type typingHandler struct {
	listener *TelegramListener
	next     runtime.Handler
}

func (h *typingHandler) HandleMessage(ctx context.Context, w runtime.ResponseWriter, msg *runtime.Message) error {
	if writer, ok := w.(*telegramWriter); ok && h.listener != nil {
		if msg != nil && !strings.HasPrefix(strings.TrimSpace(msg.Text), "/") {
			typingCtx, stopTyping := context.WithCancel(ctx)
			defer stopTyping()
			go h.listener.runTypingIndicator(typingCtx, writer.chatID)
		}
	}
	return h.next.HandleMessage(ctx, w, msg)
}

func (t *TelegramListener) runTypingIndicator(ctx context.Context, chatID int64) {
	t.sendTypingAction(ctx, chatID)

	ticker := time.NewTicker(4 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.sendTypingAction(ctx, chatID)
		}
	}
}

func (t *TelegramListener) sendTypingAction(ctx context.Context, chatID int64) {
	send := t.sendChatAction
	if send == nil {
		return
	}
	send(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	})
}

func messagePreview(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
