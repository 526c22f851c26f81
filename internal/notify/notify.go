// Package notify delivers advice runs and alerts to outbound channels:
// Slack, Discord, Pushover, and Telegram. Notifiers are best-effort and
// independent; Multi fans a message out to all configured targets.
package notify

import (
	"context"
	"errors"
	"net/http"

	"github.com/gridiron-ai/gridiron/internal/config"
)

// Notifier sends one titled message to a channel.
type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// Multi fans a message out to every notifier and aggregates failures. A
// failing target never blocks delivery to the others.
type Multi []Notifier

var _ Notifier = (Multi)(nil)

func (m Multi) Send(ctx context.Context, title, text string) error {
	var errs []error
	for _, n := range m {
		if err := n.Send(ctx, title, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FromConfig builds the notifiers enabled in config. The client is shared by
// the webhook notifiers; Telegram manages its own transport.
func FromConfig(cfg config.NotifyConfig, client *http.Client) (Multi, error) {
	if client == nil {
		client = http.DefaultClient
	}

	var targets Multi
	if cfg.Slack.WebhookURL != "" {
		targets = append(targets, &Slack{Client: client, WebhookURL: cfg.Slack.WebhookURL})
	}
	if cfg.Discord.WebhookURL != "" {
		targets = append(targets, &Discord{Client: client, WebhookURL: cfg.Discord.WebhookURL})
	}
	if cfg.Pushover.Token != "" && cfg.Pushover.User != "" {
		targets = append(targets, &Pushover{Client: client, Token: cfg.Pushover.Token, User: cfg.Pushover.User})
	}
	if cfg.Telegram.Enabled && cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
		tg, err := NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			return nil, err
		}
		targets = append(targets, tg)
	}
	return targets, nil
}
