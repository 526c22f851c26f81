package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Slack posts to a Slack incoming webhook.
type Slack struct {
	Client     *http.Client
	WebhookURL string
}

var _ Notifier = (*Slack)(nil)

func (s *Slack) Send(ctx context.Context, title, text string) error {
	if s.Client == nil {
		return errors.New("slack: http client is required")
	}
	if s.WebhookURL == "" {
		return errors.New("slack: webhook url is required")
	}

	message := text
	if title != "" {
		message = "*" + title + "*\n" + text
	}
	body, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return fmt.Errorf("slack: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("slack: execute request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("slack: webhook returned %s", resp.Status)
	}
	return nil
}
