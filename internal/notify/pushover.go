package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const pushoverEndpoint = "https://api.pushover.net/1/messages.json"

// pushoverMessageLimit is Pushover's message length cap.
const pushoverMessageLimit = 1024

// Pushover posts to the Pushover message API.
type Pushover struct {
	Client  *http.Client
	BaseURL string
	Token   string
	User    string
}

var _ Notifier = (*Pushover)(nil)

func (p *Pushover) Send(ctx context.Context, title, text string) error {
	if p.Client == nil {
		return errors.New("pushover: http client is required")
	}
	if p.Token == "" || p.User == "" {
		return errors.New("pushover: token and user are required")
	}

	if runes := []rune(text); len(runes) > pushoverMessageLimit {
		text = string(runes[:pushoverMessageLimit-1]) + "…"
	}

	form := url.Values{}
	form.Set("token", p.Token)
	form.Set("user", p.User)
	form.Set("message", text)
	if title != "" {
		form.Set("title", title)
	}

	endpoint := p.BaseURL
	if endpoint == "" {
		endpoint = pushoverEndpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("pushover: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("pushover: execute request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("pushover: api returned %s", resp.Status)
	}
	return nil
}
