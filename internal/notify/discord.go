package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// discordContentLimit is Discord's per-message content cap.
const discordContentLimit = 2000

// Discord posts to a Discord webhook, splitting long messages across the
// 2000-character content limit.
type Discord struct {
	Client     *http.Client
	WebhookURL string
}

var _ Notifier = (*Discord)(nil)

func (d *Discord) Send(ctx context.Context, title, text string) error {
	if d.Client == nil {
		return errors.New("discord: http client is required")
	}
	if d.WebhookURL == "" {
		return errors.New("discord: webhook url is required")
	}

	message := text
	if title != "" {
		message = "**" + title + "**\n" + text
	}

	for _, chunk := range ChunkMessage(message, discordContentLimit) {
		if err := d.post(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (d *Discord) post(ctx context.Context, content string) error {
	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return fmt.Errorf("discord: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("discord: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return fmt.Errorf("discord: execute request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("discord: webhook returned %s", resp.Status)
	}
	return nil
}

// ChunkMessage splits text into pieces of at most limit runes, preferring
// newline boundaries. A single overlong line is hard-split.
func ChunkMessage(text string, limit int) []string {
	if limit <= 0 || len([]rune(text)) <= limit {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)
		for len(runes) > limit {
			flush()
			chunks = append(chunks, string(runes[:limit]))
			runes = runes[limit:]
		}

		lineLen := len(runes)
		extra := lineLen
		if currentLen > 0 {
			extra++
		}
		if currentLen+extra > limit {
			flush()
		}
		if currentLen > 0 {
			current.WriteString("\n")
			currentLen++
		}
		current.WriteString(string(runes))
		currentLen += lineLen
	}
	flush()

	if len(chunks) == 0 {
		return []string{""}
	}
	return chunks
}
