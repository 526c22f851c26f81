package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gridiron-ai/gridiron/internal/config"
)

func TestSlackSendPostsWebhook(t *testing.T) {
	t.Parallel()

	var body map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected json content type, got %q", r.Header.Get("Content-Type"))
		}
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("unmarshal payload: %v", err)
		}
	}))
	defer server.Close()

	s := &Slack{Client: server.Client(), WebhookURL: server.URL}
	if err := s.Send(context.Background(), "Week 8 Start/Sit", "Start Allen."); err != nil {
		t.Fatalf("send: %v", err)
	}
	if want := "*Week 8 Start/Sit*\nStart Allen."; body["text"] != want {
		t.Fatalf("expected text %q, got %q", want, body["text"])
	}
}

func TestSlackSendReportsErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer server.Close()

	s := &Slack{Client: server.Client(), WebhookURL: server.URL}
	err := s.Send(context.Background(), "", "hi")
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestDiscordSendChunksLongMessages(t *testing.T) {
	t.Parallel()

	var contents []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]string
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("unmarshal payload: %v", err)
		}
		contents = append(contents, body["content"])
	}))
	defer server.Close()

	text := strings.Repeat(strings.Repeat("x", 90)+"\n", 40)
	d := &Discord{Client: server.Client(), WebhookURL: server.URL}
	if err := d.Send(context.Background(), "Waivers", text); err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(contents) < 2 {
		t.Fatalf("expected chunked delivery, got %d messages", len(contents))
	}
	for i, content := range contents {
		if len([]rune(content)) > discordContentLimit {
			t.Fatalf("chunk %d exceeds limit: %d runes", i, len([]rune(content)))
		}
	}
	if !strings.HasPrefix(contents[0], "**Waivers**") {
		t.Fatalf("expected title in first chunk, got %q", contents[0][:40])
	}
}

func TestChunkMessage(t *testing.T) {
	t.Parallel()

	t.Run("short text passes through", func(t *testing.T) {
		t.Parallel()
		chunks := ChunkMessage("hello\nworld", 100)
		if len(chunks) != 1 || chunks[0] != "hello\nworld" {
			t.Fatalf("unexpected chunks %q", chunks)
		}
	})

	t.Run("splits on newlines", func(t *testing.T) {
		t.Parallel()
		text := strings.Repeat("a", 60) + "\n" + strings.Repeat("b", 60)
		chunks := ChunkMessage(text, 100)
		if len(chunks) != 2 {
			t.Fatalf("expected 2 chunks, got %d: %q", len(chunks), chunks)
		}
		if !strings.HasPrefix(chunks[1], "b") {
			t.Fatalf("expected clean line split, got %q", chunks[1])
		}
	})

	t.Run("hard splits overlong lines", func(t *testing.T) {
		t.Parallel()
		chunks := ChunkMessage(strings.Repeat("c", 250), 100)
		if len(chunks) != 3 {
			t.Fatalf("expected 3 chunks, got %d", len(chunks))
		}
		for _, c := range chunks {
			if len(c) > 100 {
				t.Fatalf("chunk exceeds limit: %d", len(c))
			}
		}
	})
}

func TestPushoverSendsForm(t *testing.T) {
	t.Parallel()

	var form map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		form = r.PostForm
	}))
	defer server.Close()

	p := &Pushover{Client: server.Client(), BaseURL: server.URL, Token: "app-token", User: "user-key"}
	long := strings.Repeat("y", 2000)
	if err := p.Send(context.Background(), "Matchup", long); err != nil {
		t.Fatalf("send: %v", err)
	}

	if form["token"][0] != "app-token" || form["user"][0] != "user-key" || form["title"][0] != "Matchup" {
		t.Fatalf("unexpected form %v", form)
	}
	if msg := form["message"][0]; len([]rune(msg)) > pushoverMessageLimit {
		t.Fatalf("expected message truncated to %d, got %d", pushoverMessageLimit, len([]rune(msg)))
	}
}

type fakeNotifier struct {
	calls int
	err   error
}

func (f *fakeNotifier) Send(ctx context.Context, title, text string) error {
	f.calls++
	return f.err
}

func TestMultiContinuesPastFailures(t *testing.T) {
	t.Parallel()

	broken := &fakeNotifier{err: errors.New("slack: webhook returned 410 Gone")}
	healthy := &fakeNotifier{}

	err := Multi{broken, healthy}.Send(context.Background(), "t", "x")
	if err == nil || !strings.Contains(err.Error(), "410") {
		t.Fatalf("expected aggregated failure, got %v", err)
	}
	if healthy.calls != 1 {
		t.Fatalf("expected healthy notifier to still run, got %d calls", healthy.calls)
	}
}

func TestMultiEmptyIsNoOp(t *testing.T) {
	t.Parallel()

	if err := (Multi{}).Send(context.Background(), "t", "x"); err != nil {
		t.Fatalf("expected nil error from empty multi, got %v", err)
	}
}

func TestFromConfigBuildsConfiguredTargets(t *testing.T) {
	t.Parallel()

	targets, err := FromConfig(config.NotifyConfig{
		Slack:    config.SlackConfig{WebhookURL: "https://hooks.slack.example/x"},
		Discord:  config.DiscordConfig{WebhookURL: "https://discord.example/webhook"},
		Pushover: config.PushoverConfig{Token: "tok"},
		Telegram: config.TelegramConfig{Enabled: false, Token: "ignored", ChatID: 5},
	}, nil)
	if err != nil {
		t.Fatalf("from config: %v", err)
	}

	// Pushover lacks a user key and Telegram is disabled.
	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(targets))
	}
}
