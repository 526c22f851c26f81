package tools

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

type webRoundTripFunc func(*http.Request) (*http.Response, error)

func (f webRoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestWebSearchToolExecute(t *testing.T) {
	client := &http.Client{
		Transport: webRoundTripFunc(func(req *http.Request) (*http.Response, error) {
			if req.Method != http.MethodGet {
				t.Fatalf("expected GET, got %s", req.Method)
			}
			if req.URL.Host != "api.search.brave.com" {
				t.Fatalf("unexpected host: %s", req.URL.Host)
			}
			if got := req.URL.Query().Get("q"); got != "bijan robinson injury" {
				t.Fatalf("unexpected query: %q", got)
			}
			if got := req.URL.Query().Get("count"); got != "5" {
				t.Fatalf("expected default count 5, got %q", got)
			}
			if got := req.Header.Get("X-Subscription-Token"); got != "brave-key" {
				t.Fatalf("expected brave token header, got %q", got)
			}
			if got := req.Header.Get("User-Agent"); got != "Gridiron" {
				t.Fatalf("expected Gridiron user agent, got %q", got)
			}
			body := `{"web":{"results":[{"title":"Robinson practices","url":"https://example.com/news","description":"Full participant Friday"}]}}`
			return &http.Response{
				StatusCode: 200,
				Status:     "200 OK",
				Header:     make(http.Header),
				Body:       io.NopCloser(strings.NewReader(body)),
			}, nil
		}),
	}

	tool := WebSearchTool{Client: client, APIKey: "brave-key"}
	output, err := tool.Execute(context.Background(), map[string]any{"query": "bijan robinson injury"})
	if err != nil {
		t.Fatalf("execute web_search: %v", err)
	}
	if !strings.Contains(output, "1. Robinson practices") {
		t.Fatalf("expected title in output, got %q", output)
	}
	if !strings.Contains(output, "URL: https://example.com/news") {
		t.Fatalf("expected url in output, got %q", output)
	}
	if !strings.Contains(output, "Snippet: Full participant Friday") {
		t.Fatalf("expected snippet in output, got %q", output)
	}
}

func TestWebSearchToolClampsCount(t *testing.T) {
	client := &http.Client{
		Transport: webRoundTripFunc(func(req *http.Request) (*http.Response, error) {
			if got := req.URL.Query().Get("count"); got != "10" {
				t.Fatalf("expected clamped count 10, got %q", got)
			}
			body := `{"web":{"results":[]}}`
			return &http.Response{
				StatusCode: 200,
				Status:     "200 OK",
				Header:     make(http.Header),
				Body:       io.NopCloser(strings.NewReader(body)),
			}, nil
		}),
	}

	tool := WebSearchTool{Client: client, APIKey: "brave-key"}
	output, err := tool.Execute(context.Background(), map[string]any{
		"query": "waiver wire",
		"count": float64(50),
	})
	if err != nil {
		t.Fatalf("execute web_search: %v", err)
	}
	if output != "no results" {
		t.Fatalf("expected no results text, got %q", output)
	}
}

func TestWebSearchToolRequiresAPIKey(t *testing.T) {
	tool := WebSearchTool{Client: &http.Client{}}
	_, err := tool.Execute(context.Background(), map[string]any{"query": "golang"})
	if err == nil || !strings.Contains(err.Error(), "tools.web_search.api_key is required") {
		t.Fatalf("expected missing api key error, got %v", err)
	}
}

func TestWebSearchToolRequiresQuery(t *testing.T) {
	tool := WebSearchTool{Client: &http.Client{}, APIKey: "brave-key"}
	_, err := tool.Execute(context.Background(), map[string]any{})
	if err == nil || !strings.Contains(err.Error(), `missing required argument "query"`) {
		t.Fatalf("expected missing query error, got %v", err)
	}
}

func TestHTTPRequestToolExecute(t *testing.T) {
	client := &http.Client{
		Transport: webRoundTripFunc(func(req *http.Request) (*http.Response, error) {
			if req.Method != http.MethodPatch {
				t.Fatalf("expected PATCH, got %s", req.Method)
			}
			if req.URL.String() != "https://example.com/path" {
				t.Fatalf("unexpected url: %s", req.URL.String())
			}
			if got := req.Header.Get("X-Test"); got != "value" {
				t.Fatalf("expected custom header value, got %q", got)
			}
			bodyBytes, err := io.ReadAll(req.Body)
			if err != nil {
				t.Fatalf("read request body: %v", err)
			}
			if string(bodyBytes) != "payload" {
				t.Fatalf("expected body payload, got %q", string(bodyBytes))
			}
			return &http.Response{
				StatusCode: 200,
				Status:     "200 OK",
				Header:     make(http.Header),
				Body:       io.NopCloser(strings.NewReader("hello body")),
			}, nil
		}),
	}

	tool := HTTPRequestTool{Client: client}
	output, err := tool.Execute(context.Background(), map[string]any{
		"method": "patch",
		"url":    "https://example.com/path",
		"body":   "payload",
		"headers": map[string]any{
			"X-Test": "value",
		},
	})
	if err != nil {
		t.Fatalf("execute http_request: %v", err)
	}
	if !strings.Contains(output, "URL: https://example.com/path") {
		t.Fatalf("expected URL in output, got %q", output)
	}
	if !strings.Contains(output, "Status: 200 OK") {
		t.Fatalf("expected status in output, got %q", output)
	}
	if !strings.Contains(output, "hello body") {
		t.Fatalf("expected body in output, got %q", output)
	}
}

func TestHTTPRequestToolRejectsInvalidHeaderValueType(t *testing.T) {
	tool := HTTPRequestTool{Client: &http.Client{}}
	_, err := tool.Execute(context.Background(), map[string]any{
		"method": "GET",
		"url":    "https://example.com",
		"headers": map[string]any{
			"X-Test": 1,
		},
	})
	if err == nil || !strings.Contains(err.Error(), "header X-Test must be a string") {
		t.Fatalf("expected header type error, got %v", err)
	}
}

func TestHTTPRequestToolRejectsUnsupportedMethod(t *testing.T) {
	tool := HTTPRequestTool{Client: &http.Client{}}
	_, err := tool.Execute(context.Background(), map[string]any{
		"method": "CONNECT",
		"url":    "https://example.com",
	})
	if err == nil || !strings.Contains(err.Error(), "unsupported method") {
		t.Fatalf("expected unsupported method error, got %v", err)
	}
}
