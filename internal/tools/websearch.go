package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

const braveSearchEndpoint = "https://api.search.brave.com/res/v1/web/search"
const defaultUserAgent = "Gridiron"
const defaultSearchResults = 5

// WebSearchTool searches the web through the Brave Search API and returns
// structured text results for the model.
type WebSearchTool struct {
	Client     *http.Client
	APIKey     string
	MaxResults int
	// Endpoint overrides the Brave API URL, used by tests.
	Endpoint string
}

// Name returns the tool name.
func (t WebSearchTool) Name() string {
	return "web_search"
}

// Description returns the tool description for the model.
func (t WebSearchTool) Description() string {
	return "Search the web and return titles, URLs, and snippets. Use for current news like injuries, depth charts, and weather."
}

// Schema returns the JSON schema for web_search args.
func (t WebSearchTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Search query text",
			},
			"count": map[string]any{
				"type":        "integer",
				"description": "Number of results to return (default 5, max 10)",
			},
		},
		"required": []string{"query"},
	}
}

// Execute performs the search and returns numbered text results.
func (t WebSearchTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	query, err := stringArg(args, "query")
	if err != nil {
		return "", err
	}
	count, err := optionalIntArg(args, "count", t.maxResults())
	if err != nil {
		return "", err
	}
	if count < 1 {
		count = 1
	}
	if count > 10 {
		count = 10
	}

	if strings.TrimSpace(t.APIKey) == "" {
		return "", errors.New("tools.web_search.api_key is required")
	}
	if t.Client == nil {
		return "", errors.New("http client is required")
	}

	endpoint := t.Endpoint
	if endpoint == "" {
		endpoint = braveSearchEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create search request: %w", err)
	}
	q := req.URL.Query()
	q.Set("q", query)
	q.Set("count", strconv.Itoa(count))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", t.APIKey)
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := t.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("search request failed: %s", resp.Status)
	}

	var payload struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode search response: %w", err)
	}
	if len(payload.Web.Results) == 0 {
		return "no results", nil
	}

	var out strings.Builder
	for i, result := range payload.Web.Results {
		if i >= count {
			break
		}
		if i > 0 {
			out.WriteString("\n\n")
		}
		title := strings.TrimSpace(result.Title)
		if title == "" {
			title = "(untitled)"
		}
		out.WriteString(fmt.Sprintf("%d. %s\n", i+1, title))
		out.WriteString("URL: ")
		out.WriteString(strings.TrimSpace(result.URL))
		description := strings.TrimSpace(result.Description)
		if description != "" {
			out.WriteString("\nSnippet: ")
			out.WriteString(description)
		}
	}
	return Truncate(out.String()), nil
}

func (t WebSearchTool) maxResults() int {
	if t.MaxResults > 0 {
		return t.MaxResults
	}
	return defaultSearchResults
}
