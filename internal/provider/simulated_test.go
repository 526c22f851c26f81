package provider

import (
	"strings"
	"testing"

	"github.com/gridiron-ai/gridiron/internal/llm"
)

var simTools = []llm.ToolDefinition{
	{
		Name:        "get_roster",
		Description: "Fetch the configured fantasy roster",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"week": map[string]any{"type": "integer"}},
		},
	},
	{
		Name:        "web_search",
		Description: "Search the web",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"query": map[string]any{"type": "string"}},
			"required":   []string{"query"},
		},
	},
}

func TestSimulatedToolsSuffix_ListsEveryTool(t *testing.T) {
	suffix := simulatedToolsSuffix(simTools)

	for _, name := range []string{"get_roster", "web_search"} {
		if !strings.Contains(suffix, name) {
			t.Fatalf("expected suffix to mention %q:\n%s", name, suffix)
		}
	}
	if !strings.Contains(suffix, `"query"`) {
		t.Fatalf("expected suffix to include parameter schema:\n%s", suffix)
	}
	if simulatedToolsSuffix(nil) != "" {
		t.Fatalf("expected empty suffix for no tools")
	}
}

func TestParseSimulatedToolCall_RecoversCall(t *testing.T) {
	text := "Let me check that.\nweb_search: {\"query\": \"Bijan Robinson status\"}"

	content, call, ok := parseSimulatedToolCall(text, simTools)
	if !ok {
		t.Fatalf("expected a tool call to be recovered")
	}
	if call.Name != "web_search" {
		t.Fatalf("unexpected tool name %q", call.Name)
	}
	if call.Arguments != `{"query":"Bijan Robinson status"}` {
		t.Fatalf("unexpected arguments %q", call.Arguments)
	}
	if content != "Let me check that." {
		t.Fatalf("unexpected remaining content %q", content)
	}
}

func TestParseSimulatedToolCall_StripsCodeFences(t *testing.T) {
	text := "```\nget_roster: {\"week\": 3}\n```"

	_, call, ok := parseSimulatedToolCall(text, simTools)
	if !ok {
		t.Fatalf("expected fenced call to parse")
	}
	if call.Name != "get_roster" {
		t.Fatalf("unexpected tool name %q", call.Name)
	}
}

func TestParseSimulatedToolCall_MultilineJSON(t *testing.T) {
	text := "web_search: {\n  \"query\": \"waiver wire RBs\"\n}\nI'll report back."

	content, call, ok := parseSimulatedToolCall(text, simTools)
	if !ok {
		t.Fatalf("expected multiline call to parse")
	}
	if call.Name != "web_search" {
		t.Fatalf("unexpected tool name %q", call.Name)
	}
	if content != "I'll report back." {
		t.Fatalf("unexpected remaining content %q", content)
	}
}

func TestParseSimulatedToolCall_BracesInsideStrings(t *testing.T) {
	text := `web_search: {"query": "odd {braces} inside"}`

	_, call, ok := parseSimulatedToolCall(text, simTools)
	if !ok {
		t.Fatalf("expected call with embedded braces to parse")
	}
	if !strings.Contains(call.Arguments, "odd {braces} inside") {
		t.Fatalf("unexpected arguments %q", call.Arguments)
	}
}

func TestParseSimulatedToolCall_RejectsUnknownAndMalformed(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"unknown tool", `fetch_stats: {"week": 1}`},
		{"malformed json", `web_search: {"query": }`},
		{"unterminated object", `web_search: {"query": "x"`},
		{"no json payload", `web_search: please look this up`},
		{"plain text", "Sit him this week. His matchup is brutal."},
		{"mid sentence mention", "You could use web_search: it finds injury news."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			content, _, ok := parseSimulatedToolCall(tc.text, simTools)
			if ok {
				t.Fatalf("expected no tool call for %q", tc.text)
			}
			if content != tc.text {
				t.Fatalf("expected original text back, got %q", content)
			}
		})
	}
}

func TestParseSimulatedToolCall_IndentedLineStillMatches(t *testing.T) {
	text := "  get_roster: {}"

	_, call, ok := parseSimulatedToolCall(text, simTools)
	if !ok {
		t.Fatalf("expected indented call to parse")
	}
	if call.Name != "get_roster" || call.Arguments != "{}" {
		t.Fatalf("unexpected call %+v", call)
	}
}

func TestRenderToolResultText_NamesTool(t *testing.T) {
	got := renderToolResultText(llm.ChatMessage{
		Role:       llm.RoleTool,
		ToolCallID: "sim-1",
		ToolName:   "get_roster",
		Content:    `{"team":"Mahomes Magic"}`,
	})
	if !strings.HasPrefix(got, "Result of get_roster:") {
		t.Fatalf("unexpected rendering %q", got)
	}
	if !strings.Contains(got, "Mahomes Magic") {
		t.Fatalf("expected payload in rendering %q", got)
	}
}
