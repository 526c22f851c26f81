package provider

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gridiron-ai/gridiron/internal/llm"
)

// Text-simulated tool calling for vendors without a native tool channel.
// The tool catalog rides in as a system prompt suffix, and the model is asked
// to answer with a single `tool_name: {json-args}` line when it wants a tool.
// Parsing is strict: an unknown name, malformed JSON, or a non-object payload
// all downgrade the reply to plain text rather than guessing.

const simulatedToolsHeader = `You have access to the following tools. To call one, reply with exactly one line of the form:

tool_name: {"arg": "value"}

The arguments must be a single JSON object matching the tool's parameters. Do not wrap the line in code fences and do not add commentary on the same line. When you have enough information to answer, reply normally without calling a tool.

Available tools:`

// simulatedToolsSuffix renders the tool catalog block appended to the system
// prompt for providers that lack native tool calling.
func simulatedToolsSuffix(tools []llm.ToolDefinition) string {
	if len(tools) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(simulatedToolsHeader)
	for _, tool := range tools {
		b.WriteString("\n\n")
		b.WriteString(tool.Name)
		b.WriteString(": ")
		b.WriteString(tool.Description)
		if len(tool.Parameters) > 0 {
			if schema, err := json.Marshal(tool.Parameters); err == nil {
				b.WriteString("\nparameters: ")
				b.Write(schema)
			}
		}
	}
	return b.String()
}

// parseSimulatedToolCall scans assistant text for a `tool_name: {...}`
// invocation of one of the offered tools. It returns the surrounding text
// with the invocation removed, the recovered call, and whether one was found.
// Arguments in the returned call are re-serialized canonical JSON.
func parseSimulatedToolCall(text string, tools []llm.ToolDefinition) (string, llm.ToolCall, bool) {
	stripped := stripCodeFences(text)

	for _, tool := range tools {
		idx := matchToolPrefix(stripped, tool.Name)
		if idx < 0 {
			continue
		}
		rest := stripped[idx+len(tool.Name):]
		colon := strings.Index(rest, ":")
		if colon < 0 {
			continue
		}
		payload, end, ok := extractJSONObject(rest[colon+1:])
		if !ok {
			continue
		}
		args := map[string]any{}
		if err := json.Unmarshal([]byte(payload), &args); err != nil {
			continue
		}
		canonical, err := json.Marshal(args)
		if err != nil {
			continue
		}

		before := strings.TrimSpace(stripped[:idx])
		after := strings.TrimSpace(rest[colon+1+end:])
		content := before
		if after != "" {
			if content != "" {
				content += "\n"
			}
			content += after
		}
		return content, llm.ToolCall{Name: tool.Name, Arguments: string(canonical)}, true
	}

	return text, llm.ToolCall{}, false
}

// matchToolPrefix finds the offset of a line starting with the tool name
// followed by a colon. Matching at line starts only keeps prose mentions of
// a tool name from being misread as invocations.
func matchToolPrefix(text, name string) int {
	offset := 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, name) {
			rest := strings.TrimLeft(trimmed[len(name):], " \t")
			if strings.HasPrefix(rest, ":") {
				return offset + (len(line) - len(trimmed))
			}
		}
		offset += len(line) + 1
	}
	return -1
}

// extractJSONObject returns the first balanced JSON object in s, the offset
// just past its closing brace, and whether one was found. Brace counting is
// string-aware so braces inside quoted values do not end the object early.
func extractJSONObject(s string) (string, int, bool) {
	start := strings.Index(s, "{")
	if start < 0 {
		return "", 0, false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], i + 1, true
			}
		}
	}
	return "", 0, false
}

// stripCodeFences removes markdown fence lines so a fenced invocation still
// parses. Fence content is kept as-is.
func stripCodeFences(text string) string {
	if !strings.Contains(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// renderToolResultText turns a tool result into plain text for providers that
// receive tool output through the user channel.
func renderToolResultText(msg llm.ChatMessage) string {
	name := msg.ToolName
	if name == "" {
		name = msg.ToolCallID
	}
	return fmt.Sprintf("Result of %s:\n%s", name, msg.Content)
}
