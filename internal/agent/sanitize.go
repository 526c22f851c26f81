package agent

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gridiron-ai/gridiron/internal/llm"
)

// validateArguments checks that raw tool-call arguments parse as a JSON
// object. Empty arguments count as an empty object.
func validateArguments(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return errors.New("arguments are not a JSON object")
	}
	return nil
}

// sanitizeToolTurns normalizes tool-call/tool-result pairing in a seeded
// transcript. Vendors reject histories where an assistant tool call has no
// matching result or a result answers no call, so orphans on either side
// are dropped before the first provider request. The bool reports whether
// anything changed.
func sanitizeToolTurns(messages []llm.ChatMessage) ([]llm.ChatMessage, bool) {
	if len(messages) == 0 {
		return []llm.ChatMessage{}, false
	}

	out := make([]llm.ChatMessage, 0, len(messages))
	changed := false

	for i := 0; i < len(messages); i++ {
		msg := messages[i]

		// Tool results reached outside an assistant tool-call turn are orphans.
		if msg.Role == llm.RoleTool {
			changed = true
			continue
		}

		if msg.Role != llm.RoleAssistant || len(msg.ToolCalls) == 0 {
			out = append(out, msg)
			continue
		}

		j := i + 1
		for j < len(messages) && messages[j].Role == llm.RoleTool {
			j++
		}

		if j == i+1 {
			assistant := msg
			assistant.ToolCalls = nil
			out = append(out, assistant)
			changed = true
			continue
		}

		resultsByID := make(map[string][]llm.ChatMessage, len(msg.ToolCalls))
		resultOrder := make([]string, 0, len(msg.ToolCalls))
		for k := i + 1; k < j; k++ {
			id := messages[k].ToolCallID
			if id == "" {
				changed = true
				continue
			}
			if _, ok := resultsByID[id]; !ok {
				resultOrder = append(resultOrder, id)
			}
			resultsByID[id] = append(resultsByID[id], messages[k])
		}

		filteredCalls := make([]llm.ToolCall, 0, len(msg.ToolCalls))
		validCallIDs := make(map[string]struct{}, len(msg.ToolCalls))
		for _, call := range msg.ToolCalls {
			if len(resultsByID[call.ID]) == 0 {
				changed = true
				continue
			}
			filteredCalls = append(filteredCalls, call)
			validCallIDs[call.ID] = struct{}{}
		}

		assistant := msg
		assistant.ToolCalls = filteredCalls
		out = append(out, assistant)

		for _, id := range resultOrder {
			if _, ok := validCallIDs[id]; !ok {
				changed = true
				continue
			}
			out = append(out, resultsByID[id]...)
		}

		if len(filteredCalls) != len(msg.ToolCalls) {
			changed = true
		}
		i = j - 1
	}

	return out, changed
}
