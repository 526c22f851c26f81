// Package tools defines the Tool interface and per-conversation Registry the
// orchestrator draws from, plus the Executor that dispatches accepted tool
// calls. Tool failures are data, not control flow: every error is folded into
// a result the model can read.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/gridiron-ai/gridiron/internal/llm"
)

const maxInlineOutputChars = 2500

// Tool is one executable capability exposed to the model.
type Tool interface {
	Name() string
	Description() string
	Schema() map[string]any
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// Registry stores the tools offered to a single conversation. It validates
// and describes tools but never executes them.
type Registry struct {
	byName map[string]Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Tool)}
}

// Register adds a tool by unique name.
func (r *Registry) Register(tool Tool) error {
	if tool == nil {
		return errors.New("tool cannot be nil")
	}
	name := tool.Name()
	if name == "" {
		return errors.New("tool name cannot be empty")
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}
	r.byName[name] = tool
	return nil
}

// Lookup returns a tool by name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	tool, ok := r.byName[name]
	return tool, ok
}

// Names returns registered tool names in stable order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions converts registered tools into request tool definitions,
// sorted by name.
func (r *Registry) Definitions() []llm.ToolDefinition {
	names := r.Names()
	defs := make([]llm.ToolDefinition, 0, len(names))
	for _, name := range names {
		tool := r.byName[name]
		defs = append(defs, llm.ToolDefinition{
			Name:        tool.Name(),
			Description: tool.Description(),
			Parameters:  tool.Schema(),
		})
	}
	return defs
}

// Truncate caps tool output at a size that keeps transcripts affordable.
func Truncate(output string) string {
	if len(output) <= maxInlineOutputChars {
		return output
	}
	return fmt.Sprintf("%s\n...[truncated %d chars]", output[:maxInlineOutputChars], len(output)-maxInlineOutputChars)
}
