package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gridiron-ai/gridiron/internal/llm"
	"github.com/gridiron-ai/gridiron/internal/logging"
)

const defaultCallTimeout = 30 * time.Second

// Executor runs accepted tool calls against a registry. Calls within one
// batch run concurrently; Dispatch returns only after every call has
// produced a result.
type Executor struct {
	registry *Registry
	timeout  time.Duration
}

// NewExecutor creates an executor over registry. A non-positive timeout
// selects the default per-call timeout.
func NewExecutor(registry *Registry, timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &Executor{registry: registry, timeout: timeout}
}

// Dispatch executes one batch of tool calls and returns results in request
// order, one per call. Failures never escape as errors: unknown tools,
// bad arguments, tool errors, and panics all become IsError results the
// model can read.
func (e *Executor) Dispatch(ctx context.Context, calls []llm.ToolCall) []llm.ToolResult {
	results := make([]llm.ToolResult, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		tool, ok := e.registry.Lookup(call.Name)
		if !ok {
			err := &UnknownToolError{Name: call.Name, Known: e.registry.Names()}
			logging.Logger().Warn("tool call rejected", "tool", call.Name, "error", err)
			results[i] = errorResult(call, err)
			continue
		}
		wg.Add(1)
		go func(i int, call llm.ToolCall, tool Tool) {
			defer wg.Done()
			results[i] = e.run(ctx, tool, call)
		}(i, call, tool)
	}
	wg.Wait()
	return results
}

func (e *Executor) run(ctx context.Context, tool Tool, call llm.ToolCall) (result llm.ToolResult) {
	log := logging.Logger()
	defer func() {
		if r := recover(); r != nil {
			log.Error("tool call panicked", "tool", call.Name, "panic", r)
			result = errorResult(call, &ToolDispatchError{Name: call.Name, Err: fmt.Errorf("panic: %v", r)})
		}
	}()

	args, err := decodeArgs(call.Arguments)
	if err != nil {
		log.Warn("tool call rejected", "tool", call.Name, "error", err)
		return errorResult(call, &ToolDispatchError{Name: call.Name, Err: err})
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	log.Info("tool call start", "tool", call.Name, "args", summarizeToolArgs(args))
	start := time.Now()
	output, err := tool.Execute(callCtx, args)
	if err != nil {
		log.Warn("tool call failed", "tool", call.Name, "duration_ms", time.Since(start).Milliseconds(), "error", err)
		return errorResult(call, &ToolDispatchError{Name: call.Name, Err: err})
	}
	log.Info("tool call complete", "tool", call.Name, "duration_ms", time.Since(start).Milliseconds(), "output_chars", len(output))
	return llm.ToolResult{ToolCallID: call.ID, Name: call.Name, Content: output}
}

func errorResult(call llm.ToolCall, err error) llm.ToolResult {
	return llm.ToolResult{ToolCallID: call.ID, Name: call.Name, Content: err.Error(), IsError: true}
}

func decodeArgs(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("invalid tool arguments: %w", err)
	}
	return args, nil
}

func summarizeToolArgs(args map[string]any) string {
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprintf("%v", args)
	}
	const limit = 200
	if len(data) > limit {
		return string(data[:limit]) + "..."
	}
	return string(data)
}
