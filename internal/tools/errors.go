package tools

import (
	"fmt"
	"strings"
)

// UnknownToolError reports a model request for a tool that is not registered.
type UnknownToolError struct {
	Name  string
	Known []string
}

func (e *UnknownToolError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown tool %s (no tools registered)", e.Name)
	}
	return fmt.Sprintf("unknown tool %s (available: %s)", e.Name, strings.Join(e.Known, ", "))
}

// ToolDispatchError wraps a failure raised while running a tool, including
// recovered panics and per-call timeouts.
type ToolDispatchError struct {
	Name string
	Err  error
}

func (e *ToolDispatchError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Name, e.Err)
}

func (e *ToolDispatchError) Unwrap() error {
	return e.Err
}
