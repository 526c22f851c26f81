// Package session persists conversation history as JSONL transcripts, one
// file per channel session, so the assistant keeps context across restarts.
package session

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/gridiron-ai/gridiron/internal/llm"
	"github.com/gridiron-ai/gridiron/internal/store"
)

// Store persists one channel's conversation history in a JSONL file.
type Store struct {
	path string
	mu   sync.Mutex
}

type record struct {
	Role       llm.Role         `json:"role"`
	Content    string           `json:"content,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
	ToolName   string           `json:"tool_name,omitempty"`
	ToolCalls  []toolCallRecord `json:"tool_calls,omitempty"`
}

type toolCallRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"`
}

// New creates a session store for one channel session file.
func New(path string) *Store {
	return &Store{path: path}
}

// Load reads all valid JSONL records from disk into chat messages. A missing
// file is an empty session. Malformed lines are skipped so one corrupt entry
// never strands the whole transcript.
func (s *Store) Load(ctx context.Context) ([]llm.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.path == "" {
		return nil, errors.New("session path is required")
	}

	content, err := store.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []llm.ChatMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	messages := make([]llm.ChatMessage, 0)
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		msg := llm.ChatMessage{
			Role:       rec.Role,
			Content:    rec.Content,
			ToolCallID: rec.ToolCallID,
			ToolName:   rec.ToolName,
		}
		for _, call := range rec.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, llm.ToolCall{
				ID:        call.ID,
				Name:      call.Name,
				Arguments: call.Arguments,
			})
		}
		messages = append(messages, msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan session file: %w", err)
	}
	return messages, nil
}

// Append appends messages as JSONL records.
func (s *Store) Append(ctx context.Context, messages []llm.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if len(messages) == 0 {
		return nil
	}
	if s == nil || s.path == "" {
		return errors.New("session path is required")
	}

	encoded, err := encode(messages)
	if err != nil {
		return err
	}
	if err := store.AppendFile(s.path, encoded); err != nil {
		return fmt.Errorf("append session record: %w", err)
	}
	return nil
}

// Rewrite replaces the session file with the provided message list.
func (s *Store) Rewrite(ctx context.Context, messages []llm.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.path == "" {
		return errors.New("session path is required")
	}

	encoded, err := encode(messages)
	if err != nil {
		return err
	}
	if err := store.WriteFile(s.path, encoded); err != nil {
		return fmt.Errorf("rewrite session file: %w", err)
	}
	return nil
}

// Reset clears all persisted session history.
func (s *Store) Reset(ctx context.Context) error {
	return s.Rewrite(ctx, nil)
}

func encode(messages []llm.ChatMessage) ([]byte, error) {
	var b bytes.Buffer
	for _, msg := range messages {
		rec := record{
			Role:       msg.Role,
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
			ToolName:   msg.ToolName,
		}
		for _, call := range msg.ToolCalls {
			rec.ToolCalls = append(rec.ToolCalls, toolCallRecord{
				ID:        call.ID,
				Name:      call.Name,
				Arguments: call.Arguments,
			})
		}
		encoded, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("marshal session record: %w", err)
		}
		b.Write(encoded)
		b.WriteByte('\n')
	}
	return b.Bytes(), nil
}
