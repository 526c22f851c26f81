package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gridiron-ai/gridiron/internal/config"
	"github.com/gridiron-ai/gridiron/internal/llm"
)

const (
	perplexityName    = "perplexity"
	perplexityBaseURL = "https://api.perplexity.ai"
)

var perplexityModels = []string{
	"sonar",
	"sonar-pro",
	"sonar-reasoning",
}

var perplexityPricing = llm.PriceTable{
	Entries: []llm.PriceEntry{
		{Match: "sonar-pro", Pricing: llm.Pricing{InputPerMTok: 3.00, OutputPerMTok: 15.00}},
		{Match: "sonar-reasoning", Pricing: llm.Pricing{InputPerMTok: 1.00, OutputPerMTok: 5.00}},
		{Match: "sonar", Pricing: llm.Pricing{InputPerMTok: 1.00, OutputPerMTok: 1.00}},
	},
	Default: llm.Pricing{InputPerMTok: 1.00, OutputPerMTok: 1.00},
}

// perplexityProvider speaks the Perplexity chat completions API directly over
// HTTP. Perplexity has no native tool channel, so tool calling runs through
// the text-simulated codec.
type perplexityProvider struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	client    *http.Client
}

func newPerplexityProvider(cfg config.LLMProviderConfig) (llm.Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("perplexity api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("perplexity model is required")
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = perplexityBaseURL
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &perplexityProvider{
		apiKey:    cfg.APIKey,
		baseURL:   baseURL,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

func (p *perplexityProvider) Name() string     { return perplexityName }
func (p *perplexityProvider) Models() []string { return perplexityModels }

func (p *perplexityProvider) Pricing(model string) llm.Pricing {
	return perplexityPricing.Lookup(model)
}

func (p *perplexityProvider) SupportsTools() bool { return false }

type perplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type perplexityRequest struct {
	Model       string              `json:"model"`
	Messages    []perplexityMessage `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature *float64            `json:"temperature,omitempty"`
}

type perplexityResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []struct {
		FinishReason string `json:"finish_reason"`
		Message      struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Citations []string `json:"citations"`
}

type perplexityErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (p *perplexityProvider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	systemPrompt := req.SystemPrompt
	if len(req.Tools) > 0 && req.ToolChoice != llm.ToolChoiceNone {
		suffix := simulatedToolsSuffix(req.Tools)
		if systemPrompt != "" {
			systemPrompt += "\n\n" + suffix
		} else {
			systemPrompt = suffix
		}
	}

	body := perplexityRequest{
		Model:       p.model,
		Messages:    toPerplexityMessages(systemPrompt, req.Messages),
		MaxTokens:   resolveMaxTokens(req.MaxTokens, p.maxTokens),
		Temperature: req.Temperature,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &llm.ProviderError{Provider: perplexityName, Model: p.model, Kind: llm.KindInvalidRequest, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, &llm.ProviderError{Provider: perplexityName, Model: p.model, Kind: llm.KindInvalidRequest, Err: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, llm.WrapTransportError(perplexityName, p.model, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, llm.WrapTransportError(perplexityName, p.model, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, perplexityError(p.model, httpResp, data)
	}

	var parsed perplexityResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &llm.ProviderError{
			Provider: perplexityName,
			Model:    p.model,
			Kind:     llm.KindBadResponse,
			Message:  "undecodable response body",
			Err:      err,
		}
	}
	if len(parsed.Choices) == 0 {
		return nil, &llm.ProviderError{
			Provider: perplexityName,
			Model:    p.model,
			Kind:     llm.KindBadResponse,
			Message:  "response contained no choices",
		}
	}

	choice := parsed.Choices[0]
	content := choice.Message.Content
	finish := perplexityFinishReason(choice.FinishReason)

	resp := &llm.ChatResponse{
		Usage: llm.TokenUsage{
			InputTokens:  parsed.Usage.PromptTokens,
			OutputTokens: parsed.Usage.CompletionTokens,
			TotalTokens:  parsed.Usage.TotalTokens,
		},
		Model: parsed.Model,
	}

	if len(req.Tools) > 0 && req.ToolChoice != llm.ToolChoiceNone {
		if remaining, call, ok := parseSimulatedToolCall(content, req.Tools); ok {
			call.ID = "sim-" + uuid.NewString()
			resp.Content = remaining
			resp.ToolCalls = []llm.ToolCall{call}
			resp.FinishReason = llm.FinishToolUse
			resp.Simulated = true
			return resp, nil
		}
	}

	if len(parsed.Citations) > 0 {
		content = appendCitations(content, parsed.Citations)
	}
	resp.Content = content
	resp.FinishReason = finish
	return resp, nil
}

// toPerplexityMessages flattens history into the strict system/user/assistant
// alternation Perplexity requires. Tool results and orchestrator notes become
// user text, and consecutive same-role messages merge into one.
func toPerplexityMessages(systemPrompt string, messages []llm.ChatMessage) []perplexityMessage {
	out := make([]perplexityMessage, 0, len(messages)+1)
	if systemPrompt != "" {
		out = append(out, perplexityMessage{Role: "system", Content: systemPrompt})
	}

	appendMerged := func(role, content string) {
		if len(out) > 0 && out[len(out)-1].Role == role {
			out[len(out)-1].Content += "\n\n" + content
			return
		}
		out = append(out, perplexityMessage{Role: role, Content: content})
	}

	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleUser, llm.RoleSystem:
			appendMerged("user", msg.Content)
		case llm.RoleAssistant:
			content := msg.Content
			// Simulated calls were stripped from the assistant text when
			// parsed; restore them so history reads back the way the model
			// wrote it.
			for _, tc := range msg.ToolCalls {
				line := tc.Name + ": " + tc.Arguments
				if content != "" {
					content += "\n"
				}
				content += line
			}
			appendMerged("assistant", content)
		case llm.RoleTool:
			appendMerged("user", renderToolResultText(msg))
		}
	}
	return out
}

func appendCitations(content string, citations []string) string {
	var b strings.Builder
	b.WriteString(content)
	b.WriteString("\n\nSources:")
	for i, c := range citations {
		fmt.Fprintf(&b, "\n[%d] %s", i+1, c)
	}
	return b.String()
}

func perplexityFinishReason(reason string) llm.FinishReason {
	switch reason {
	case "stop":
		return llm.FinishStop
	case "length":
		return llm.FinishLength
	case "content_filter":
		return llm.FinishContentFilter
	case "":
		return llm.FinishUnknown
	default:
		return llm.FinishUnknown
	}
}

func perplexityError(model string, resp *http.Response, body []byte) *llm.ProviderError {
	pe := &llm.ProviderError{
		Provider:   perplexityName,
		Model:      model,
		StatusCode: resp.StatusCode,
		Kind:       llm.KindFromStatus(resp.StatusCode),
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
	}

	var parsed perplexityErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		pe.Message = parsed.Error.Message
	} else {
		msg := strings.TrimSpace(string(body))
		if len(msg) > 200 {
			msg = msg[:200]
		}
		pe.Message = msg
	}
	return pe
}
