package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/gridiron-ai/gridiron/internal/config"
	"github.com/gridiron-ai/gridiron/internal/llm"
)

const openaiName = "openai"

var openaiModels = []string{
	"gpt-5",
	"gpt-4o",
	"gpt-4o-mini",
	"o3-mini",
}

var openaiPricing = llm.PriceTable{
	Entries: []llm.PriceEntry{
		{Match: "gpt-4o-mini", Pricing: llm.Pricing{InputPerMTok: 0.15, OutputPerMTok: 0.60}},
		{Match: "gpt-4o", Pricing: llm.Pricing{InputPerMTok: 2.50, OutputPerMTok: 10.00}},
		{Match: "o3-mini", Pricing: llm.Pricing{InputPerMTok: 1.10, OutputPerMTok: 4.40}},
		{Match: "gpt-5", Pricing: llm.Pricing{InputPerMTok: 1.25, OutputPerMTok: 10.00}},
	},
	Default: llm.Pricing{InputPerMTok: 2.50, OutputPerMTok: 10.00},
}

// openAICompatProvider speaks the OpenAI chat completions dialect. DeepSeek
// exposes the same wire format, so both adapters share this implementation and
// differ only in name, endpoint and price table.
type openAICompatProvider struct {
	name      string
	client    *openai.Client
	model     string
	maxTokens int
	models    []string
	pricing   llm.PriceTable
}

func newOpenAIProvider(cfg config.LLMProviderConfig) (llm.Provider, error) {
	return newOpenAICompatProvider(openaiName, "", openaiModels, openaiPricing, cfg)
}

func newOpenAICompatProvider(name, defaultBaseURL string, models []string, pricing llm.PriceTable, cfg config.LLMProviderConfig) (llm.Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%s api key is required", name)
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("%s model is required", name)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) != "" {
		clientConfig.BaseURL = cfg.BaseURL
	} else if defaultBaseURL != "" {
		clientConfig.BaseURL = defaultBaseURL
	}
	if cfg.RequestTimeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: cfg.RequestTimeout}
	}

	return &openAICompatProvider{
		name:      name,
		client:    openai.NewClientWithConfig(clientConfig),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		models:    models,
		pricing:   pricing,
	}, nil
}

func (p *openAICompatProvider) Name() string     { return p.name }
func (p *openAICompatProvider) Models() []string { return p.models }

func (p *openAICompatProvider) Pricing(model string) llm.Pricing {
	return p.pricing.Lookup(model)
}

func (p *openAICompatProvider) SupportsTools() bool { return true }

func (p *openAICompatProvider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	body := openai.ChatCompletionRequest{
		Model:     p.model,
		Messages:  toOpenAIMessages(req.SystemPrompt, req.Messages),
		MaxTokens: resolveMaxTokens(req.MaxTokens, p.maxTokens),
	}

	if req.Temperature != nil {
		body.Temperature = float32(*req.Temperature)
	}
	if len(req.Tools) > 0 {
		body.Tools = toOpenAITools(req.Tools)
		body.ToolChoice = toOpenAIToolChoice(req.ToolChoice)
	}

	resp, err := p.client.CreateChatCompletion(ctx, body)
	if err != nil {
		return nil, openaiError(p.name, p.model, err)
	}
	if len(resp.Choices) == 0 {
		return nil, &llm.ProviderError{
			Provider: p.name,
			Model:    p.model,
			Kind:     llm.KindBadResponse,
			Message:  "response contained no choices",
		}
	}

	choice := resp.Choices[0]
	calls := make([]llm.ToolCall, 0, len(choice.Message.ToolCalls))
	for _, tc := range choice.Message.ToolCalls {
		calls = append(calls, llm.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	return &llm.ChatResponse{
		Content:   choice.Message.Content,
		ToolCalls: calls,
		Usage: llm.TokenUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
		FinishReason: openaiFinishReason(choice.FinishReason, len(calls)),
		Model:        resp.Model,
	}, nil
}

func toOpenAIMessages(systemPrompt string, messages []llm.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if systemPrompt != "" {
		out = append(out, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleSystem:
			out = append(out, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleSystem,
				Content: msg.Content,
			})
		case llm.RoleUser:
			out = append(out, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: msg.Content,
			})
		case llm.RoleAssistant:
			m := openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: msg.Content,
			}
			for _, tc := range msg.ToolCalls {
				m.ToolCalls = append(m.ToolCalls, openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}
			out = append(out, m)
		case llm.RoleTool:
			out = append(out, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    msg.Content,
				Name:       msg.ToolName,
				ToolCallID: msg.ToolCallID,
			})
		}
	}
	return out
}

func toOpenAITools(tools []llm.ToolDefinition) []openai.Tool {
	out := make([]openai.Tool, 0, len(tools))
	for _, tool := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}
	return out
}

func toOpenAIToolChoice(choice llm.ToolChoice) any {
	switch choice {
	case llm.ToolChoiceNone:
		return "none"
	case "", llm.ToolChoiceAuto:
		return "auto"
	default:
		return openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: string(choice)},
		}
	}
}

func openaiFinishReason(reason openai.FinishReason, toolCalls int) llm.FinishReason {
	switch reason {
	case openai.FinishReasonStop:
		return llm.FinishStop
	case openai.FinishReasonLength:
		return llm.FinishLength
	case openai.FinishReasonToolCalls, openai.FinishReasonFunctionCall:
		return llm.FinishToolUse
	case openai.FinishReasonContentFilter:
		return llm.FinishContentFilter
	default:
		if toolCalls > 0 {
			return llm.FinishToolUse
		}
		return llm.FinishUnknown
	}
}

func openaiError(name, model string, err error) *llm.ProviderError {
	var apierr *openai.APIError
	if errors.As(err, &apierr) {
		return &llm.ProviderError{
			Provider:   name,
			Model:      model,
			StatusCode: apierr.HTTPStatusCode,
			Kind:       llm.KindFromStatus(apierr.HTTPStatusCode),
			Message:    apierr.Message,
			Err:        err,
		}
	}
	var reqerr *openai.RequestError
	if errors.As(err, &reqerr) {
		return &llm.ProviderError{
			Provider:   name,
			Model:      model,
			StatusCode: reqerr.HTTPStatusCode,
			Kind:       llm.KindFromStatus(reqerr.HTTPStatusCode),
			Err:        err,
		}
	}
	return llm.WrapTransportError(name, model, err)
}
