package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/gridiron-ai/gridiron/internal/config"
	"github.com/gridiron-ai/gridiron/internal/llm"
)

const anthropicName = "anthropic"

var anthropicModels = []string{
	"claude-opus-4-5",
	"claude-sonnet-4-5",
	"claude-haiku-4-5",
}

var anthropicPricing = llm.PriceTable{
	Entries: []llm.PriceEntry{
		{Match: "haiku", Pricing: llm.Pricing{InputPerMTok: 0.80, OutputPerMTok: 4.00}},
		{Match: "sonnet", Pricing: llm.Pricing{InputPerMTok: 3.00, OutputPerMTok: 15.00}},
		{Match: "opus", Pricing: llm.Pricing{InputPerMTok: 15.00, OutputPerMTok: 75.00}},
	},
	Default: llm.Pricing{InputPerMTok: 3.00, OutputPerMTok: 15.00},
}

type anthropicProvider struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int
}

func newAnthropicProvider(cfg config.LLMProviderConfig) (llm.Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("anthropic model is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.RequestTimeout > 0 {
		opts = append(opts, option.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}))
	}

	return &anthropicProvider{
		client:    anthropic.NewClient(opts...),
		model:     anthropic.Model(cfg.Model),
		maxTokens: cfg.MaxTokens,
	}, nil
}

func (p *anthropicProvider) Name() string     { return anthropicName }
func (p *anthropicProvider) Models() []string { return anthropicModels }

func (p *anthropicProvider) Pricing(model string) llm.Pricing {
	return anthropicPricing.Lookup(model)
}

func (p *anthropicProvider) SupportsTools() bool { return true }

// Chat sends a provider-agnostic chat request to Anthropic and normalizes the response.
func (p *anthropicProvider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	msgs, err := toAnthropicMessages(req.Messages)
	if err != nil {
		return nil, &llm.ProviderError{Provider: anthropicName, Model: string(p.model), Kind: llm.KindInvalidRequest, Err: err}
	}

	body := anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: int64(resolveMaxTokens(req.MaxTokens, p.maxTokens)),
		Messages:  msgs,
	}

	if req.SystemPrompt != "" {
		body.System = []anthropic.TextBlockParam{{
			Text:         req.SystemPrompt,
			CacheControl: anthropic.NewCacheControlEphemeralParam(),
		}}
	}
	if req.Temperature != nil {
		body.Temperature = anthropic.Float(*req.Temperature)
	}
	if len(req.Tools) > 0 {
		body.Tools = toAnthropicTools(req.Tools)
		body.ToolChoice = toAnthropicToolChoice(req.ToolChoice)
	}

	msg, err := p.client.Messages.New(ctx, body)
	if err != nil {
		return nil, anthropicError(string(p.model), err)
	}

	var contentParts []string
	var calls []llm.ToolCall
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			if v.Text != "" {
				contentParts = append(contentParts, v.Text)
			}
		case anthropic.ToolUseBlock:
			calls = append(calls, llm.ToolCall{
				ID:        v.ID,
				Name:      v.Name,
				Arguments: string(v.Input),
			})
		}
	}

	usage := llm.TokenUsage{
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
	}
	usage.TotalTokens = usage.InputTokens + usage.OutputTokens

	return &llm.ChatResponse{
		Content:      strings.Join(contentParts, "\n"),
		ToolCalls:    calls,
		Usage:        usage,
		FinishReason: anthropicFinishReason(msg.StopReason, len(calls)),
		Model:        string(msg.Model),
	}, nil
}

func toAnthropicMessages(messages []llm.ChatMessage) ([]anthropic.MessageParam, error) {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for i := 0; i < len(messages); {
		msg := messages[i]
		switch msg.Role {
		case llm.RoleUser, llm.RoleSystem:
			// Anthropic has no in-band system role; orchestrator-authored
			// system notes ride as user messages.
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
			i++
		case llm.RoleAssistant:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.ToolCalls)+1)
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				input := map[string]any{}
				if tc.Arguments != "" {
					if err := json.Unmarshal([]byte(tc.Arguments), &input); err != nil {
						return nil, fmt.Errorf("parse assistant tool call args for %s: %w", tc.Name, err)
					}
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, input, tc.Name))
			}
			if len(blocks) == 0 {
				blocks = append(blocks, anthropic.NewTextBlock(""))
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
			i++
		case llm.RoleTool:
			// Anthropic requires all tool results from one assistant turn in a
			// single user message. Collect consecutive RoleTool entries.
			var blocks []anthropic.ContentBlockParamUnion
			for i < len(messages) && messages[i].Role == llm.RoleTool {
				if messages[i].ToolCallID == "" {
					return nil, fmt.Errorf("tool message requires tool_call_id")
				}
				blocks = append(blocks, anthropic.NewToolResultBlock(messages[i].ToolCallID, messages[i].Content, false))
				i++
			}
			out = append(out, anthropic.NewUserMessage(blocks...))
		default:
			return nil, fmt.Errorf("unsupported message role %s", msg.Role)
		}
	}
	applyHistoryCacheBreakpoint(out)
	return out, nil
}

// applyHistoryCacheBreakpoint marks the second-to-last message block as a cache
// breakpoint so the latest message remains uncached while the full prior prefix
// can be reused.
func applyHistoryCacheBreakpoint(messages []anthropic.MessageParam) {
	if len(messages) < 2 {
		return
	}
	addCacheControlToLastBlock(&messages[len(messages)-2])
}

func addCacheControlToLastBlock(message *anthropic.MessageParam) {
	if message == nil || len(message.Content) == 0 {
		return
	}
	block := &message.Content[len(message.Content)-1]
	cacheControl := anthropic.NewCacheControlEphemeralParam()

	switch {
	case block.OfText != nil:
		block.OfText.CacheControl = cacheControl
	case block.OfToolUse != nil:
		block.OfToolUse.CacheControl = cacheControl
	case block.OfToolResult != nil:
		block.OfToolResult.CacheControl = cacheControl
	}
}

func toAnthropicTools(tools []llm.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		toolParam := anthropic.ToolParam{
			Name:        tool.Name,
			Description: anthropic.String(tool.Description),
			InputSchema: toAnthropicInputSchema(tool.Parameters),
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &toolParam})
	}
	return out
}

func toAnthropicToolChoice(choice llm.ToolChoice) anthropic.ToolChoiceUnionParam {
	switch choice {
	case llm.ToolChoiceNone:
		return anthropic.ToolChoiceUnionParam{OfNone: &anthropic.ToolChoiceNoneParam{}}
	case "", llm.ToolChoiceAuto:
		return anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
	default:
		return anthropic.ToolChoiceUnionParam{OfTool: &anthropic.ToolChoiceToolParam{Name: string(choice)}}
	}
}

func toAnthropicInputSchema(schema map[string]any) anthropic.ToolInputSchemaParam {
	if len(schema) == 0 {
		return anthropic.ToolInputSchemaParam{}
	}

	var required []string
	if rawRequired, ok := schema["required"]; ok {
		switch v := rawRequired.(type) {
		case []string:
			required = v
		case []any:
			required = make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok {
					required = append(required, s)
				}
			}
		}
	}

	inputSchema := anthropic.ToolInputSchemaParam{
		Required: required,
	}
	if props, ok := schema["properties"]; ok {
		inputSchema.Properties = props
	}

	extras := make(map[string]any)
	for k, v := range schema {
		if k == "properties" || k == "required" || k == "type" {
			continue
		}
		extras[k] = v
	}
	if len(extras) > 0 {
		inputSchema.ExtraFields = extras
	}

	return inputSchema
}

func anthropicFinishReason(reason anthropic.StopReason, toolCalls int) llm.FinishReason {
	switch reason {
	case anthropic.StopReasonEndTurn, anthropic.StopReasonStopSequence:
		return llm.FinishStop
	case anthropic.StopReasonMaxTokens:
		return llm.FinishLength
	case anthropic.StopReasonToolUse:
		return llm.FinishToolUse
	case anthropic.StopReasonRefusal:
		return llm.FinishContentFilter
	default:
		if toolCalls > 0 {
			return llm.FinishToolUse
		}
		return llm.FinishUnknown
	}
}

func anthropicError(model string, err error) *llm.ProviderError {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		pe := &llm.ProviderError{
			Provider:   anthropicName,
			Model:      model,
			StatusCode: apierr.StatusCode,
			Kind:       llm.KindFromStatus(apierr.StatusCode),
			Err:        err,
		}
		if apierr.Response != nil {
			pe.RetryAfter = parseRetryAfter(apierr.Response.Header.Get("Retry-After"))
		}
		// Overloaded responses often omit Retry-After; back off anyway.
		if pe.Kind == llm.KindOverloaded && pe.RetryAfter == 0 {
			pe.RetryAfter = 10 * time.Second
		}
		return pe
	}
	return llm.WrapTransportError(anthropicName, model, err)
}
