package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/gridiron-ai/gridiron/internal/config"
	"github.com/gridiron-ai/gridiron/internal/llm"
)

const geminiName = "gemini"

var geminiModels = []string{
	"gemini-2.5-pro",
	"gemini-2.5-flash",
	"gemini-2.0-flash",
}

var geminiPricing = llm.PriceTable{
	Entries: []llm.PriceEntry{
		{Match: "flash", Pricing: llm.Pricing{InputPerMTok: 0.30, OutputPerMTok: 2.50}},
		{Match: "pro", Pricing: llm.Pricing{InputPerMTok: 1.25, OutputPerMTok: 10.00}},
	},
	Default: llm.Pricing{InputPerMTok: 0.30, OutputPerMTok: 2.50},
}

type geminiProvider struct {
	client    *genai.Client
	model     string
	maxTokens int
}

func newGeminiProvider(ctx context.Context, cfg config.LLMProviderConfig) (llm.Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("gemini model is required")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		clientConfig.HTTPOptions.BaseURL = cfg.BaseURL
	}
	if cfg.RequestTimeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: cfg.RequestTimeout}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &geminiProvider{
		client:    client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

func (p *geminiProvider) Name() string     { return geminiName }
func (p *geminiProvider) Models() []string { return geminiModels }

func (p *geminiProvider) Pricing(model string) llm.Pricing {
	return geminiPricing.Lookup(model)
}

func (p *geminiProvider) SupportsTools() bool { return true }

func (p *geminiProvider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	contents, err := toGeminiContents(req.Messages)
	if err != nil {
		return nil, &llm.ProviderError{Provider: geminiName, Model: p.model, Kind: llm.KindInvalidRequest, Err: err}
	}

	genCfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(resolveMaxTokens(req.MaxTokens, p.maxTokens)),
	}
	if req.SystemPrompt != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if req.Temperature != nil {
		genCfg.Temperature = genai.Ptr(float32(*req.Temperature))
	}
	if len(req.Tools) > 0 {
		genCfg.Tools = toGeminiTools(req.Tools)
		genCfg.ToolConfig = toGeminiToolConfig(req.ToolChoice)
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, genCfg)
	if err != nil {
		return nil, geminiError(p.model, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, &llm.ProviderError{
			Provider: geminiName,
			Model:    p.model,
			Kind:     llm.KindBadResponse,
			Message:  "response contained no candidates",
		}
	}

	candidate := resp.Candidates[0]
	var contentParts []string
	var calls []llm.ToolCall
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			contentParts = append(contentParts, part.Text)
		}
		if part.FunctionCall != nil {
			args, err := json.Marshal(part.FunctionCall.Args)
			if err != nil {
				args = []byte("{}")
			}
			// Gemini frequently omits call IDs; synthesize a stable one so
			// results can be paired back to their requests.
			id := part.FunctionCall.ID
			if id == "" {
				id = fmt.Sprintf("%s-%d", part.FunctionCall.Name, len(calls))
			}
			calls = append(calls, llm.ToolCall{
				ID:        id,
				Name:      part.FunctionCall.Name,
				Arguments: string(args),
			})
		}
	}

	var usage llm.TokenUsage
	if resp.UsageMetadata != nil {
		usage = llm.TokenUsage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	return &llm.ChatResponse{
		Content:      strings.Join(contentParts, "\n"),
		ToolCalls:    calls,
		Usage:        usage,
		FinishReason: geminiFinishReason(candidate.FinishReason, len(calls)),
		Model:        p.model,
	}, nil
}

func toGeminiContents(messages []llm.ChatMessage) ([]*genai.Content, error) {
	out := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleUser, llm.RoleSystem:
			out = append(out, genai.NewContentFromText(msg.Content, genai.RoleUser))
		case llm.RoleAssistant:
			content := &genai.Content{Role: genai.RoleModel}
			if msg.Content != "" {
				content.Parts = append(content.Parts, &genai.Part{Text: msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				args := map[string]any{}
				if tc.Arguments != "" {
					if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
						return nil, fmt.Errorf("parse assistant tool call args for %s: %w", tc.Name, err)
					}
				}
				content.Parts = append(content.Parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{
						ID:   tc.ID,
						Name: tc.Name,
						Args: args,
					},
				})
			}
			if len(content.Parts) == 0 {
				content.Parts = append(content.Parts, &genai.Part{Text: ""})
			}
			out = append(out, content)
		case llm.RoleTool:
			if msg.ToolName == "" {
				return nil, fmt.Errorf("tool message requires tool name")
			}
			// Gemini matches results by function name, not call ID, and wants
			// the payload as a JSON object.
			response := map[string]any{}
			if err := json.Unmarshal([]byte(msg.Content), &response); err != nil {
				response = map[string]any{"result": msg.Content}
			}
			out = append(out, &genai.Content{
				Role: genai.RoleUser,
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						ID:       msg.ToolCallID,
						Name:     msg.ToolName,
						Response: response,
					},
				}},
			})
		default:
			return nil, fmt.Errorf("unsupported message role %s", msg.Role)
		}
	}
	return out, nil
}

func toGeminiTools(tools []llm.ToolDefinition) []*genai.Tool {
	declarations := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, tool := range tools {
		declarations = append(declarations, &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  toGeminiSchema(tool.Parameters),
		})
	}
	return []*genai.Tool{{FunctionDeclarations: declarations}}
}

func toGeminiToolConfig(choice llm.ToolChoice) *genai.ToolConfig {
	switch choice {
	case llm.ToolChoiceNone:
		return &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: genai.FunctionCallingConfigModeNone},
		}
	case "", llm.ToolChoiceAuto:
		return &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: genai.FunctionCallingConfigModeAuto},
		}
	default:
		return &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode:                 genai.FunctionCallingConfigModeAny,
				AllowedFunctionNames: []string{string(choice)},
			},
		}
	}
}

// toGeminiSchema converts a JSON schema object into the genai schema type.
// Gemini rejects schemas with unknown fields, so only the supported subset
// is carried over.
func toGeminiSchema(schema map[string]any) *genai.Schema {
	out := &genai.Schema{Type: genai.TypeObject}
	if len(schema) == 0 {
		return out
	}

	if t, ok := schema["type"].(string); ok {
		out.Type = geminiType(t)
	}
	switch req := schema["required"].(type) {
	case []string:
		out.Required = req
	case []any:
		for _, item := range req {
			if s, ok := item.(string); ok {
				out.Required = append(out.Required, s)
			}
		}
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, prop := range props {
			propMap, ok := prop.(map[string]any)
			if !ok {
				continue
			}
			out.Properties[name] = toGeminiProperty(propMap)
		}
	}
	return out
}

func toGeminiProperty(prop map[string]any) *genai.Schema {
	out := &genai.Schema{}
	if t, ok := prop["type"].(string); ok {
		out.Type = geminiType(t)
	}
	if d, ok := prop["description"].(string); ok {
		out.Description = d
	}
	if enum, ok := prop["enum"].([]any); ok {
		for _, item := range enum {
			if s, ok := item.(string); ok {
				out.Enum = append(out.Enum, s)
			}
		}
	}
	if out.Type == genai.TypeArray {
		if items, ok := prop["items"].(map[string]any); ok {
			out.Items = toGeminiProperty(items)
		} else {
			out.Items = &genai.Schema{Type: genai.TypeString}
		}
	}
	if out.Type == genai.TypeObject {
		if props, ok := prop["properties"].(map[string]any); ok {
			out.Properties = make(map[string]*genai.Schema, len(props))
			for name, p := range props {
				if pMap, ok := p.(map[string]any); ok {
					out.Properties[name] = toGeminiProperty(pMap)
				}
			}
		}
	}
	return out
}

func geminiType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

func geminiFinishReason(reason genai.FinishReason, toolCalls int) llm.FinishReason {
	switch reason {
	case genai.FinishReasonStop:
		if toolCalls > 0 {
			return llm.FinishToolUse
		}
		return llm.FinishStop
	case genai.FinishReasonMaxTokens:
		return llm.FinishLength
	case genai.FinishReasonSafety, genai.FinishReasonRecitation, genai.FinishReasonBlocklist,
		genai.FinishReasonProhibitedContent, genai.FinishReasonSPII:
		return llm.FinishContentFilter
	default:
		if toolCalls > 0 {
			return llm.FinishToolUse
		}
		return llm.FinishUnknown
	}
}

func geminiError(model string, err error) *llm.ProviderError {
	var apierr genai.APIError
	if errors.As(err, &apierr) {
		return &llm.ProviderError{
			Provider:   geminiName,
			Model:      model,
			StatusCode: apierr.Code,
			Kind:       llm.KindFromStatus(apierr.Code),
			Message:    apierr.Message,
			Err:        err,
		}
	}
	return llm.WrapTransportError(geminiName, model, err)
}
