package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/gridiron-ai/gridiron/internal/config"
	"github.com/gridiron-ai/gridiron/internal/llm"
)

// New builds the provider adapter named by the profile. The provider name is
// matched case-insensitively and defaults to anthropic.
func New(ctx context.Context, cfg config.LLMProviderConfig) (llm.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", anthropicName:
		return newAnthropicProvider(cfg)
	case openaiName:
		return newOpenAIProvider(cfg)
	case deepseekName:
		return newDeepSeekProvider(cfg)
	case geminiName:
		return newGeminiProvider(ctx, cfg)
	case perplexityName:
		return newPerplexityProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q (supported: %s)", cfg.Provider, strings.Join(Names(), ", "))
	}
}

// Names lists the supported provider identifiers.
func Names() []string {
	return []string{anthropicName, openaiName, deepseekName, geminiName, perplexityName}
}
