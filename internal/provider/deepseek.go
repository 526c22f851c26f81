package provider

import (
	"github.com/gridiron-ai/gridiron/internal/config"
	"github.com/gridiron-ai/gridiron/internal/llm"
)

const (
	deepseekName    = "deepseek"
	deepseekBaseURL = "https://api.deepseek.com/v1"
)

var deepseekModels = []string{
	"deepseek-chat",
	"deepseek-reasoner",
}

var deepseekPricing = llm.PriceTable{
	Entries: []llm.PriceEntry{
		{Match: "reasoner", Pricing: llm.Pricing{InputPerMTok: 0.55, OutputPerMTok: 2.19}},
		{Match: "chat", Pricing: llm.Pricing{InputPerMTok: 0.27, OutputPerMTok: 1.10}},
	},
	Default: llm.Pricing{InputPerMTok: 0.27, OutputPerMTok: 1.10},
}

// DeepSeek serves the OpenAI chat completions dialect on its own endpoint,
// including native tool calling, so the adapter is the OpenAI-compatible
// provider pointed at api.deepseek.com.
func newDeepSeekProvider(cfg config.LLMProviderConfig) (llm.Provider, error) {
	return newOpenAICompatProvider(deepseekName, deepseekBaseURL, deepseekModels, deepseekPricing, cfg)
}
