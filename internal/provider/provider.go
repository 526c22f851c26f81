// Package provider implements the vendor adapters behind the llm.Provider
// contract: Anthropic, OpenAI, DeepSeek, Gemini, and Perplexity. Each
// adapter owns its wire mapping, its error classification, and its pricing
// table; everything above this package is vendor-neutral.
package provider

import (
	"strconv"
	"strings"
	"time"
)

const defaultMaxTokens = 1024

func resolveMaxTokens(requestMaxTokens, configuredMaxTokens int) int {
	if requestMaxTokens > 0 {
		return requestMaxTokens
	}
	if configuredMaxTokens > 0 {
		return configuredMaxTokens
	}
	return defaultMaxTokens
}

// parseRetryAfter reads a Retry-After header value in seconds form.
// HTTP-date form is rare from LLM vendors and is ignored.
func parseRetryAfter(raw string) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
