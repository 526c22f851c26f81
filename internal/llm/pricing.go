package llm

import "strings"

const perMillion = 1_000_000.0

// Pricing is per-model token pricing in USD per million tokens.
type Pricing struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost estimates the USD cost of one response at this pricing.
func (p Pricing) Cost(usage TokenUsage) float64 {
	return float64(usage.InputTokens)/perMillion*p.InputPerMTok +
		float64(usage.OutputTokens)/perMillion*p.OutputPerMTok
}

// PriceEntry prices every model whose ID contains Match.
type PriceEntry struct {
	Match   string
	Pricing Pricing
}

// PriceTable maps model IDs to pricing by substring, first match wins.
// Lookup never fails; unrecognized models get the default tier so cost
// accounting stays an estimate rather than an error.
type PriceTable struct {
	Entries []PriceEntry
	Default Pricing
}

// Lookup returns pricing for a model ID.
func (t PriceTable) Lookup(model string) Pricing {
	m := strings.ToLower(model)
	for _, e := range t.Entries {
		if strings.Contains(m, e.Match) {
			return e.Pricing
		}
	}
	return t.Default
}
