package usage

import (
	"strings"
	"sync"
)

// Pricing is the per-model price in USD per million tokens.
type Pricing struct {
	InputPerMTok  float64 `yaml:"input_per_mtok" json:"input_per_mtok"`
	OutputPerMTok float64 `yaml:"output_per_mtok" json:"output_per_mtok"`
}

// defaultPricing is used for models with no configured price, so unpriced
// traffic shows up as nonzero cost rather than silently free.
var defaultPricing = Pricing{InputPerMTok: 3.0, OutputPerMTok: 15.0}

// Calculator computes request cost from token usage. It is safe for
// concurrent use and supports replacing the pricing table at runtime.
type Calculator struct {
	mu      sync.RWMutex
	pricing map[string]Pricing
}

// NewCalculator creates a calculator with the given per-model pricing table.
// Keys are matched case-insensitively, by exact model name first and then by
// prefix, so "claude-sonnet-4" prices "claude-sonnet-4-20250514".
func NewCalculator(pricing map[string]Pricing) *Calculator {
	c := &Calculator{}
	c.Reload(pricing)
	return c
}

// Reload replaces the pricing table.
func (c *Calculator) Reload(pricing map[string]Pricing) {
	normalized := make(map[string]Pricing, len(pricing))
	for model, p := range pricing {
		normalized[strings.ToLower(model)] = p
	}

	c.mu.Lock()
	c.pricing = normalized
	c.mu.Unlock()
}

// Cost returns the USD cost for the given model and token counts.
func (c *Calculator) Cost(model string, inputTokens, outputTokens int) float64 {
	p := c.lookup(model)
	return float64(inputTokens)/1e6*p.InputPerMTok +
		float64(outputTokens)/1e6*p.OutputPerMTok
}

func (c *Calculator) lookup(model string) Pricing {
	model = strings.ToLower(model)

	c.mu.RLock()
	defer c.mu.RUnlock()

	if p, ok := c.pricing[model]; ok {
		return p
	}
	for prefix, p := range c.pricing {
		if strings.HasPrefix(model, prefix) {
			return p
		}
	}
	return defaultPricing
}
