package usage

import "time"

// Record is a single completed analysis request.
type Record struct {
	// ID is the gateway-assigned request ID.
	ID string `json:"id"`

	// Timestamp is when the request completed.
	Timestamp time.Time `json:"timestamp"`

	// Key is the client identity the request was admitted under.
	Key string `json:"key"`

	// Provider is the provider that produced the result.
	Provider string `json:"provider"`

	// Model is the model reported by the provider.
	Model string `json:"model"`

	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`

	// Cost is the computed cost in USD.
	Cost float64 `json:"cost"`

	// LatencyMs is the end-to-end provider latency in milliseconds.
	LatencyMs int64 `json:"latency_ms"`
}

// Summary aggregates records over a time range.
type Summary struct {
	Requests     int64   `json:"requests"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	TotalCost    float64 `json:"total_cost"`

	// ByProvider breaks the totals down per provider.
	ByProvider map[string]*ProviderSummary `json:"by_provider,omitempty"`
}

// ProviderSummary aggregates records for a single provider.
type ProviderSummary struct {
	Requests     int64   `json:"requests"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	TotalCost    float64 `json:"total_cost"`
}
