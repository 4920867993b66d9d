package providers

import "time"

// AnalysisRequest is the provider-agnostic inference request.
type AnalysisRequest struct {
	// SystemPrompt sets the assistant's role and constraints. Optional.
	SystemPrompt string

	// UserPrompt carries the content to analyze. Required.
	UserPrompt string

	// MaxTokens caps the completion length. Zero uses the adapter default.
	MaxTokens int
}

// Validate checks the request before it is sent to any provider.
func (r *AnalysisRequest) Validate() error {
	if r == nil {
		return &ValidationError{Field: "request", Message: "request cannot be nil"}
	}
	if r.UserPrompt == "" {
		return &ValidationError{Field: "user_prompt", Message: "user prompt cannot be empty"}
	}
	if r.MaxTokens < 0 {
		return &ValidationError{Field: "max_tokens", Message: "max tokens cannot be negative"}
	}
	return nil
}

// AnalysisResult is the normalized response returned by every adapter.
type AnalysisResult struct {
	// Content is the completion text.
	Content string

	// InputTokens is the prompt token count reported by the provider.
	InputTokens int

	// OutputTokens is the completion token count reported by the provider.
	OutputTokens int

	// Model is the model that produced the completion.
	Model string

	// Provider is the name of the provider that served the request.
	Provider string
}

// TotalTokens returns prompt plus completion tokens.
func (r *AnalysisResult) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}

// Config contains configuration for a single provider adapter.
type Config struct {
	// Name identifies the provider instance (used in logs, metrics, results).
	Name string

	// Type selects the adapter ("anthropic", "openai").
	Type string

	// BaseURL is the base URL for the provider's API endpoint.
	BaseURL string

	// APIKey authenticates requests to the provider.
	APIKey string

	// Model is the model identifier sent with every request.
	Model string

	// MaxTokens is the default completion cap when the request does not set one.
	MaxTokens int

	// Timeout bounds each provider call, including connection setup and
	// response body read.
	Timeout time.Duration

	// MaxIdleConns controls the HTTP connection pool size.
	MaxIdleConns int

	// MaxIdleConnsPerHost controls per-host idle connections.
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long idle connections are kept open.
	IdleConnTimeout time.Duration
}

// Validate checks the adapter configuration.
func (c *Config) Validate() error {
	if c.Name == "" {
		return &ConfigError{Provider: c.Name, Field: "name", Message: "name is required"}
	}
	if c.BaseURL == "" {
		return &ConfigError{Provider: c.Name, Field: "base_url", Message: "base URL is required"}
	}
	if c.APIKey == "" {
		return &ConfigError{Provider: c.Name, Field: "api_key", Message: "API key is required"}
	}
	if c.Model == "" {
		return &ConfigError{Provider: c.Name, Field: "model", Message: "model is required"}
	}
	return nil
}
