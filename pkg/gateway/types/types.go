// Package types defines the gateway's wire types: request and response
// bodies and the JSON error envelope shared by handlers and middleware.
package types

import (
	"encoding/json"
	"net/http"
)

// AnalyzeRequest is the body of POST /v1/analyze.
type AnalyzeRequest struct {
	// SystemPrompt is the optional system instruction.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// UserPrompt is the text to analyze. Required.
	UserPrompt string `json:"user_prompt"`

	// MaxTokens caps completion length; 0 uses the provider default.
	MaxTokens int `json:"max_tokens,omitempty"`
}

// AnalyzeResponse is the body of a successful analysis.
type AnalyzeResponse struct {
	// ID is the gateway request ID.
	ID string `json:"id"`

	// Content is the model's completion text.
	Content string `json:"content"`

	// Model is the model that produced the completion.
	Model string `json:"model"`

	// Provider is the provider that served the request.
	Provider string `json:"provider"`

	Usage Usage `json:"usage"`

	// Cost is the computed cost in USD, present when usage tracking is on.
	Cost float64 `json:"cost,omitempty"`
}

// Usage reports token consumption for a single request.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// ErrorResponse is the JSON error envelope for all failure responses.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a single error.
type ErrorDetail struct {
	// Type is a stable machine-readable error category.
	Type string `json:"type"`

	// Message is a human-readable description.
	Message string `json:"message"`
}

// Error types used in responses.
const (
	ErrTypeInvalidRequest = "invalid_request"
	ErrTypeRateLimited    = "rate_limited"
	ErrTypeUpstream       = "upstream_error"
	ErrTypeInternal       = "internal_error"
	ErrTypeTimeout        = "timeout"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a JSON error envelope with the given status.
func WriteError(w http.ResponseWriter, status int, errType, message string) {
	WriteJSON(w, status, ErrorResponse{Error: ErrorDetail{Type: errType, Message: message}})
}
