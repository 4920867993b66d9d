package providers

import "context"

// Provider is the contract every upstream adapter implements.
//
// Analyze must respect context cancellation and return promptly when the
// context is done. Errors returned by Analyze must be classified (see
// ErrorKind); unclassified errors are treated as fatal by the resilience
// layers above.
//
// Analyze is assumed idempotent by callers that wrap it in a retry executor;
// adapters must not carry per-call state between invocations.
type Provider interface {
	// Name returns the provider's configured name (e.g. "anthropic-primary").
	Name() string

	// Analyze sends the prompts to the upstream backend and returns the
	// normalized result.
	Analyze(ctx context.Context, req *AnalysisRequest) (*AnalysisResult, error)
}
