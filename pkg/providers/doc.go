// Package providers defines the provider contract consumed by the routing
// layer, together with the classified error taxonomy shared by the retry and
// fallback logic.
//
// A Provider adapts one upstream inference backend (Anthropic, OpenAI, or any
// OpenAI-compatible endpoint) to a single operation:
//
//	result, err := provider.Analyze(ctx, &providers.AnalysisRequest{
//	    SystemPrompt: "You are a test failure analyst.",
//	    UserPrompt:   "Explain this stack trace: ...",
//	})
//
// Adapters are responsible for translating their native failure modes (HTTP
// status codes, network errors, malformed payloads) into the ErrorKind
// taxonomy; the retry executor and the fallback chain only ever inspect the
// classification, never provider-specific error types.
package providers
