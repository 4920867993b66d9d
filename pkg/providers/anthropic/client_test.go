package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stratus-hq/helios/pkg/providers"
)

func testProvider(t *testing.T, server *httptest.Server) *Provider {
	t.Helper()
	p, err := New(providers.Config{
		Name:    "anthropic-test",
		Type:    "anthropic",
		BaseURL: server.URL,
		APIKey:  "sk-ant-test",
		Model:   "claude-sonnet-4-20250514",
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestAnalyze_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "sk-ant-test" {
			t.Error("Missing x-api-key header")
		}
		if r.Header.Get("anthropic-version") != APIVersion {
			t.Errorf("Expected version %s, got %s", APIVersion, r.Header.Get("anthropic-version"))
		}

		var req messagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.System != "be terse" {
			t.Errorf("Expected system prompt, got %q", req.System)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("Expected single user message, got %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(messagesResponse{
			Content: []contentBlock{
				{Type: "text", Text: "The test failed because "},
				{Type: "text", Text: "of a nil pointer."},
			},
			Model: "claude-sonnet-4-20250514",
			Usage: usage{InputTokens: 120, OutputTokens: 45},
		})
	}))
	defer server.Close()

	p := testProvider(t, server)
	result, err := p.Analyze(context.Background(), &providers.AnalysisRequest{
		SystemPrompt: "be terse",
		UserPrompt:   "why did my test fail?",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Content != "The test failed because of a nil pointer." {
		t.Errorf("Unexpected content: %q", result.Content)
	}
	if result.InputTokens != 120 || result.OutputTokens != 45 {
		t.Errorf("Unexpected token counts: %d/%d", result.InputTokens, result.OutputTokens)
	}
	if result.Provider != "anthropic-test" {
		t.Errorf("Expected provider name, got %q", result.Provider)
	}
	if result.TotalTokens() != 165 {
		t.Errorf("Expected 165 total tokens, got %d", result.TotalTokens())
	}
}

func TestAnalyze_EmptyPromptRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Request should not reach the server")
	}))
	defer server.Close()

	p := testProvider(t, server)
	_, err := p.Analyze(context.Background(), &providers.AnalysisRequest{})

	var valErr *providers.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if providers.IsRetryable(err) {
		t.Error("Validation errors must be fatal")
	}
}

func TestAnalyze_NoTextContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(messagesResponse{Model: "m"})
	}))
	defer server.Close()

	p := testProvider(t, server)
	_, err := p.Analyze(context.Background(), &providers.AnalysisRequest{UserPrompt: "hi"})

	var parseErr *providers.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Expected ParseError, got %v", err)
	}
}

func TestAnalyze_UpstreamRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "5")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := testProvider(t, server)
	_, err := p.Analyze(context.Background(), &providers.AnalysisRequest{UserPrompt: "hi"})

	var rlErr *providers.RateLimitError
	if !errors.As(err, &rlErr) {
		t.Fatalf("Expected RateLimitError, got %v", err)
	}
	if rlErr.RetryAfter != 5*time.Second {
		t.Errorf("Expected 5s retry-after, got %v", rlErr.RetryAfter)
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(providers.Config{Name: "a", Model: "m"})
	var cfgErr *providers.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigError, got %v", err)
	}
}
