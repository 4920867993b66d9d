package openai

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
		Name:    "openai-test",
		Type:    "openai",
		BaseURL: server.URL,
		APIKey:  "sk-test",
		Model:   "gpt-4o",
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
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Error("Missing bearer token")
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if len(req.Messages) != 2 {
			t.Fatalf("Expected system+user messages, got %d", len(req.Messages))
		}
		if req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("Unexpected message roles: %+v", req.Messages)
		}

		w.Write([]byte(`{
			"model": "gpt-4o",
			"choices": [{"message": {"role": "assistant", "content": "flaky network mock"}}],
			"usage": {"prompt_tokens": 80, "completion_tokens": 20}
		}`))
	}))
	defer server.Close()

	p := testProvider(t, server)
	result, err := p.Analyze(context.Background(), &providers.AnalysisRequest{
		SystemPrompt: "you analyze CI failures",
		UserPrompt:   "explain this diff",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Content != "flaky network mock" {
		t.Errorf("Unexpected content: %q", result.Content)
	}
	if result.InputTokens != 80 || result.OutputTokens != 20 {
		t.Errorf("Unexpected token counts: %d/%d", result.InputTokens, result.OutputTokens)
	}
	if result.Provider != "openai-test" {
		t.Errorf("Expected provider name, got %q", result.Provider)
	}
}

func TestAnalyze_OmitsSystemMessageWhenEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("Expected single user message, got %+v", req.Messages)
		}
		w.Write([]byte(`{"model":"gpt-4o","choices":[{"message":{"content":"ok"}}],"usage":{}}`))
	}))
	defer server.Close()

	p := testProvider(t, server)
	if _, err := p.Analyze(context.Background(), &providers.AnalysisRequest{UserPrompt: "hi"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

func TestAnalyze_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"model": "gpt-4o", "choices": [], "usage": {}}`))
	}))
	defer server.Close()

	p := testProvider(t, server)
	_, err := p.Analyze(context.Background(), &providers.AnalysisRequest{UserPrompt: "hi"})

	var parseErr *providers.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Expected ParseError, got %v", err)
	}
}

func TestAnalyze_ServerErrorRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p := testProvider(t, server)
	_, err := p.Analyze(context.Background(), &providers.AnalysisRequest{UserPrompt: "hi"})
	if !providers.IsRetryable(err) {
		t.Errorf("Expected retryable error, got %v", err)
	}
}
