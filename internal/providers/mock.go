// Package providers contains test doubles shared by package tests.
package providers

import (
	"context"
	"sync"

	"stratus-hq/helios/pkg/providers"
)

// MockProvider is a scripted Provider implementation for testing. Each call
// to Analyze consumes the next scripted outcome; when the script is
// exhausted the last outcome repeats.
type MockProvider struct {
	name string

	mu      sync.Mutex
	script  []outcome
	calls   int
	lastReq *providers.AnalysisRequest
}

type outcome struct {
	result *providers.AnalysisResult
	err    error
}

// NewMockProvider creates a mock provider with the given name. With no
// scripted outcomes it succeeds with a canned result.
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{name: name}
}

// Succeed appends a successful outcome returning the given content.
func (m *MockProvider) Succeed(content string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, outcome{result: &providers.AnalysisResult{
		Content:      content,
		InputTokens:  10,
		OutputTokens: 20,
		Model:        "mock-model",
		Provider:     m.name,
	}})
	return m
}

// Fail appends a failing outcome returning the given error.
func (m *MockProvider) Fail(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, outcome{err: err})
	return m
}

// Name returns the provider name.
func (m *MockProvider) Name() string {
	return m.name
}

// Analyze returns the next scripted outcome.
func (m *MockProvider) Analyze(ctx context.Context, req *providers.AnalysisRequest) (*providers.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastReq = req

	if len(m.script) == 0 {
		return &providers.AnalysisResult{
			Content:      "mock response",
			InputTokens:  10,
			OutputTokens: 20,
			Model:        "mock-model",
			Provider:     m.name,
		}, nil
	}

	idx := m.calls - 1
	if idx >= len(m.script) {
		idx = len(m.script) - 1
	}
	out := m.script[idx]
	if out.err != nil {
		return nil, out.err
	}
	return out.result, nil
}

// Calls returns the number of Analyze invocations.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the most recent request passed to Analyze.
func (m *MockProvider) LastRequest() *providers.AnalysisRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastReq
}
