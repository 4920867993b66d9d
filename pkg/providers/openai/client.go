package openai

import (
	"context"
	"fmt"
	"log/slog"

	"stratus-hq/helios/pkg/providers"
)

// DefaultMaxTokens caps completions when the request does not set one.
const DefaultMaxTokens = 4096

// Provider is the adapter for OpenAI's Chat Completions API. It also works
// against any OpenAI-compatible endpoint (Azure OpenAI, local gateways) by
// overriding BaseURL.
type Provider struct {
	http *providers.HTTPClient
}

// New creates an OpenAI provider instance.
func New(config providers.Config) (*Provider, error) {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultMaxTokens
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 100
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = 10
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	slog.Info("openai provider initialized",
		"provider", config.Name,
		"model", config.Model,
	)

	return &Provider{http: providers.NewHTTPClient(config)}, nil
}

// Name returns the configured provider name.
func (p *Provider) Name() string {
	return p.http.Config().Name
}

// chatRequest is the Chat Completions request body.
type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the Chat Completions response body.
type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Analyze sends the prompts to the Chat Completions API and normalizes the
// response.
func (p *Provider) Analyze(ctx context.Context, req *providers.AnalysisRequest) (*providers.AnalysisResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cfg := p.http.Config()
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = cfg.MaxTokens
	}

	messages := make([]chatMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.UserPrompt})

	body := chatRequest{
		Model:     cfg.Model,
		Messages:  messages,
		MaxTokens: maxTokens,
	}

	url := fmt.Sprintf("%s/chat/completions", cfg.BaseURL)
	headers := map[string]string{
		"Authorization": "Bearer " + cfg.APIKey,
	}

	var resp chatResponse
	if err := p.http.DoJSON(ctx, "POST", url, body, &resp, headers); err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, &providers.ParseError{
			Provider: cfg.Name,
			Cause:    fmt.Errorf("response contains no choices"),
		}
	}

	return &providers.AnalysisResult{
		Content:      resp.Choices[0].Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		Model:        resp.Model,
		Provider:     cfg.Name,
	}, nil
}

// Close releases the underlying HTTP resources.
func (p *Provider) Close() error {
	return p.http.Close()
}
