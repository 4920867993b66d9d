package anthropic

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"stratus-hq/helios/pkg/providers"
)

const (
	// APIVersion is the Anthropic API version sent with every request.
	APIVersion = "2023-06-01"

	// DefaultMaxTokens caps completions when the request does not set one.
	DefaultMaxTokens = 4096
)

// Provider is the Anthropic adapter for the Messages API.
type Provider struct {
	http *providers.HTTPClient
}

// New creates an Anthropic provider instance.
func New(config providers.Config) (*Provider, error) {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.anthropic.com"
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

	slog.Info("anthropic provider initialized",
		"provider", config.Name,
		"model", config.Model,
	)

	return &Provider{http: providers.NewHTTPClient(config)}, nil
}

// Name returns the configured provider name.
func (p *Provider) Name() string {
	return p.http.Config().Name
}

// messagesRequest is the Anthropic Messages API request body.
type messagesRequest struct {
	Model     string    `json:"model"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the Anthropic Messages API response body.
type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Model   string         `json:"model"`
	Usage   usage          `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Analyze sends the prompts to the Messages API and normalizes the response.
func (p *Provider) Analyze(ctx context.Context, req *providers.AnalysisRequest) (*providers.AnalysisResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cfg := p.http.Config()
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = cfg.MaxTokens
	}

	body := messagesRequest{
		Model:     cfg.Model,
		System:    req.SystemPrompt,
		Messages:  []message{{Role: "user", Content: req.UserPrompt}},
		MaxTokens: maxTokens,
	}

	url := fmt.Sprintf("%s/v1/messages", cfg.BaseURL)
	headers := map[string]string{
		"x-api-key":         cfg.APIKey,
		"anthropic-version": APIVersion,
	}

	var resp messagesResponse
	if err := p.http.DoJSON(ctx, "POST", url, body, &resp, headers); err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, &providers.ParseError{
			Provider: cfg.Name,
			Cause:    fmt.Errorf("response contains no text content"),
		}
	}

	return &providers.AnalysisResult{
		Content:      text.String(),
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		Model:        resp.Model,
		Provider:     cfg.Name,
	}, nil
}

// Close releases the underlying HTTP resources.
func (p *Provider) Close() error {
	return p.http.Close()
}
