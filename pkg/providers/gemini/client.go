package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"stratus-hq/helios/pkg/providers"
)

// DefaultMaxTokens caps completions when the request does not set one.
const DefaultMaxTokens = 4096

// Provider is the adapter for Google's Gemini generateContent API.
type Provider struct {
	http *providers.HTTPClient
}

// New creates a Gemini provider instance.
func New(config providers.Config) (*Provider, error) {
	if config.BaseURL == "" {
		config.BaseURL = "https://generativelanguage.googleapis.com"
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

	slog.Info("gemini provider initialized",
		"provider", config.Name,
		"model", config.Model,
	)

	return &Provider{http: providers.NewHTTPClient(config)}, nil
}

// Name returns the configured provider name.
func (p *Provider) Name() string {
	return p.http.Config().Name
}

// generateRequest is the generateContent request body.
type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens"`
}

// generateResponse is the generateContent response body.
type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

// Analyze sends the prompts to the generateContent API and normalizes the
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

	body := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: req.UserPrompt}}},
		},
		GenerationConfig: generationConfig{MaxOutputTokens: maxTokens},
	}
	if req.SystemPrompt != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: req.SystemPrompt}}}
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", cfg.BaseURL, cfg.Model)
	headers := map[string]string{
		"x-goog-api-key": cfg.APIKey,
	}

	var resp generateResponse
	if err := p.http.DoJSON(ctx, "POST", url, body, &resp, headers); err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 {
		return nil, &providers.ParseError{
			Provider: cfg.Name,
			Cause:    fmt.Errorf("response contains no candidates"),
		}
	}

	var text strings.Builder
	for _, pt := range resp.Candidates[0].Content.Parts {
		text.WriteString(pt.Text)
	}
	if text.Len() == 0 {
		return nil, &providers.ParseError{
			Provider: cfg.Name,
			Cause:    fmt.Errorf("candidate contains no text"),
		}
	}

	model := resp.ModelVersion
	if model == "" {
		model = cfg.Model
	}

	return &providers.AnalysisResult{
		Content:      text.String(),
		InputTokens:  resp.UsageMetadata.PromptTokenCount,
		OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
		Model:        model,
		Provider:     cfg.Name,
	}, nil
}

// Close releases the underlying HTTP resources.
func (p *Provider) Close() error {
	return p.http.Close()
}
