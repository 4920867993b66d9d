// Package providerfactory builds provider instances and the fallback chain
// from gateway configuration.
package providerfactory

import (
	"fmt"
	"log/slog"
	"sort"

	"stratus-hq/helios/pkg/config"
	"stratus-hq/helios/pkg/providers"
	"stratus-hq/helios/pkg/providers/anthropic"
	"stratus-hq/helios/pkg/providers/gemini"
	"stratus-hq/helios/pkg/providers/openai"
	"stratus-hq/helios/pkg/retry"
	"stratus-hq/helios/pkg/routing"
	"stratus-hq/helios/pkg/telemetry/metrics"
)

// NewProvider creates a provider adapter from its configuration.
//
// Supported types:
//   - "anthropic": Anthropic Messages API
//   - "openai": OpenAI Chat Completions API
//   - "gemini": Google Gemini generateContent API
func NewProvider(name string, cfg config.ProviderConfig) (providers.Provider, error) {
	pc := providers.Config{
		Name:      name,
		Type:      cfg.Type,
		BaseURL:   cfg.BaseURL,
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		Timeout:   cfg.Timeout,
	}

	slog.Debug("creating provider", "name", name, "type", cfg.Type, "base_url", cfg.BaseURL)

	switch cfg.Type {
	case "anthropic":
		return anthropic.New(pc)
	case "openai":
		return openai.New(pc)
	case "gemini":
		return gemini.New(pc)
	default:
		return nil, &providers.ConfigError{
			Provider: name,
			Field:    "type",
			Message:  fmt.Sprintf("unsupported provider type %q (supported: anthropic, openai, gemini)", cfg.Type),
		}
	}
}

// NewChain builds the fallback chain from the full gateway configuration:
// providers are created for every enabled entry, ordered by the fallback
// order (or lexically by name when no order is configured), and wrapped
// with the configured retry policy. A non-nil collector receives the chain's
// retry, fallback, and provider error counts.
func NewChain(cfg *config.Config, logger *slog.Logger, collector *metrics.Collector) (*routing.Chain, error) {
	order := cfg.Fallback.Order
	if len(order) == 0 {
		for name := range cfg.Providers {
			order = append(order, name)
		}
		sort.Strings(order)
	}

	var provs []providers.Provider
	for _, name := range order {
		pc, ok := cfg.Providers[name]
		if !ok {
			return nil, fmt.Errorf("fallback order references unknown provider %q", name)
		}
		if !pc.ProviderEnabled() {
			continue
		}
		p, err := NewProvider(name, pc)
		if err != nil {
			return nil, err
		}
		provs = append(provs, p)
	}

	policy := retry.Policy{
		MaxRetries: cfg.Retry.MaxRetries,
		BaseDelay:  cfg.Retry.BaseDelay,
		MaxDelay:   cfg.Retry.MaxDelay,
		Jitter:     cfg.Retry.JitterEnabled(),
		Classify:   providers.IsRetryable,
	}
	executor := retry.NewExecutor(policy)
	if logger != nil {
		executor.SetLogger(logger)
	}

	opts := []routing.Option{routing.WithRetry(executor)}
	if logger != nil {
		opts = append(opts, routing.WithLogger(logger))
	}
	if collector != nil {
		opts = append(opts, routing.WithMetrics(collector))
	}
	return routing.NewChain(provs, opts...)
}
