package routing

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"stratus-hq/helios/pkg/providers"
	"stratus-hq/helios/pkg/retry"
)

// maxLoggedErrorLen bounds the error text logged on fallback transitions.
const maxLoggedErrorLen = 200

var tracer = otel.Tracer("stratus-hq/helios/pkg/routing")

// MetricsRecorder receives routing events for instrumentation. It is
// satisfied by *metrics.Collector.
type MetricsRecorder interface {
	RecordRetry(provider string)
	RecordFallback(provider string)
	RecordProviderError(provider, kind string)
}

// Chain is an ordered, immutable, non-empty fallback chain of providers.
type Chain struct {
	providers []providers.Provider
	executor  *retry.Executor
	logger    *slog.Logger
	metrics   MetricsRecorder
}

// Option configures a Chain.
type Option func(*Chain)

// WithRetry wraps every provider call in the given retry executor, so a
// provider falls back only after its transient faults persist through the
// retry budget.
func WithRetry(e *retry.Executor) Option {
	return func(c *Chain) { c.executor = e }
}

// WithLogger overrides the chain's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chain) { c.logger = logger }
}

// WithMetrics records retries, fallbacks, and provider errors against the
// given recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(c *Chain) { c.metrics = m }
}

// NewChain creates a fallback chain over provs in priority order (first is
// primary). Construction fails with ErrNoProviders on an empty list.
func NewChain(provs []providers.Provider, opts ...Option) (*Chain, error) {
	if len(provs) == 0 {
		return nil, ErrNoProviders
	}

	chain := make([]providers.Provider, len(provs))
	copy(chain, provs)

	c := &Chain{
		providers: chain,
		logger:    slog.Default().With("component", "routing"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ProviderNames returns the chain's provider names in order.
func (c *Chain) ProviderNames() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// Analyze tries each provider in order and returns the first success.
//
// Only retryable-classified errors trigger fallback to the next provider;
// fatal errors and context cancellation propagate immediately without trying
// the remaining providers. When the chain is exhausted an
// AllProvidersFailedError with every attempt in order is returned.
func (c *Chain) Analyze(ctx context.Context, req *providers.AnalysisRequest) (*providers.AnalysisResult, error) {
	ctx, span := tracer.Start(ctx, "chain.analyze",
		trace.WithAttributes(attribute.Int("chain.providers", len(c.providers))))
	defer span.End()

	attempts := make([]Attempt, 0, len(c.providers))

	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, "cancelled")
			return nil, err
		}

		c.logger.Info("trying provider", "provider", p.Name())

		result, err := c.call(ctx, p, req)
		if err == nil {
			c.logger.Info("provider succeeded",
				"provider", p.Name(),
				"input_tokens", result.InputTokens,
				"output_tokens", result.OutputTokens,
			)
			span.SetAttributes(attribute.String("chain.winner", p.Name()))
			return result, nil
		}

		if c.metrics != nil {
			c.metrics.RecordProviderError(p.Name(), errorKind(err))
		}

		if !providers.IsRetryable(err) {
			c.logger.Error("provider failed with fatal error",
				"provider", p.Name(),
				"error", truncate(err.Error()),
			)
			span.RecordError(err)
			span.SetStatus(codes.Error, "fatal provider error")
			return nil, err
		}

		attempts = append(attempts, Attempt{Provider: p.Name(), Err: err})
		if c.metrics != nil {
			c.metrics.RecordFallback(p.Name())
		}
		span.AddEvent("fallback", trace.WithAttributes(
			attribute.String("provider", p.Name())))
		c.logger.Warn("provider failed, falling back",
			"provider", p.Name(),
			"error", truncate(err.Error()),
		)
	}

	c.logger.Error("all providers failed",
		"providers", c.ProviderNames(),
		"attempts", len(attempts),
	)
	failErr := &AllProvidersFailedError{Attempts: attempts}
	span.RecordError(failErr)
	span.SetStatus(codes.Error, "all providers failed")
	return nil, failErr
}

// call invokes one provider, retrying per the configured executor if any.
func (c *Chain) call(ctx context.Context, p providers.Provider, req *providers.AnalysisRequest) (*providers.AnalysisResult, error) {
	ctx, span := tracer.Start(ctx, "provider.analyze",
		trace.WithAttributes(attribute.String("provider", p.Name())))
	defer span.End()

	if c.executor == nil {
		result, err := p.Analyze(ctx, req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "provider call failed")
		}
		return result, err
	}

	var result *providers.AnalysisResult
	attempt := 0
	err := c.executor.Execute(ctx, func(ctx context.Context) error {
		if attempt > 0 {
			if c.metrics != nil {
				c.metrics.RecordRetry(p.Name())
			}
			span.AddEvent("retry", trace.WithAttributes(
				attribute.Int("attempt", attempt)))
		}
		attempt++

		r, err := p.Analyze(ctx, req)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider call failed")
		return nil, err
	}
	return result, nil
}

// errorKind labels an error for the provider error counter.
func errorKind(err error) string {
	if providers.IsRetryable(err) {
		return "retryable"
	}
	return "fatal"
}

// truncate bounds s for log output.
func truncate(s string) string {
	if len(s) <= maxLoggedErrorLen {
		return s
	}
	return s[:maxLoggedErrorLen] + "..."
}
