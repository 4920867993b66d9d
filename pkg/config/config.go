package config

import "time"

// Config is the root configuration structure for the Helios gateway.
type Config struct {
	// Server contains HTTP server configuration including listen address
	// and timeouts.
	Server ServerConfig `yaml:"server"`

	// Providers contains configuration for all inference provider
	// integrations. Keys are provider names (e.g., "anthropic", "openai").
	Providers map[string]ProviderConfig `yaml:"providers"`

	// Fallback controls the provider fallback chain.
	Fallback FallbackConfig `yaml:"fallback"`

	// RateLimit contains per-client admission control configuration.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Retry contains the backoff policy applied to provider calls.
	Retry RetryConfig `yaml:"retry"`

	// Usage contains token accounting and cost tracking configuration.
	Usage UsageConfig `yaml:"usage"`

	// Telemetry contains logging, metrics, and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out response writes.
	// Default: 120s, sized for slow provider completions.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown; in-flight requests past it
	// are dropped.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RequestTimeout bounds a single analysis request end to end, including
	// retries and fallback.
	// Default: 120s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// ProviderConfig contains configuration for a single inference provider.
type ProviderConfig struct {
	// Type selects the provider adapter: "anthropic" or "openai".
	Type string `yaml:"type"`

	// BaseURL is the provider's API endpoint. Defaults per type.
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates against the provider. Supports ${ENV_VAR}
	// expansion so secrets stay out of config files.
	APIKey string `yaml:"api_key"`

	// Model is the model identifier sent to the provider.
	Model string `yaml:"model"`

	// MaxTokens caps completion length.
	// Default: 4096
	MaxTokens int `yaml:"max_tokens"`

	// Timeout bounds a single provider call.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// Enabled controls whether the provider participates in routing.
	// Default: true
	Enabled *bool `yaml:"enabled"`
}

// FallbackConfig controls the ordered provider chain.
type FallbackConfig struct {
	// Order lists provider names in preference order. Every name must refer
	// to a configured provider. When empty, configured providers are used
	// in lexical name order.
	Order []string `yaml:"order"`
}

// RateLimitConfig contains admission control configuration.
type RateLimitConfig struct {
	// Enabled controls whether admission control runs at all.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// RequestsPerMinute is the per-client budget over a sliding 60s window.
	// Default: 60
	RequestsPerMinute int `yaml:"requests_per_minute"`

	// CleanupSchedule is a cron expression for purging idle client entries.
	// Empty disables scheduled cleanup.
	// Default: "*/5 * * * *"
	CleanupSchedule string `yaml:"cleanup_schedule"`

	// Storage configures admission window persistence across restarts.
	Storage RateLimitStorageConfig `yaml:"storage"`
}

// RateLimitStorageConfig configures admission window persistence.
type RateLimitStorageConfig struct {
	// Backend selects the persistence backend: "memory" or "sqlite".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// Path is the SQLite database path, required for the sqlite backend.
	Path string `yaml:"path"`
}

// RetryConfig contains the backoff policy for provider calls.
type RetryConfig struct {
	// MaxRetries is the number of reattempts after the first try.
	// Default: 3
	MaxRetries int `yaml:"max_retries"`

	// BaseDelay is the backoff before the first retry.
	// Default: 1s
	BaseDelay time.Duration `yaml:"base_delay"`

	// MaxDelay caps exponential backoff growth.
	// Default: 60s
	MaxDelay time.Duration `yaml:"max_delay"`

	// Jitter randomizes delays to avoid synchronized retry storms.
	// Default: true
	Jitter *bool `yaml:"jitter"`
}

// UsageConfig contains token accounting configuration.
type UsageConfig struct {
	// Enabled controls whether usage records are written.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the SQLite database path for usage records.
	// Default: "data/usage.db"
	Path string `yaml:"path"`

	// Retention is how long usage records are kept. Zero keeps forever.
	// Default: 720h (30 days)
	Retention time.Duration `yaml:"retention"`

	// Pricing maps model names to per-million-token prices in USD.
	Pricing map[string]ModelPricing `yaml:"pricing"`
}

// ModelPricing is the USD price per million tokens for a model.
type ModelPricing struct {
	InputPerMTok  float64 `yaml:"input_per_mtok"`
	OutputPerMTok float64 `yaml:"output_per_mtok"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", or "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format selects the output encoding: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether the /metrics endpoint is served.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the metrics endpoint path.
	// Default: "/metrics"
	Path string `yaml:"path"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName identifies this service in traces.
	// Default: "helios"
	ServiceName string `yaml:"service_name"`

	// SampleRate is the fraction of requests traced, in [0, 1].
	// Default: 0.1
	SampleRate float64 `yaml:"sample_rate"`
}

// ProviderEnabled reports whether the provider participates in routing.
func (p ProviderConfig) ProviderEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// RateLimitEnabled reports whether admission control is on.
func (c RateLimitConfig) RateLimitEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// UsageEnabled reports whether usage tracking is on.
func (c UsageConfig) UsageEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// MetricsEnabled reports whether the metrics endpoint is served.
func (c MetricsConfig) MetricsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// JitterEnabled reports whether backoff jitter is on.
func (c RetryConfig) JitterEnabled() bool {
	return c.Jitter == nil || *c.Jitter
}
