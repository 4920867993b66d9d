package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects all validation failures in a configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Validate checks the entire configuration and returns a ValidationError
// listing every rule that failed, or nil if the configuration is valid.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateProviders(cfg.Providers)...)
	errs = append(errs, validateFallback(&cfg.Fallback, cfg.Providers)...)
	errs = append(errs, validateRateLimit(&cfg.RateLimit)...)
	errs = append(errs, validateRetry(&cfg.Retry)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{"server.listen_address", "cannot be empty"})
	}
	if cfg.RequestTimeout < 0 {
		errs = append(errs, FieldError{"server.request_timeout", "cannot be negative"})
	}
	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{"server.max_header_bytes", "cannot be negative"})
	}
	return errs
}

func validateProviders(providers map[string]ProviderConfig) []FieldError {
	var errs []FieldError

	if len(providers) == 0 {
		errs = append(errs, FieldError{"providers", "at least one provider must be configured"})
		return errs
	}

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p := providers[name]
		prefix := "providers." + name

		switch p.Type {
		case "anthropic", "openai", "gemini":
		case "":
			errs = append(errs, FieldError{prefix + ".type", "cannot be empty"})
		default:
			errs = append(errs, FieldError{prefix + ".type",
				fmt.Sprintf("unknown provider type %q (expected anthropic, openai, or gemini)", p.Type)})
		}

		if p.BaseURL != "" {
			if u, err := url.Parse(p.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
				errs = append(errs, FieldError{prefix + ".base_url",
					fmt.Sprintf("invalid URL %q", p.BaseURL)})
			}
		}
		if p.APIKey == "" && p.ProviderEnabled() {
			errs = append(errs, FieldError{prefix + ".api_key", "cannot be empty for enabled provider"})
		}
		if p.Model == "" {
			errs = append(errs, FieldError{prefix + ".model", "cannot be empty"})
		}
		if p.Timeout < 0 {
			errs = append(errs, FieldError{prefix + ".timeout", "cannot be negative"})
		}
		if p.MaxTokens < 0 {
			errs = append(errs, FieldError{prefix + ".max_tokens", "cannot be negative"})
		}
	}
	return errs
}

func validateFallback(cfg *FallbackConfig, providers map[string]ProviderConfig) []FieldError {
	var errs []FieldError

	seen := make(map[string]bool, len(cfg.Order))
	for i, name := range cfg.Order {
		field := fmt.Sprintf("fallback.order[%d]", i)
		if _, ok := providers[name]; !ok {
			errs = append(errs, FieldError{field,
				fmt.Sprintf("references unknown provider %q", name)})
		}
		if seen[name] {
			errs = append(errs, FieldError{field,
				fmt.Sprintf("provider %q listed more than once", name)})
		}
		seen[name] = true
	}
	return errs
}

func validateRateLimit(cfg *RateLimitConfig) []FieldError {
	var errs []FieldError

	if cfg.RequestsPerMinute < 0 {
		errs = append(errs, FieldError{"rate_limit.requests_per_minute", "cannot be negative"})
	}
	if cfg.CleanupSchedule != "" {
		if _, err := cron.ParseStandard(cfg.CleanupSchedule); err != nil {
			errs = append(errs, FieldError{"rate_limit.cleanup_schedule",
				fmt.Sprintf("invalid cron expression: %v", err)})
		}
	}

	switch cfg.Storage.Backend {
	case "", "memory":
	case "sqlite":
		if cfg.Storage.Path == "" {
			errs = append(errs, FieldError{"rate_limit.storage.path",
				"required for the sqlite backend"})
		}
	default:
		errs = append(errs, FieldError{"rate_limit.storage.backend",
			fmt.Sprintf("unknown backend %q (expected memory or sqlite)", cfg.Storage.Backend)})
	}
	return errs
}

func validateRetry(cfg *RetryConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxRetries < 0 {
		errs = append(errs, FieldError{"retry.max_retries", "cannot be negative"})
	}
	if cfg.BaseDelay < 0 {
		errs = append(errs, FieldError{"retry.base_delay", "cannot be negative"})
	}
	if cfg.MaxDelay < 0 {
		errs = append(errs, FieldError{"retry.max_delay", "cannot be negative"})
	}
	if cfg.MaxDelay > 0 && cfg.BaseDelay > cfg.MaxDelay {
		errs = append(errs, FieldError{"retry.base_delay", "cannot exceed retry.max_delay"})
	}
	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{"telemetry.logging.level",
			fmt.Sprintf("unknown level %q (expected debug, info, warn, or error)", cfg.Logging.Level)})
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{"telemetry.logging.format",
			fmt.Sprintf("unknown format %q (expected json or text)", cfg.Logging.Format)})
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{"telemetry.tracing.endpoint",
			"required when tracing is enabled"})
	}
	if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1 {
		errs = append(errs, FieldError{"telemetry.tracing.sample_rate",
			"must be between 0 and 1"})
	}
	return errs
}
