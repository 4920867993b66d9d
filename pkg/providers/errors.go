package providers

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies a provider failure for the retry and fallback layers.
//
// The classification is assigned at the provider boundary, where the native
// failure mode (HTTP status, network error, SDK error) is still known. Core
// resilience logic dispatches on the kind alone.
type ErrorKind int

const (
	// KindFatal marks programming or validation errors (malformed request,
	// authentication failure). Never retried, never triggers fallback.
	KindFatal ErrorKind = iota

	// KindRetryable marks transient faults (network errors, 5xx responses,
	// upstream rate limits). Eligible for retry and provider fallback.
	KindRetryable
)

// String returns the kind as a short lowercase label.
func (k ErrorKind) String() string {
	switch k {
	case KindRetryable:
		return "retryable"
	default:
		return "fatal"
	}
}

// Classified is implemented by errors that carry an ErrorKind.
type Classified interface {
	error
	Kind() ErrorKind
}

// IsRetryable reports whether err (or any error in its chain) is classified
// as retryable. Unclassified errors are treated as fatal so that unexpected
// programming errors propagate instead of being silently retried.
func IsRetryable(err error) bool {
	var c Classified
	if errors.As(err, &c) {
		return c.Kind() == KindRetryable
	}
	return false
}

// ProviderError represents a general provider failure with an explicit
// classification. It includes the provider name, HTTP status code (0 if not
// applicable), and the underlying error.
type ProviderError struct {
	// Provider is the name of the provider that returned the error
	Provider string

	// StatusCode is the HTTP status code (0 if not applicable)
	StatusCode int

	// Message is the error message
	Message string

	// Retryable controls the classification reported by Kind
	Retryable bool

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %q error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %q error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Kind reports the error classification.
func (e *ProviderError) Kind() ErrorKind {
	if e.Retryable {
		return KindRetryable
	}
	return KindFatal
}

// AuthError represents an authentication failure (HTTP 401 or 403).
// Always fatal: retrying with the same credentials cannot succeed.
type AuthError struct {
	// Provider is the name of the provider that rejected authentication
	Provider string

	// Message is the error message from the provider
	Message string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("provider %q authentication failed: %s", e.Provider, e.Message)
}

// Kind reports the error classification.
func (e *AuthError) Kind() ErrorKind { return KindFatal }

// RateLimitError represents an upstream rate limit response (HTTP 429).
// Classified retryable: the backoff delay or a fallback provider resolves it.
type RateLimitError struct {
	// Provider is the name of the provider that rate limited the request
	Provider string

	// RetryAfter is the duration to wait before retrying (if provided)
	RetryAfter time.Duration

	// Message is the error message from the provider
	Message string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider %q rate limit exceeded (retry after %s): %s",
			e.Provider, e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("provider %q rate limit exceeded: %s", e.Provider, e.Message)
}

// Kind reports the error classification.
func (e *RateLimitError) Kind() ErrorKind { return KindRetryable }

// TimeoutError represents a request that exceeded its deadline.
type TimeoutError struct {
	// Provider is the name of the provider where the timeout occurred
	Provider string

	// Timeout is the configured timeout duration
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provider %q request timeout after %s", e.Provider, e.Timeout)
}

// Kind reports the error classification.
func (e *TimeoutError) Kind() ErrorKind { return KindRetryable }

// ParseError represents a malformed provider response.
type ParseError struct {
	// Provider is the name of the provider that returned the malformed response
	Provider string

	// RawResponse is the raw response body that failed to parse
	RawResponse string

	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("provider %q response parse error: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Kind reports the error classification. Parse failures are treated as
// transient upstream faults so a fallback provider gets a chance.
func (e *ParseError) Kind() ErrorKind { return KindRetryable }

// ValidationError represents a request validation failure detected before
// the request is sent to any provider.
type ValidationError struct {
	// Field is the name of the invalid field
	Field string

	// Message describes what is invalid about the field
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field %q: %s", e.Field, e.Message)
}

// Kind reports the error classification.
func (e *ValidationError) Kind() ErrorKind { return KindFatal }

// ConfigError represents a provider configuration error.
type ConfigError struct {
	// Provider is the name of the provider with invalid configuration
	Provider string

	// Field is the configuration field that is invalid
	Field string

	// Message describes the configuration error
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %q configuration error for field %q: %s",
		e.Provider, e.Field, e.Message)
}
