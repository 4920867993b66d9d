package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient is the base implementation shared by HTTP-based provider
// adapters. It provides connection pooling, timeout handling, and the
// translation of HTTP failure modes into the classified error taxonomy.
//
// HTTPClient performs no retries: retry policy belongs to the retry executor
// wrapped around the provider call by the caller.
type HTTPClient struct {
	config Config
	client *http.Client
}

// NewHTTPClient creates the shared HTTP transport for a provider adapter.
func NewHTTPClient(config Config) *HTTPClient {
	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &HTTPClient{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
	}
}

// Config returns the adapter configuration.
func (c *HTTPClient) Config() Config {
	return c.config
}

// DoJSON sends a JSON request, decodes a JSON response, and classifies
// every failure mode:
//
//   - 401/403        -> AuthError (fatal)
//   - 429            -> RateLimitError (retryable, honors Retry-After)
//   - other 4xx      -> ProviderError (fatal)
//   - 5xx            -> ProviderError (retryable)
//   - network error  -> ProviderError (retryable), or TimeoutError when the
//     client timeout elapsed; context cancellation propagates unchanged
//   - bad payload    -> ParseError (retryable)
func (c *HTTPClient) DoJSON(ctx context.Context, method, url string, reqBody, respBody any, headers map[string]string) error {
	var bodyReader io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Content-Type") == "" && reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// Caller cancellation or deadline: propagate so the retry executor
		// and fallback chain stop immediately.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Client-side timeout without caller cancellation.
		if isTimeout(err) {
			return &TimeoutError{Provider: c.config.Name, Timeout: c.config.Timeout}
		}
		return &ProviderError{
			Provider:  c.config.Name,
			Message:   "request failed",
			Retryable: true,
			Cause:     err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errorBody, _ := io.ReadAll(resp.Body)
		return c.classifyStatus(resp, string(errorBody))
	}

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ParseError{
			Provider: c.config.Name,
			Cause:    fmt.Errorf("failed to read response: %w", err),
		}
	}

	if respBody != nil && len(responseBytes) > 0 {
		if err := json.Unmarshal(responseBytes, respBody); err != nil {
			return &ParseError{
				Provider:    c.config.Name,
				RawResponse: string(responseBytes),
				Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
			}
		}
	}

	return nil
}

// classifyStatus maps a non-2xx response to a classified error.
func (c *HTTPClient) classifyStatus(resp *http.Response, body string) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{Provider: c.config.Name, Message: body}

	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{
			Provider:   c.config.Name,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    body,
		}

	case resp.StatusCode >= 500:
		return &ProviderError{
			Provider:   c.config.Name,
			StatusCode: resp.StatusCode,
			Message:    body,
			Retryable:  true,
		}

	default:
		// Remaining 4xx: the request itself is wrong, retrying cannot help.
		return &ProviderError{
			Provider:   c.config.Name,
			StatusCode: resp.StatusCode,
			Message:    body,
		}
	}
}

// Close releases idle connections.
func (c *HTTPClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// isTimeout reports whether err is a network timeout.
func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	for e := err; e != nil; {
		if t, ok := e.(timeout); ok && t.Timeout() {
			return true
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		e = u.Unwrap()
	}
	return false
}

// parseRetryAfter parses a Retry-After header value.
// It supports both delay-seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}

	return 0
}
