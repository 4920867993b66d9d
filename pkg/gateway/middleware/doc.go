// Package middleware provides the HTTP middleware chain for the gateway:
// request IDs, panic recovery, request logging, timeouts, and per-client
// admission control with standard rate limit headers.
package middleware
