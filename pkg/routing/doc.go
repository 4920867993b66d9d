// Package routing orchestrates ordered fallback across a chain of inference
// providers.
//
// Providers are tried strictly in order; the first success wins and no
// further providers are consulted (no parallel fan-out, no result merging, so
// redundant concurrent inference calls are never paid for). A recoverable
// failure moves to the next provider; a fatal error
// propagates immediately. When every provider fails the chain returns
// AllProvidersFailedError carrying each attempt in order.
//
// The chain performs no retries itself. Wrapping each provider call in a
// retry executor is a construction choice (WithRetry), enabling policies
// such as "retry transient faults a few times, then fall back only on
// persistent failure".
package routing
