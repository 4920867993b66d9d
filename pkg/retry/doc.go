// Package retry provides transient-fault retry with capped exponential
// backoff and optional jitter.
//
// The executor wraps a single idempotent operation. Failures are classified
// by the policy's predicate: non-retryable errors propagate immediately with
// zero retries, retryable errors are reattempted after a backoff sleep until
// the attempt budget is exhausted, at which point the last error is returned.
// Cancelling the caller's context during a backoff sleep aborts immediately.
//
// The package is deliberately unaware of provider error types; callers pass
// a classification predicate (typically providers.IsRetryable).
package retry
