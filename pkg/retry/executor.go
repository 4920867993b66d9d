package retry

import (
	"context"
	"log/slog"
	"time"
)

// Executor runs operations under a retry policy.
type Executor struct {
	policy Policy
	logger *slog.Logger

	// sleep waits for the backoff delay, aborting on context cancellation.
	// Replaced in tests for deterministic timing.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates an executor for the given policy.
func NewExecutor(policy Policy) *Executor {
	return &Executor{
		policy: policy,
		logger: slog.Default().With("component", "retry"),
		sleep:  sleepContext,
	}
}

// Policy returns the executor's policy.
func (e *Executor) Policy() Policy {
	return e.policy
}

// SetLogger replaces the executor's logger.
func (e *Executor) SetLogger(logger *slog.Logger) {
	if logger != nil {
		e.logger = logger.With("component", "retry")
	}
}

// SetSleep replaces the backoff sleep function. Intended for tests that need
// deterministic timing.
func (e *Executor) SetSleep(sleep func(ctx context.Context, d time.Duration) error) {
	if sleep != nil {
		e.sleep = sleep
	}
}

// Execute runs op, retrying per the policy. The operation must be idempotent;
// that is the caller's responsibility.
//
// On success the result is returned immediately with no delay. A
// non-retryable error propagates with zero retries. When the attempt budget
// is exhausted the last observed error is returned, never swallowed. If ctx
// is cancelled during a backoff sleep, the cancellation error is returned
// and no further attempts are made.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= e.policy.MaxRetries; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if !e.policy.retryable(lastErr) {
			return lastErr
		}

		if attempt == e.policy.MaxRetries {
			e.logger.Error("retry budget exhausted",
				"attempts", attempt+1,
				"max_retries", e.policy.MaxRetries,
				"error", lastErr,
			)
			return lastErr
		}

		delay := e.policy.Delay(attempt)
		e.logger.Warn("retrying after transient failure",
			"attempt", attempt+1,
			"max_retries", e.policy.MaxRetries,
			"delay", delay,
			"error", lastErr,
		)

		if err := e.sleep(ctx, delay); err != nil {
			return err
		}
	}

	return lastErr
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
