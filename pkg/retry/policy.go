package retry

import (
	"math"
	"math/rand"
	"time"
)

// Default policy values, matching the gateway configuration defaults.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second
	DefaultMaxDelay   = 60 * time.Second
)

// Policy describes how an operation is retried.
//
// Policy values are immutable configuration: build one at startup and share
// it freely across goroutines.
type Policy struct {
	// MaxRetries is the number of reattempts after the first try.
	// MaxRetries=3 means at most 4 attempts total.
	MaxRetries int

	// BaseDelay is the backoff before the first retry.
	BaseDelay time.Duration

	// MaxDelay caps the exponential backoff growth.
	MaxDelay time.Duration

	// Jitter randomizes each delay by a uniform factor in [0.5, 1.5) to
	// avoid synchronized retry storms.
	Jitter bool

	// Classify reports whether an error is retryable. A nil Classify treats
	// every error as fatal, so unexpected errors propagate instead of being
	// silently retried.
	Classify func(error) bool
}

// NewPolicy returns a policy with the default attempt budget and delays.
// The classification predicate must still be supplied by the caller.
func NewPolicy(classify func(error) bool) Policy {
	return Policy{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		MaxDelay:   DefaultMaxDelay,
		Jitter:     true,
		Classify:   classify,
	}
}

// Delay computes the backoff before retry number attempt (0-based):
// min(BaseDelay * 2^attempt, MaxDelay), optionally jittered.
func (p Policy) Delay(attempt int) time.Duration {
	d := float64(p.BaseDelay) * math.Pow(2, float64(attempt))
	if max := float64(p.MaxDelay); p.MaxDelay > 0 && d > max {
		d = max
	}
	if p.Jitter {
		d *= 0.5 + rand.Float64()
	}
	return time.Duration(d)
}

// retryable applies the classification predicate.
func (p Policy) retryable(err error) bool {
	return p.Classify != nil && p.Classify(err)
}
