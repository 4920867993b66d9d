package ratelimit

import "time"

const (
	// DefaultRequestsPerMinute is the default admission limit per key.
	DefaultRequestsPerMinute = 60

	// Window is the sliding window length. The limit is expressed per
	// minute, so the window is fixed.
	Window = time.Minute
)

// Decision is the result of an admission check.
type Decision struct {
	// Allowed indicates whether the request was admitted.
	Allowed bool

	// Limit is the configured requests-per-minute limit.
	Limit int

	// Remaining is how many admissions remain in the window. Zero when
	// denied.
	Remaining int

	// Reset is when the oldest retained admission leaves the window. It
	// backs the X-RateLimit-Reset header (epoch seconds).
	Reset time.Time

	// RetryAfter suggests how long a denied caller should wait. Zero when
	// allowed.
	RetryAfter time.Duration
}
