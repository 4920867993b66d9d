// Package ratelimit implements per-caller admission control with a sliding
// window counter.
//
// Each caller key owns an ordered log of admitted-request timestamps inside
// the trailing window, protected by a per-key lock: concurrent admits for the
// same key are fully serialized, admits for different keys never block each
// other. Lock entries are reference counted so the periodic cleanup never
// deletes a lock another goroutine is blocked on.
//
// # Scope
//
// The limiter is single-process. Horizontal scaling requires a shared
// external counter store (e.g. Redis), which this package does not provide.
//
// # Memory
//
// Key entries are created lazily on first Admit and removed by CleanupStale
// once every timestamp has expired; run it periodically (see Janitor) to
// bound memory under high key cardinality.
package ratelimit
