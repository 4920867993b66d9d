package ratelimit

import (
	"log/slog"
	"sync"
	"time"
)

// Limiter is a sliding window admission controller keyed by caller.
//
// A call that is cancelled after Admit returns has still consumed its slot;
// that is an accepted tradeoff of counting at admission time, not a defect.
type Limiter struct {
	limit  int
	window time.Duration

	// mu guards the entries map and every entry's refs counter.
	mu      sync.Mutex
	entries map[string]*entry

	logger *slog.Logger

	// now is the clock; replaced in tests.
	now func() time.Time
}

// entry is the per-key request log and its lock.
//
// refs counts goroutines that hold or are waiting for mu. It is incremented
// under Limiter.mu before mu is acquired and decremented under Limiter.mu
// after mu is released, so refs == 0 guarantees no holder and no waiter.
type entry struct {
	mu         sync.Mutex
	refs       int
	timestamps []time.Time
}

// New creates a limiter admitting at most requestsPerMinute requests per key
// within the trailing minute. Non-positive limits fall back to the default.
func New(requestsPerMinute int) *Limiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}
	return &Limiter{
		limit:   requestsPerMinute,
		window:  Window,
		entries: make(map[string]*entry),
		logger:  slog.Default().With("component", "ratelimit"),
		now:     time.Now,
	}
}

// Limit returns the configured requests-per-minute limit.
func (l *Limiter) Limit() int {
	return l.limit
}

// Admit checks whether a request for key is allowed and, if so, records it.
//
// Admissions for the same key are serialized through the key's lock: two
// concurrent callers can never both observe one remaining slot and both be
// admitted. Keys are fully independent of each other.
func (l *Limiter) Admit(key string) Decision {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	now := l.now()
	e.purge(now.Add(-l.window))

	count := len(e.timestamps)
	allowed := count < l.limit

	remaining := 0
	if allowed {
		e.timestamps = append(e.timestamps, now)
		remaining = l.limit - count - 1
	}

	reset := now
	if len(e.timestamps) > 0 {
		reset = e.timestamps[0].Add(l.window)
	}
	e.mu.Unlock()

	l.mu.Lock()
	e.refs--
	l.mu.Unlock()

	d := Decision{
		Allowed:   allowed,
		Limit:     l.limit,
		Remaining: remaining,
		Reset:     reset,
	}
	if !allowed {
		d.RetryAfter = reset.Sub(now)
		l.logger.Warn("rate limit exceeded",
			"key", key,
			"limit", l.limit,
			"current_count", count,
		)
	}
	return d
}

// CleanupStale removes every key whose admissions have all left the window,
// deleting the request log and its lock together. A key with at least one
// in-window timestamp is never removed, and a lock is never removed while a
// concurrent Admit holds or awaits it (refs > 0). Returns the number of keys
// removed.
func (l *Limiter) CleanupStale() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	removed := 0

	for key, e := range l.entries {
		if e.refs > 0 {
			continue
		}
		// refs == 0 under l.mu: nobody holds or awaits e.mu, and no new
		// waiter can register until l.mu is released.
		e.mu.Lock()
		e.purge(cutoff)
		empty := len(e.timestamps) == 0
		e.mu.Unlock()

		if empty {
			delete(l.entries, key)
			removed++
		}
	}

	if removed > 0 {
		l.logger.Debug("rate limiter cleanup", "removed_keys", removed)
	}
	return removed
}

// KeyCount returns the number of tracked keys.
func (l *Limiter) KeyCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Snapshot returns a copy of every key's in-window admission timestamps,
// suitable for persistence across restarts.
func (l *Limiter) Snapshot() map[string][]time.Time {
	l.mu.Lock()
	keys := make([]string, 0, len(l.entries))
	entries := make([]*entry, 0, len(l.entries))
	for key, e := range l.entries {
		keys = append(keys, key)
		entries = append(entries, e)
		e.refs++
	}
	l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	snap := make(map[string][]time.Time, len(keys))
	for i, e := range entries {
		e.mu.Lock()
		e.purge(cutoff)
		if len(e.timestamps) > 0 {
			ts := make([]time.Time, len(e.timestamps))
			copy(ts, e.timestamps)
			snap[keys[i]] = ts
		}
		e.mu.Unlock()
	}

	l.mu.Lock()
	for _, e := range entries {
		e.refs--
	}
	l.mu.Unlock()

	return snap
}

// Restore seeds the limiter from a previously saved snapshot. Expired
// timestamps are dropped on the next Admit or CleanupStale for the key.
// Intended for startup, before the limiter is shared.
func (l *Limiter) Restore(snap map[string][]time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, timestamps := range snap {
		if len(timestamps) == 0 {
			continue
		}
		ts := make([]time.Time, len(timestamps))
		copy(ts, timestamps)
		l.entries[key] = &entry{timestamps: ts}
	}
}

// purge drops timestamps at or before cutoff. Caller must hold e.mu.
func (e *entry) purge(cutoff time.Time) {
	keep := e.timestamps[:0]
	for _, t := range e.timestamps {
		if t.After(cutoff) {
			keep = append(keep, t)
		}
	}
	// Zero the tail so dropped entries do not pin memory.
	for i := len(keep); i < len(e.timestamps); i++ {
		e.timestamps[i] = time.Time{}
	}
	e.timestamps = keep
}
