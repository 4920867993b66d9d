package storage

import (
	"context"
	"time"
)

// Backend stores limiter snapshots.
type Backend interface {
	// Save replaces the stored snapshot with snap.
	Save(ctx context.Context, snap map[string][]time.Time) error

	// Load returns the stored snapshot. A missing snapshot returns an empty
	// map, not an error.
	Load(ctx context.Context) (map[string][]time.Time, error)

	// Close releases backend resources.
	Close() error
}
