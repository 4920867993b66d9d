package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend keeps the snapshot in process memory. It satisfies the
// Backend interface for deployments that do not need persistence, and for
// tests.
type MemoryBackend struct {
	mu   sync.RWMutex
	snap map[string][]time.Time
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{snap: make(map[string][]time.Time)}
}

// Save replaces the stored snapshot with a deep copy of snap.
func (m *MemoryBackend) Save(_ context.Context, snap map[string][]time.Time) error {
	copied := make(map[string][]time.Time, len(snap))
	for key, timestamps := range snap {
		ts := make([]time.Time, len(timestamps))
		copy(ts, timestamps)
		copied[key] = ts
	}

	m.mu.Lock()
	m.snap = copied
	m.mu.Unlock()
	return nil
}

// Load returns a deep copy of the stored snapshot.
func (m *MemoryBackend) Load(_ context.Context) (map[string][]time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	copied := make(map[string][]time.Time, len(m.snap))
	for key, timestamps := range m.snap {
		ts := make([]time.Time, len(timestamps))
		copy(ts, timestamps)
		copied[key] = ts
	}
	return copied, nil
}

// Close is a no-op for the memory backend.
func (m *MemoryBackend) Close() error {
	return nil
}
