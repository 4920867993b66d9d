package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor runs CleanupStale on a cron schedule to bound limiter memory under
// high caller cardinality.
type Janitor struct {
	limiter  *Limiter
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewJanitor creates a janitor for the limiter.
//
// Common schedules:
//   - "* * * * *"   - every minute
//   - "*/5 * * * *" - every 5 minutes
func NewJanitor(limiter *Limiter, schedule string) *Janitor {
	return &Janitor{
		limiter:  limiter,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "ratelimit.janitor"),
	}
}

// Start begins scheduled cleanup. An empty schedule disables the janitor.
// The janitor stops when ctx is cancelled.
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.schedule == "" {
		j.logger.Info("cleanup schedule not configured, janitor disabled")
		return nil
	}

	if _, err := cron.ParseStandard(j.schedule); err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", j.schedule, err)
	}

	if _, err := j.cron.AddFunc(j.schedule, j.runCleanup); err != nil {
		return fmt.Errorf("failed to schedule cleanup: %w", err)
	}

	j.cron.Start()
	j.running = true

	j.logger.Info("rate limiter janitor started", "schedule", j.schedule)

	go func() {
		<-ctx.Done()
		j.Stop()
	}()

	return nil
}

// runCleanup executes one cleanup cycle.
func (j *Janitor) runCleanup() {
	removed := j.limiter.CleanupStale()
	if removed > 0 {
		j.logger.Info("scheduled cleanup completed", "removed_keys", removed)
	} else {
		j.logger.Debug("scheduled cleanup completed, no stale keys")
	}
}

// Stop stops the janitor and waits for a running cleanup to finish.
func (j *Janitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.cron != nil && j.running {
		ctx := j.cron.Stop()
		<-ctx.Done()
		j.running = false
		j.logger.Info("rate limiter janitor stopped")
	}
}

// IsRunning reports whether the janitor is scheduled.
func (j *Janitor) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}

// NextRun returns the next scheduled cleanup time, or nil when not running.
func (j *Janitor) NextRun() *time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()

	entries := j.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
