package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestJanitor_EmptyScheduleDisabled(t *testing.T) {
	j := NewJanitor(New(10), "")
	if err := j.Start(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if j.IsRunning() {
		t.Error("Janitor should not run without a schedule")
	}
}

func TestJanitor_InvalidSchedule(t *testing.T) {
	j := NewJanitor(New(10), "not a cron expression")
	if err := j.Start(context.Background()); err == nil {
		t.Fatal("Expected error for invalid schedule")
	}
}

func TestJanitor_StartStop(t *testing.T) {
	j := NewJanitor(New(10), "* * * * *")

	ctx, cancel := context.WithCancel(context.Background())
	if err := j.Start(ctx); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !j.IsRunning() {
		t.Fatal("Expected janitor to be running")
	}
	if next := j.NextRun(); next == nil {
		t.Error("Expected a scheduled next run")
	}

	cancel()

	deadline := time.After(2 * time.Second)
	for j.IsRunning() {
		select {
		case <-deadline:
			t.Fatal("Janitor did not stop after context cancellation")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestJanitor_CleanupRemovesStaleKeys(t *testing.T) {
	l, clock := newTestLimiter(10)
	l.Admit("gone")
	clock.Advance(2 * Window)

	j := NewJanitor(l, "* * * * *")
	j.runCleanup()

	if l.KeyCount() != 0 {
		t.Errorf("Expected all keys removed, got %d", l.KeyCount())
	}
}
