package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("transient")
var errFatal = errors.New("fatal")

func isTransient(err error) bool { return errors.Is(err, errTransient) }

// recordingSleep captures requested delays without waiting.
func recordingSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return ctx.Err()
	}
}

func TestExecute_SuccessFirstAttempt(t *testing.T) {
	var delays []time.Duration
	e := NewExecutor(Policy{MaxRetries: 3, BaseDelay: time.Second, Classify: isTransient})
	e.sleep = recordingSleep(&delays)

	calls := 0
	err := e.Execute(context.Background(), func(context.Context) error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 attempt, got %d", calls)
	}
	if len(delays) != 0 {
		t.Errorf("Expected no backoff sleeps, got %v", delays)
	}
}

func TestExecute_ExhaustsBudgetAndReturnsLastError(t *testing.T) {
	var delays []time.Duration
	e := NewExecutor(Policy{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   60 * time.Second,
		Classify:   isTransient,
	})
	e.sleep = recordingSleep(&delays)

	calls := 0
	err := e.Execute(context.Background(), func(context.Context) error {
		calls++
		return errTransient
	})

	if !errors.Is(err, errTransient) {
		t.Fatalf("Expected last error to propagate, got %v", err)
	}
	if calls != 4 {
		t.Errorf("Expected exactly 4 attempts, got %d", calls)
	}

	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("Expected %d sleeps, got %v", len(want), delays)
	}
	for i, d := range want {
		if delays[i] != d {
			t.Errorf("Delay %d: expected %v, got %v", i, d, delays[i])
		}
	}
}

func TestExecute_NonRetryableSingleAttempt(t *testing.T) {
	var delays []time.Duration
	e := NewExecutor(Policy{MaxRetries: 3, BaseDelay: time.Second, Classify: isTransient})
	e.sleep = recordingSleep(&delays)

	calls := 0
	err := e.Execute(context.Background(), func(context.Context) error {
		calls++
		return errFatal
	})

	if !errors.Is(err, errFatal) {
		t.Fatalf("Expected fatal error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected exactly 1 attempt, got %d", calls)
	}
	if len(delays) != 0 {
		t.Errorf("Expected no sleeps, got %v", delays)
	}
}

func TestExecute_NilClassifyTreatsAllFatal(t *testing.T) {
	e := NewExecutor(Policy{MaxRetries: 3, BaseDelay: time.Second})

	calls := 0
	err := e.Execute(context.Background(), func(context.Context) error {
		calls++
		return errTransient
	})

	if !errors.Is(err, errTransient) {
		t.Fatalf("Expected error to propagate, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 attempt with nil predicate, got %d", calls)
	}
}

func TestExecute_RecoversMidway(t *testing.T) {
	var delays []time.Duration
	e := NewExecutor(Policy{MaxRetries: 3, BaseDelay: time.Second, Classify: isTransient})
	e.sleep = recordingSleep(&delays)

	calls := 0
	err := e.Execute(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls)
	}
	if len(delays) != 2 {
		t.Errorf("Expected 2 sleeps, got %v", delays)
	}
}

func TestExecute_CancellationDuringBackoff(t *testing.T) {
	e := NewExecutor(Policy{MaxRetries: 5, BaseDelay: time.Hour, Classify: isTransient})

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Execute(ctx, func(context.Context) error {
			calls++
			return errTransient
		})
	}()

	// Let the first attempt fail and enter the hour-long backoff.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Execute did not return after cancellation")
	}

	if calls != 1 {
		t.Errorf("Expected no further attempts after cancellation, got %d", calls)
	}
}

func TestPolicy_DelayGrowthAndCap(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxDelay: 60 * time.Second}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{5, 32 * time.Second},
		{6, 60 * time.Second},  // capped
		{10, 60 * time.Second}, // still capped
	}
	for _, tt := range tests {
		if got := p.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestPolicy_JitterRange(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxDelay: 60 * time.Second, Jitter: true}

	for i := 0; i < 200; i++ {
		d := p.Delay(1) // nominal 2s
		if d < time.Second || d >= 3*time.Second {
			t.Fatalf("Jittered delay %v outside [1s, 3s)", d)
		}
	}
}

func TestNewPolicy_Defaults(t *testing.T) {
	p := NewPolicy(isTransient)
	if p.MaxRetries != 3 || p.BaseDelay != time.Second || p.MaxDelay != 60*time.Second {
		t.Errorf("Unexpected defaults: %+v", p)
	}
	if !p.Jitter {
		t.Error("Expected jitter enabled by default")
	}
}
