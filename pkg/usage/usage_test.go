package usage

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(&StoreConfig{
		Path:         filepath.Join(t.TempDir(), "usage.db"),
		MaxOpenConns: 2,
		BusyTimeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRecordAndSummarize(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	records := []*Record{
		{ID: "r1", Timestamp: now, Key: "tenant-a", Provider: "anthropic", Model: "claude-sonnet-4", InputTokens: 100, OutputTokens: 50, Cost: 0.001, LatencyMs: 250},
		{ID: "r2", Timestamp: now, Key: "tenant-a", Provider: "anthropic", Model: "claude-sonnet-4", InputTokens: 200, OutputTokens: 80, Cost: 0.002, LatencyMs: 300},
		{ID: "r3", Timestamp: now, Key: "tenant-b", Provider: "openai", Model: "gpt-4o", InputTokens: 50, OutputTokens: 20, Cost: 0.0005, LatencyMs: 180},
	}
	for _, rec := range records {
		if err := store.Record(ctx, rec); err != nil {
			t.Fatalf("Record(%s): %v", rec.ID, err)
		}
	}

	summary, err := store.Summarize(ctx, time.Time{})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.Requests != 3 {
		t.Errorf("Requests = %d, want 3", summary.Requests)
	}
	if summary.InputTokens != 350 {
		t.Errorf("InputTokens = %d, want 350", summary.InputTokens)
	}
	if summary.OutputTokens != 150 {
		t.Errorf("OutputTokens = %d, want 150", summary.OutputTokens)
	}

	anthropic := summary.ByProvider["anthropic"]
	if anthropic == nil || anthropic.Requests != 2 {
		t.Errorf("anthropic summary = %+v, want 2 requests", anthropic)
	}
	openai := summary.ByProvider["openai"]
	if openai == nil || openai.Requests != 1 {
		t.Errorf("openai summary = %+v, want 1 request", openai)
	}
}

func TestStoreSummarizeSince(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	old := &Record{ID: "old", Timestamp: now.Add(-2 * time.Hour), Key: "k", Provider: "anthropic", Model: "m", InputTokens: 10, OutputTokens: 5}
	recent := &Record{ID: "recent", Timestamp: now, Key: "k", Provider: "anthropic", Model: "m", InputTokens: 20, OutputTokens: 10}
	for _, rec := range []*Record{old, recent} {
		if err := store.Record(ctx, rec); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	summary, err := store.Summarize(ctx, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.Requests != 1 {
		t.Errorf("Requests = %d, want 1 (only recent record)", summary.Requests)
	}
	if summary.InputTokens != 20 {
		t.Errorf("InputTokens = %d, want 20", summary.InputTokens)
	}
}

func TestStoreRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 5; i++ {
		rec := &Record{
			ID:        string(rune('a' + i)),
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Key:       "k", Provider: "p", Model: "m",
		}
		if err := store.Record(ctx, rec); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	records, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[0].ID != "e" || records[2].ID != "c" {
		t.Errorf("records not newest-first: %s, %s, %s", records[0].ID, records[1].ID, records[2].ID)
	}
}

func TestStorePrune(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	for _, rec := range []*Record{
		{ID: "old", Timestamp: now.Add(-48 * time.Hour), Key: "k", Provider: "p", Model: "m"},
		{ID: "new", Timestamp: now, Key: "k", Provider: "p", Model: "m"},
	} {
		if err := store.Record(ctx, rec); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	removed, err := store.Prune(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	records, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 1 || records[0].ID != "new" {
		t.Errorf("surviving records = %v, want only %q", records, "new")
	}
}

func TestCalculatorCost(t *testing.T) {
	calc := NewCalculator(map[string]Pricing{
		"claude-sonnet-4": {InputPerMTok: 3.0, OutputPerMTok: 15.0},
		"gpt-4o":          {InputPerMTok: 2.5, OutputPerMTok: 10.0},
	})

	tests := []struct {
		name         string
		model        string
		input, output int
		want         float64
	}{
		{"exact match", "claude-sonnet-4", 1_000_000, 1_000_000, 18.0},
		{"prefix match", "claude-sonnet-4-20250514", 1_000_000, 0, 3.0},
		{"case insensitive", "GPT-4o", 0, 1_000_000, 10.0},
		{"unknown model uses default", "mystery-model", 1_000_000, 0, defaultPricing.InputPerMTok},
		{"zero tokens", "gpt-4o", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.Cost(tt.model, tt.input, tt.output)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cost(%q, %d, %d) = %v, want %v", tt.model, tt.input, tt.output, got, tt.want)
			}
		})
	}
}

func TestCalculatorReload(t *testing.T) {
	calc := NewCalculator(map[string]Pricing{
		"m": {InputPerMTok: 1.0, OutputPerMTok: 1.0},
	})
	if got := calc.Cost("m", 1_000_000, 0); got != 1.0 {
		t.Fatalf("Cost before reload = %v, want 1.0", got)
	}

	calc.Reload(map[string]Pricing{
		"m": {InputPerMTok: 2.0, OutputPerMTok: 2.0},
	})
	if got := calc.Cost("m", 1_000_000, 0); got != 2.0 {
		t.Errorf("Cost after reload = %v, want 2.0", got)
	}
}

func TestStoreRejectsEmptyPath(t *testing.T) {
	_, err := NewStore(&StoreConfig{Path: ""})
	if err == nil {
		t.Fatal("NewStore with empty path succeeded, want error")
	}
}
