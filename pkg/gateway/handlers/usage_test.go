package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"stratus-hq/helios/pkg/usage"
)

func newUsageStore(t *testing.T) *usage.Store {
	t.Helper()
	store, err := usage.NewStore(&usage.StoreConfig{
		Path: filepath.Join(t.TempDir(), "usage.db"),
	})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestUsageSummary(t *testing.T) {
	store := newUsageStore(t)
	now := time.Now()
	for _, rec := range []*usage.Record{
		{ID: "r1", Timestamp: now, Key: "k", Provider: "anthropic", Model: "m", InputTokens: 100, OutputTokens: 40, Cost: 0.01},
		{ID: "r2", Timestamp: now.Add(-48 * time.Hour), Key: "k", Provider: "anthropic", Model: "m", InputTokens: 999, OutputTokens: 999},
	} {
		if err := store.Record(context.Background(), rec); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	handler := NewUsageHandler(store)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/usage", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Window  string         `json:"window"`
		Summary *usage.Summary `json:"summary"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Window != "24h" {
		t.Errorf("window = %q, want default 24h", resp.Window)
	}
	// The 48h-old record falls outside the default window.
	if resp.Summary.Requests != 1 {
		t.Errorf("Requests = %d, want 1", resp.Summary.Requests)
	}
	if resp.Summary.InputTokens != 100 {
		t.Errorf("InputTokens = %d, want 100", resp.Summary.InputTokens)
	}
}

func TestUsageWindowAll(t *testing.T) {
	store := newUsageStore(t)
	for _, rec := range []*usage.Record{
		{ID: "r1", Timestamp: time.Now(), Key: "k", Provider: "p", Model: "m"},
		{ID: "r2", Timestamp: time.Now().Add(-1000 * time.Hour), Key: "k", Provider: "p", Model: "m"},
	} {
		if err := store.Record(context.Background(), rec); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	handler := NewUsageHandler(store)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/usage?window=all", nil))

	var resp struct {
		Summary *usage.Summary `json:"summary"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Summary.Requests != 2 {
		t.Errorf("Requests = %d, want 2", resp.Summary.Requests)
	}
}

func TestUsageRecentRecords(t *testing.T) {
	store := newUsageStore(t)
	if err := store.Record(context.Background(), &usage.Record{
		ID: "r1", Timestamp: time.Now(), Key: "k", Provider: "p", Model: "m",
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	handler := NewUsageHandler(store)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/usage?recent=5", nil))

	var resp struct {
		Recent []*usage.Record `json:"recent"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Recent) != 1 || resp.Recent[0].ID != "r1" {
		t.Errorf("recent = %v, want one record r1", resp.Recent)
	}
}

func TestUsageBadParams(t *testing.T) {
	handler := NewUsageHandler(newUsageStore(t))

	for _, target := range []string{
		"/v1/usage?window=bogus",
		"/v1/usage?recent=-1",
		"/v1/usage?recent=abc",
	} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", target, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestUsageDisabled(t *testing.T) {
	handler := NewUsageHandler(nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/usage", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when usage is disabled", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	handler := NewHealthHandler("1.2.3", []string{"anthropic", "openai"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Status    string   `json:"status"`
		Version   string   `json:"version"`
		Providers []string `json:"providers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "ok" || resp.Version != "1.2.3" || len(resp.Providers) != 2 {
		t.Errorf("unexpected health response: %+v", resp)
	}
}
