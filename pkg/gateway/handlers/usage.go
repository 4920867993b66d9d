package handlers

import (
	"net/http"
	"strconv"
	"time"

	"stratus-hq/helios/pkg/gateway/types"
	"stratus-hq/helios/pkg/telemetry/logging"
	"stratus-hq/helios/pkg/usage"
)

// UsageHandler serves GET /v1/usage: aggregated token and cost totals, with
// optional recent records.
//
// Query parameters:
//
//	window  aggregation window as a Go duration (default 24h, "all" for everything)
//	recent  include the N most recent records
type UsageHandler struct {
	store *usage.Store
}

// NewUsageHandler creates the usage handler.
func NewUsageHandler(store *usage.Store) *UsageHandler {
	return &UsageHandler{store: store}
}

// usageResponse is the body of GET /v1/usage.
type usageResponse struct {
	Window  string          `json:"window"`
	Summary *usage.Summary  `json:"summary"`
	Recent  []*usage.Record `json:"recent,omitempty"`
}

// ServeHTTP handles a usage query.
func (h *UsageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		types.WriteError(w, http.StatusNotFound,
			types.ErrTypeInvalidRequest, "usage tracking is disabled")
		return
	}

	window := 24 * time.Hour
	windowParam := r.URL.Query().Get("window")
	switch windowParam {
	case "":
		windowParam = "24h"
	case "all":
		window = 0
	default:
		d, err := time.ParseDuration(windowParam)
		if err != nil || d < 0 {
			types.WriteError(w, http.StatusBadRequest,
				types.ErrTypeInvalidRequest, "window must be a positive duration or \"all\"")
			return
		}
		window = d
	}

	since := time.Time{}
	if window > 0 {
		since = time.Now().Add(-window)
	}

	summary, err := h.store.Summarize(r.Context(), since)
	if err != nil {
		logging.FromContext(r.Context()).Error("usage query failed", "error", err)
		types.WriteError(w, http.StatusInternalServerError,
			types.ErrTypeInternal, "failed to query usage")
		return
	}

	resp := usageResponse{Window: windowParam, Summary: summary}

	if recentParam := r.URL.Query().Get("recent"); recentParam != "" {
		n, err := strconv.Atoi(recentParam)
		if err != nil || n <= 0 {
			types.WriteError(w, http.StatusBadRequest,
				types.ErrTypeInvalidRequest, "recent must be a positive integer")
			return
		}
		records, err := h.store.Recent(r.Context(), n)
		if err != nil {
			logging.FromContext(r.Context()).Error("usage query failed", "error", err)
			types.WriteError(w, http.StatusInternalServerError,
				types.ErrTypeInternal, "failed to query usage")
			return
		}
		resp.Recent = records
	}

	types.WriteJSON(w, http.StatusOK, resp)
}
