package handlers

import (
	"net/http"

	"stratus-hq/helios/pkg/gateway/types"
)

// HealthHandler serves GET /health.
type HealthHandler struct {
	version   string
	providers []string
}

// NewHealthHandler creates the health handler. providers lists the
// configured fallback chain in order.
func NewHealthHandler(version string, providers []string) *HealthHandler {
	return &HealthHandler{version: version, providers: providers}
}

type healthResponse struct {
	Status    string   `json:"status"`
	Version   string   `json:"version,omitempty"`
	Providers []string `json:"providers"`
}

// ServeHTTP reports gateway liveness and the configured provider chain.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	types.WriteJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Version:   h.version,
		Providers: h.providers,
	})
}
