package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthHandler reports service liveness, version and uptime.
type HealthHandler struct {
	version   string
	startTime time.Time
}

// NewHealthHandler creates a health handler anchored at process start.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		version:   version,
		startTime: time.Now(),
	}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":         "healthy",
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	})
}
