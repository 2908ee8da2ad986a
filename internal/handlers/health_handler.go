package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether the database answers
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness
type HealthHandler struct {
	db       Pinger
	trackers func() int
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger, trackers func() int) *HealthHandler {
	return &HealthHandler{db: db, trackers: trackers}
}

// Healthz answers 200 while the database is reachable
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		respondWithError(w, http.StatusServiceUnavailable, "Database unavailable", "Health check failed", err)
		return
	}

	body := map[string]interface{}{"status": "ok"}
	if h.trackers != nil {
		body["active_trackers"] = h.trackers()
	}
	respondJSON(w, http.StatusOK, body)
}
