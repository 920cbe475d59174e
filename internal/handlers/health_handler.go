package handlers

import (
	"context"
	"net/http"
	"time"

	"dailydiet/internal/database"
)

// HealthHandler reports whether the database is reachable
type HealthHandler struct {
	db *database.DB
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health pings the database
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		respondWithError(w, http.StatusServiceUnavailable, "database connection failed", "Health check failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
