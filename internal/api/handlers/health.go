package handlers

import (
	"net/http"

	"github.com/Project-Sylos/Specular/internal/store"
)

// HealthHandler reports liveness and whether the store answers queries
type HealthHandler struct {
	BaseHandler
	store *store.Store
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(s *store.Store) *HealthHandler {
	return &HealthHandler{store: s}
}

// HealthCheck handles the health check endpoint
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, req *http.Request) {
	stats, err := h.store.Stats()
	if err != nil {
		h.sendError(w, http.StatusServiceUnavailable, "Store unavailable")
		return
	}
	h.sendSuccess(w, "Specular API is healthy", map[string]int{"nodes": stats.Total})
}
