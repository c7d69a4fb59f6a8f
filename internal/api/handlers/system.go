package handlers

import (
	"fmt"
	"net/http"

	"github.com/Project-Sylos/Specular/internal/api/models"
	"github.com/Project-Sylos/Specular/internal/store"
)

// SystemHandler handles system-related endpoints
type SystemHandler struct {
	BaseHandler
	store *store.Store
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(s *store.Store) *SystemHandler {
	return &SystemHandler{
		store: s,
	}
}

// Reset handles the reset endpoint
func (h *SystemHandler) Reset(w http.ResponseWriter, req *http.Request) {
	if err := h.store.Reset(); err != nil {
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to reset store: %v", err))
		return
	}

	h.sendSuccess(w, "Store reset successfully", nil)
}

// Seed handles the seed endpoint
func (h *SystemHandler) Seed(w http.ResponseWriter, req *http.Request) {
	n, err := h.store.Seed(req.Context())
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to seed store: %v", err))
		return
	}

	h.sendSuccess(w, "Store seeded successfully", models.SeedResponse{Created: n})
}

// GetConfig handles the get config endpoint
func (h *SystemHandler) GetConfig(w http.ResponseWriter, req *http.Request) {
	cfg := *h.store.Config()
	// never echo credentials
	cfg.Mirror.AuthToken = ""
	h.sendSuccess(w, "Config retrieved successfully", cfg)
}

// GetStats handles the get stats endpoint
func (h *SystemHandler) GetStats(w http.ResponseWriter, req *http.Request) {
	stats, err := h.store.Stats()
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to get stats: %v", err))
		return
	}

	h.sendSuccess(w, "Stats retrieved successfully", stats)
}
