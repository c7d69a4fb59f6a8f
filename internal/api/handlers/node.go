package handlers

import (
	"net/http"

	"github.com/Project-Sylos/Specular/internal/store"
	"github.com/Project-Sylos/Specular/internal/types"
	"github.com/go-chi/chi/v5"
)

// NodeHandler handles node-related endpoints
type NodeHandler struct {
	BaseHandler
	store *store.Store
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(s *store.Store) *NodeHandler {
	return &NodeHandler{
		store: s,
	}
}

// GetNode handles the get node endpoint
func (h *NodeHandler) GetNode(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")

	node, err := h.store.GetNode(req.Context(), id)
	if err != nil {
		h.sendStoreError(w, "Failed to get node", err)
		return
	}

	h.sendSuccess(w, "Node retrieved successfully", node)
}

// DeleteNode handles the delete node endpoint
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")

	// Prevent deletion of root node
	if id == types.RootID {
		h.sendError(w, http.StatusBadRequest, "Cannot delete root node")
		return
	}

	if err := h.store.DeleteNode(req.Context(), id); err != nil {
		h.sendStoreError(w, "Failed to delete node", err)
		return
	}

	h.sendSuccess(w, "Node deleted successfully", nil)
}
