package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Project-Sylos/Specular/internal/api/models"
	"github.com/Project-Sylos/Specular/internal/store"
	"github.com/Project-Sylos/Specular/internal/types"
)

// ContainerHandler handles listing and container endpoints
type ContainerHandler struct {
	BaseHandler
	store *store.Store
}

// NewContainerHandler creates a new container handler
func NewContainerHandler(s *store.Store) *ContainerHandler {
	return &ContainerHandler{
		store: s,
	}
}

// ListItems handles the list endpoint. The body is a types.ListRequest and
// the data of the response a types.ListResult.
func (h *ContainerHandler) ListItems(w http.ResponseWriter, req *http.Request) {
	var request types.ListRequest
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if request.ContainerID == "" {
		h.sendError(w, http.StatusBadRequest, "container_id is required")
		return
	}

	result, err := h.store.List(req.Context(), request)
	if err != nil {
		h.sendStoreError(w, "Failed to list children", err)
		return
	}

	h.sendSuccess(w, result.Message, result)
}

// CreateContainer handles the create container endpoint
func (h *ContainerHandler) CreateContainer(w http.ResponseWriter, req *http.Request) {
	var request models.CreateContainerRequest
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if request.ParentID == "" || request.Name == "" {
		h.sendError(w, http.StatusBadRequest, "parent_id and name are required")
		return
	}

	node, err := h.store.CreateContainer(req.Context(), request.ParentID, request.Name)
	if err != nil {
		h.sendStoreError(w, "Failed to create container", err)
		return
	}

	h.sendJSON(w, http.StatusCreated, types.APIResponse{
		Success: true,
		Message: "Container created successfully",
		Data:    node,
	})
}
