package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Project-Sylos/Specular/internal/api/models"
	"github.com/Project-Sylos/Specular/internal/store"
	"github.com/Project-Sylos/Specular/internal/types"
	"github.com/go-chi/chi/v5"
)

// DocumentHandler handles document and file endpoints
type DocumentHandler struct {
	BaseHandler
	store *store.Store
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(s *store.Store) *DocumentHandler {
	return &DocumentHandler{
		store: s,
	}
}

// CreateDocument handles the create document endpoint
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, req *http.Request) {
	var request models.CreateDocumentRequest
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if request.ParentID == "" || request.Name == "" {
		h.sendError(w, http.StatusBadRequest, "parent_id and name are required")
		return
	}

	content := request.Data
	if request.TypeTag == types.TypeDocument {
		if request.Document == nil {
			h.sendError(w, http.StatusBadRequest, "document is required for type_tag document")
			return
		}
		encoded, err := json.Marshal(request.Document)
		if err != nil {
			h.sendError(w, http.StatusBadRequest, fmt.Sprintf("Invalid document: %v", err))
			return
		}
		content = encoded
	}

	node, err := h.store.CreateDocument(req.Context(), &store.CreateDocumentRequest{
		ParentID:   request.ParentID,
		Name:       request.Name,
		TypeTag:    request.TypeTag,
		Content:    content,
		Restricted: request.Restricted,
	})
	if err != nil {
		h.sendStoreError(w, "Failed to create document", err)
		return
	}

	h.sendJSON(w, http.StatusCreated, types.APIResponse{
		Success: true,
		Message: "Document created successfully",
		Data:    node,
	})
}

// Export handles the markup export endpoint
func (h *DocumentHandler) Export(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")
	if format := req.URL.Query().Get("format"); format != "" && format != "markdown" {
		h.sendError(w, http.StatusBadRequest, fmt.Sprintf("unsupported export format %q", format))
		return
	}

	md, err := h.store.ExportAsMarkup(req.Context(), id)
	if err != nil {
		h.sendStoreError(w, "Failed to export document", err)
		return
	}

	h.sendBody(w, "text/markdown; charset=utf-8", []byte(md))
}

// Raw handles the raw content endpoint
func (h *DocumentHandler) Raw(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")

	data, err := h.store.FetchRaw(req.Context(), id)
	if err != nil {
		h.sendStoreError(w, "Failed to get file data", err)
		return
	}

	h.sendBody(w, "application/octet-stream", data)
}

// SetRestricted handles the restrict endpoint
func (h *DocumentHandler) SetRestricted(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")

	var request models.RestrictRequest
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.store.SetRestricted(req.Context(), id, request.Restricted); err != nil {
		h.sendStoreError(w, "Failed to update node", err)
		return
	}

	h.sendSuccess(w, "Node updated successfully", nil)
}

// AddParent handles the add parent endpoint
func (h *DocumentHandler) AddParent(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")

	var request models.AddParentRequest
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil || request.ParentID == "" {
		h.sendError(w, http.StatusBadRequest, "parent_id is required")
		return
	}

	if err := h.store.AddParent(req.Context(), id, request.ParentID); err != nil {
		h.sendStoreError(w, "Failed to add parent", err)
		return
	}

	h.sendSuccess(w, "Parent added successfully", nil)
}
