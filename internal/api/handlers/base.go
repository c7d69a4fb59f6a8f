package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Project-Sylos/Specular/internal/logging"
	"github.com/Project-Sylos/Specular/internal/query"
	"github.com/Project-Sylos/Specular/internal/store"
	"github.com/Project-Sylos/Specular/internal/types"
	"go.uber.org/zap"
)

// BaseHandler provides common functionality for all API handlers
type BaseHandler struct{}

// sendJSON sends a JSON response with the given status code and data
func (h *BaseHandler) sendJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.L().Warn("Failed to encode response", zap.Error(err))
	}
}

// sendError sends an error response with the given status code and message
func (h *BaseHandler) sendError(w http.ResponseWriter, statusCode int, message string) {
	h.sendJSON(w, statusCode, types.APIResponse{
		Success: false,
		Message: message,
	})
}

// sendSuccess sends a success response with the given data
func (h *BaseHandler) sendSuccess(w http.ResponseWriter, message string, data any) {
	h.sendJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// sendStoreError maps store errors onto HTTP status codes
func (h *BaseHandler) sendStoreError(w http.ResponseWriter, prefix string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, store.ErrNotExportable),
		errors.Is(err, store.ErrNotContainer),
		errors.Is(err, query.ErrSyntax):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		logging.L().Error(prefix, zap.Error(err))
	}
	h.sendError(w, status, prefix+": "+err.Error())
}

// sendBody writes raw content with the given content type
func (h *BaseHandler) sendBody(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
