package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tenantdesk/mediagate/internal/apperrors"
	"go.uber.org/zap"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	logger *zap.Logger
}

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error   string         `json:"error"`
	Kind    apperrors.Kind `json:"kind,omitempty"`
	Code    string         `json:"code,omitempty"`
	Details []string       `json:"details,omitempty"`
}

// respondJSON sends a JSON response
func (h *BaseHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// respondError sends an error JSON response
func (h *BaseHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, ErrorResponse{Error: message})
}

// respondAppError maps an application error to its HTTP status.
// Errors outside the taxonomy are logged and hidden behind a 500.
func (h *BaseHandler) respondAppError(w http.ResponseWriter, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		h.logger.Error("unexpected error", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	status := statusOf(appErr)
	if status >= http.StatusInternalServerError {
		h.logger.Warn("media API request failed",
			zap.String("code", appErr.Code),
			zap.Int("upstream_status", appErr.Status),
			zap.Error(err),
		)
	}

	h.respondJSON(w, status, ErrorResponse{
		Error:   appErr.Message,
		Kind:    appErr.Kind,
		Code:    appErr.Code,
		Details: appErr.Details,
	})
}

func statusOf(err *apperrors.Error) int {
	switch err.Kind {
	case apperrors.KindValidation:
		return http.StatusUnprocessableEntity
	case apperrors.KindPermission:
		return http.StatusForbidden
	case apperrors.KindUpload:
		if err.Status == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes a request body, rejecting unknown fields
func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}
