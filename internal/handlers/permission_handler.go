package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tenantdesk/mediagate/internal/middleware"
	"github.com/tenantdesk/mediagate/internal/models"
	"go.uber.org/zap"
)

// CapabilityChecker is the interface that wraps the principal-wide permission summary
type CapabilityChecker interface {
	// Method Capabilities describes what the dashboard may offer to the principal.
	//
	// "p" parameter is the caller; "nil" describes an anonymous caller.
	Capabilities(p *models.Principal) models.PrincipalCapabilities
}

// FileValidator is the interface that wraps the batch validation entry points
type FileValidator interface {
	ValidateFiles(files []models.FileInfo, ctx models.UploadContext) models.ValidationResult
	ValidateFilesForCategory(files []models.FileInfo, category models.Category, ctx models.UploadContext) models.ValidationResult
}

// ValidateRequest carries declared file attributes to screen before upload
type ValidateRequest struct {
	Context  models.UploadContext `json:"context"`
	Category models.Category      `json:"category,omitempty"`
	Files    []models.FileInfo    `json:"files"`
}

// PermissionHandler serves the capability and pre-upload validation endpoints
type PermissionHandler struct {
	BaseHandler
	checker   CapabilityChecker
	validator FileValidator
}

// NewPermissionHandler creates a new permission handler
func NewPermissionHandler(checker CapabilityChecker, validator FileValidator, logger *zap.Logger) *PermissionHandler {
	return &PermissionHandler{
		BaseHandler: BaseHandler{logger: logger},
		checker:     checker,
		validator:   validator,
	}
}

// RegisterRoutes registers all permission handler routes
func (h *PermissionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/permissions", h.GetCapabilities)
	r.Post("/media/validate", h.ValidateFiles)
}

// GetCapabilities handles GET /permissions
// @Summary Get the caller's upload capabilities
// @Description Tells the dashboard which upload controls, access levels and collections to offer
// @Tags permissions
// @Produce json
// @Success 200 {object} models.PrincipalCapabilities
// @Router /permissions [get]
func (h *PermissionHandler) GetCapabilities(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	h.respondJSON(w, http.StatusOK, h.checker.Capabilities(principal))
}

// ValidateFiles handles POST /media/validate
// @Summary Validate files before upload
// @Description Screens declared file names, sizes and MIME types against the upload rules
// @Tags media
// @Accept json
// @Produce json
// @Param request body ValidateRequest true "Files to screen"
// @Success 200 {object} models.ValidationResult
// @Failure 400 {object} ErrorResponse "Invalid request body"
// @Router /media/validate [post]
func (h *PermissionHandler) ValidateFiles(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Context == "" {
		req.Context = models.ContextDashboard
	}

	var result models.ValidationResult
	if req.Category != "" {
		result = h.validator.ValidateFilesForCategory(req.Files, req.Category, req.Context)
	} else {
		result = h.validator.ValidateFiles(req.Files, req.Context)
	}

	h.respondJSON(w, http.StatusOK, result)
}
