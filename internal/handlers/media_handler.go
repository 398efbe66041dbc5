package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/tenantdesk/mediagate/internal/apperrors"
	"github.com/tenantdesk/mediagate/internal/format"
	"github.com/tenantdesk/mediagate/internal/middleware"
	"github.com/tenantdesk/mediagate/internal/models"
	"github.com/tenantdesk/mediagate/internal/permissions"
	"github.com/tenantdesk/mediagate/internal/services"
	"github.com/tenantdesk/mediagate/internal/validation"
	"go.uber.org/zap"
)

const (
	maxMultipartMemory = 32 << 20
	genericMimeType    = "application/octet-stream"
)

// MediaService is the interface that wraps the media operations used by the handlers
type MediaService interface {
	// Method Get retrieves an asset by its ID.
	//
	// "id" parameter is the asset ID.
	//
	// If some error occurs, the error will be returned together with "nil" value.
	Get(ctx context.Context, id string) (*models.MediaAsset, error)
	// Method Lookup retrieves an asset for a pre-flight permission check before a write.
	//
	// "id" parameter is the asset ID.
	//
	// The result may come from the cache and must not be served as a read.
	Lookup(ctx context.Context, id string) (*models.MediaAsset, error)
	// Method List retrieves a page of assets.
	//
	// "filter" parameter carries pagination, search and filter values.
	//
	// If some error occurs, the error will be returned together with "nil" value.
	List(ctx context.Context, filter models.MediaFilter) (*models.MediaPage, error)
	// Method Update changes the editable metadata of an asset.
	//
	// "id" parameter is the asset ID.
	// "patch" parameter holds the fields to change.
	//
	// If some error occurs, the error will be returned together with "nil" value.
	Update(ctx context.Context, id string, patch models.UpdateMediaRequest) (*models.MediaAsset, error)
	// Method Delete removes an asset.
	//
	// "id" parameter is the asset ID.
	//
	// If some error occurs, the error will be returned.
	Delete(ctx context.Context, id string) error
	// Method DeleteManyOutcome removes several assets and reports the result per ID.
	//
	// "ids" parameter lists the asset IDs.
	DeleteManyOutcome(ctx context.Context, ids []string) *models.DeleteOutcome
	// Method AttachToModel links an asset to an owning model.
	//
	// "id" parameter is the asset ID.
	// "attachment" parameter identifies the model and the collection.
	//
	// If some error occurs, the error will be returned.
	AttachToModel(ctx context.Context, id string, attachment models.ModelAttachment) error
	// Method DetachFromModel removes the link between an asset and a model.
	//
	// "id" parameter is the asset ID.
	// "ref" parameter identifies the model.
	//
	// If some error occurs, the error will be returned.
	DetachFromModel(ctx context.Context, id string, ref models.ModelRef) error
	// Method GetModelMedia lists the assets attached to a model.
	//
	// "modelType" and "modelID" parameters identify the model.
	// "collection" parameter optionally narrows the result to one collection.
	//
	// If some error occurs, the error will be returned together with "nil" value.
	GetModelMedia(ctx context.Context, modelType, modelID string, collection models.CollectionType) ([]models.MediaAsset, error)
	// Method GetStats retrieves aggregate media figures.
	//
	// If some error occurs, the error will be returned together with "nil" value.
	GetStats(ctx context.Context) (*models.MediaStatsResponse, error)
}

// Uploader is the interface that wraps the gated upload flow
type Uploader interface {
	// Method Upload checks permissions, validates and uploads one file.
	//
	// "tracker" parameter follows the upload state; "nil" creates a fresh one.
	//
	// If the upload is refused or fails, the error will be returned together with "nil" value.
	Upload(ctx context.Context, tracker *services.UploadTracker, req services.UploadRequest) (*models.MediaAsset, error)
	// Method UploadMany checks permissions, validates and uploads a batch in one request.
	//
	// If the batch is refused or the request fails, the error will be returned together with "nil" value.
	UploadMany(ctx context.Context, tracker *services.UploadTracker, req services.BulkUploadRequest) (*models.BulkOutcome, error)
}

// AssetPermissions is the interface that wraps the per-asset permission decisions
type AssetPermissions interface {
	CanView(p *models.Principal, asset *models.MediaAsset) bool
	CanEdit(p *models.Principal, asset *models.MediaAsset) bool
	CanDelete(p *models.Principal, asset *models.MediaAsset) bool
	CanAccessLevel(p *models.Principal, level models.AccessLevel) bool
	Summary(p *models.Principal, asset *models.MediaAsset) models.AssetPermissions
}

// MediaHandler handles media-related HTTP requests
type MediaHandler struct {
	BaseHandler
	mediaService MediaService
	uploader     Uploader
	permissions  AssetPermissions
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(mediaService MediaService, uploader Uploader, checker AssetPermissions, logger *zap.Logger) *MediaHandler {
	return &MediaHandler{
		BaseHandler:  BaseHandler{logger: logger},
		mediaService: mediaService,
		uploader:     uploader,
		permissions:  checker,
	}
}

// RegisterRoutes registers all media handler routes
func (h *MediaHandler) RegisterRoutes(r chi.Router) {
	r.Get("/media", h.ListMedia)
	r.Get("/media/stats", h.GetStats)
	r.Get("/media/{id}", h.GetMedia)
	r.Get("/media/{id}/permissions", h.GetMediaPermissions)
	r.Get("/models/{type}/{id}/media", h.GetModelMedia)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireActive)
		r.Post("/media", h.UploadFile)
		r.Post("/media/bulk", h.UploadFiles)
		r.Post("/media/bulk-delete", h.DeleteFiles)
		r.Patch("/media/{id}", h.UpdateMedia)
		r.Delete("/media/{id}", h.DeleteMedia)
		r.Post("/media/{id}/attach", h.AttachMedia)
		r.Post("/media/{id}/detach", h.DetachMedia)
	})
}

// ListMedia handles GET /media
// @Summary List media files
// @Description Returns a page of media files visible to the caller
// @Tags media
// @Produce json
// @Param page query int false "Page number"
// @Param count query int false "Items per page"
// @Param search query string false "Search term"
// @Param mimeType query string false "MIME type prefix"
// @Param accessLevel query string false "Access level"
// @Param collection query string false "Collection name"
// @Success 200 {object} MediaListResponse
// @Failure 400 {object} ErrorResponse "Invalid query"
// @Failure 502 {object} ErrorResponse "Media API failure"
// @Router /media [get]
func (h *MediaHandler) ListMedia(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := models.MediaFilter{
		Search:      query.Get("search"),
		MimePrefix:  query.Get("mimeType"),
		AccessLevel: models.AccessLevel(query.Get("accessLevel")),
		Collection:  models.CollectionType(query.Get("collection")),
	}

	var err error
	if filter.Page, err = optionalInt(query.Get("page")); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid page parameter")
		return
	}
	if filter.Count, err = optionalInt(query.Get("count")); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid count parameter")
		return
	}
	if filter.AccessLevel != "" && !filter.AccessLevel.IsValid() {
		h.respondError(w, http.StatusBadRequest, "invalid accessLevel parameter")
		return
	}

	page, err := h.mediaService.List(r.Context(), filter)
	if err != nil {
		h.respondAppError(w, err)
		return
	}

	principal := middleware.GetPrincipal(r.Context())
	h.respondJSON(w, http.StatusOK, MediaListResponse{
		Items: format.Views(h.visible(principal, page.Items)),
		Total: page.Total,
		Page:  page.Page,
		Count: page.Count,
	})
}

// GetStats handles GET /media/stats
// @Summary Get media statistics
// @Description Returns aggregate media figures visible to the caller
// @Tags media
// @Produce json
// @Success 200 {object} models.MediaStatsResponse
// @Failure 502 {object} ErrorResponse "Media API failure"
// @Router /media/stats [get]
func (h *MediaHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.mediaService.GetStats(r.Context())
	if err != nil {
		h.respondAppError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, stats)
}

// GetMedia handles GET /media/{id}
// @Summary Get a media file
// @Description Returns one media file with its display labels
// @Tags media
// @Produce json
// @Param id path string true "Media ID"
// @Success 200 {object} models.MediaAssetView
// @Failure 403 {object} ErrorResponse "Not visible to the caller"
// @Failure 404 {object} ErrorResponse "Media not found"
// @Router /media/{id} [get]
func (h *MediaHandler) GetMedia(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	asset, err := h.mediaService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondAppError(w, err)
		return
	}
	if err := permissions.Require(h.permissions.CanView(principal, asset), "view this file"); err != nil {
		h.respondAppError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, format.View(*asset))
}

// GetMediaPermissions handles GET /media/{id}/permissions
// @Summary Get the caller's permissions on a media file
// @Tags media
// @Produce json
// @Param id path string true "Media ID"
// @Success 200 {object} models.AssetPermissions
// @Failure 404 {object} ErrorResponse "Media not found"
// @Router /media/{id}/permissions [get]
func (h *MediaHandler) GetMediaPermissions(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	asset, err := h.mediaService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondAppError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, h.permissions.Summary(principal, asset))
}

// GetModelMedia handles GET /models/{type}/{id}/media
// @Summary List media attached to a model
// @Tags media
// @Produce json
// @Param type path string true "Model type"
// @Param id path string true "Model ID"
// @Param collection query string false "Collection name"
// @Success 200 {array} models.MediaAssetView
// @Failure 502 {object} ErrorResponse "Media API failure"
// @Router /models/{type}/{id}/media [get]
func (h *MediaHandler) GetModelMedia(w http.ResponseWriter, r *http.Request) {
	assets, err := h.mediaService.GetModelMedia(r.Context(),
		chi.URLParam(r, "type"),
		chi.URLParam(r, "id"),
		models.CollectionType(r.URL.Query().Get("collection")),
	)
	if err != nil {
		h.respondAppError(w, err)
		return
	}

	principal := middleware.GetPrincipal(r.Context())
	h.respondJSON(w, http.StatusOK, format.Views(h.visible(principal, assets)))
}

// UploadFile handles POST /media
// @Summary Upload a media file
// @Description Checks permissions and validates the file before forwarding it to the media API
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Param context formData string false "Upload context (dashboard, academy, support)"
// @Param accessLevel formData string false "Access level"
// @Param collectionName formData string false "Collection name"
// @Success 201 {object} models.MediaAssetView
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 403 {object} ErrorResponse "Permission denied"
// @Failure 422 {object} ErrorResponse "Validation failed"
// @Failure 502 {object} ErrorResponse "Media API failure"
// @Security BearerAuth
// @Router /media [post]
func (h *MediaHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		h.logger.Warn("failed to parse multipart form", zap.Error(err))
		h.respondError(w, http.StatusBadRequest, "failed to parse request")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		h.respondError(w, http.StatusBadRequest, "file is required")
		return
	}

	file, closer, err := h.openPart(headers[0])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "failed to read file")
		return
	}
	defer closer.Close()

	principal := middleware.GetPrincipal(r.Context())
	descriptor, err := parseDescriptor(r, principal)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	asset, err := h.uploader.Upload(r.Context(), nil, services.UploadRequest{
		Principal:  principal,
		Context:    uploadContext(r),
		File:       file,
		Descriptor: descriptor,
	})
	if err != nil {
		h.respondAppError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, format.View(*asset))
}

// UploadFiles handles POST /media/bulk
// @Summary Upload several media files
// @Description Uploads a batch in one request. Failed items are reported, not retried.
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Param files[] formData file true "Files to upload"
// @Param context formData string false "Upload context (dashboard, academy, support)"
// @Success 201 {object} models.BulkOutcome
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 403 {object} ErrorResponse "Permission denied"
// @Failure 422 {object} ErrorResponse "Validation failed"
// @Failure 502 {object} ErrorResponse "Media API failure"
// @Security BearerAuth
// @Router /media/bulk [post]
func (h *MediaHandler) UploadFiles(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		h.logger.Warn("failed to parse multipart form", zap.Error(err))
		h.respondError(w, http.StatusBadRequest, "failed to parse request")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files[]"]
	files := make([]models.UploadFile, 0, len(headers))
	for _, header := range headers {
		file, closer, err := h.openPart(header)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "failed to read file")
			return
		}
		defer closer.Close()
		files = append(files, file)
	}

	principal := middleware.GetPrincipal(r.Context())
	descriptor, err := parseDescriptor(r, principal)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := h.uploader.UploadMany(r.Context(), nil, services.BulkUploadRequest{
		Principal:  principal,
		Context:    uploadContext(r),
		Files:      files,
		Descriptor: descriptor,
	})
	if err != nil {
		h.respondAppError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, outcome)
}

// UpdateMedia handles PATCH /media/{id}
// @Summary Update media metadata
// @Tags media
// @Accept json
// @Produce json
// @Param id path string true "Media ID"
// @Param request body models.UpdateMediaRequest true "Fields to change"
// @Success 200 {object} models.MediaAssetView
// @Failure 400 {object} ErrorResponse "Invalid request body"
// @Failure 403 {object} ErrorResponse "Permission denied"
// @Failure 404 {object} ErrorResponse "Media not found"
// @Failure 422 {object} ErrorResponse "Validation failed"
// @Security BearerAuth
// @Router /media/{id} [patch]
func (h *MediaHandler) UpdateMedia(w http.ResponseWriter, r *http.Request) {
	var patch models.UpdateMediaRequest
	if err := decodeJSON(r, &patch); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	principal := middleware.GetPrincipal(r.Context())
	asset, err := h.loadAsset(r, principal, "edit this file", h.permissions.CanEdit)
	if err != nil {
		h.respondAppError(w, err)
		return
	}

	if patch.AccessLevel != nil && patch.AccessLevel.IsValid() && !h.permissions.CanAccessLevel(principal, *patch.AccessLevel) {
		h.respondAppError(w, permissions.Require(false, fmt.Sprintf("assign the %s access level", *patch.AccessLevel)))
		return
	}

	updated, err := h.mediaService.Update(r.Context(), asset.ID, patch)
	if err != nil {
		h.respondAppError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, format.View(*updated))
}

// DeleteMedia handles DELETE /media/{id}
// @Summary Delete a media file
// @Tags media
// @Param id path string true "Media ID"
// @Success 204 "Media deleted"
// @Failure 403 {object} ErrorResponse "Permission denied"
// @Failure 404 {object} ErrorResponse "Media not found"
// @Security BearerAuth
// @Router /media/{id} [delete]
func (h *MediaHandler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	asset, err := h.loadAsset(r, principal, "delete this file", h.permissions.CanDelete)
	if err != nil {
		h.respondAppError(w, err)
		return
	}

	if err := h.mediaService.Delete(r.Context(), asset.ID); err != nil {
		h.respondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteFiles handles POST /media/bulk-delete
// @Summary Delete several media files
// @Description Deletes every permitted file and reports the outcome per ID. Deletes are not rolled back.
// @Tags media
// @Accept json
// @Produce json
// @Param request body BulkDeleteRequest true "IDs to delete"
// @Success 200 {object} models.DeleteOutcome
// @Failure 400 {object} ErrorResponse "Invalid request body"
// @Failure 422 {object} ErrorResponse "No IDs given"
// @Security BearerAuth
// @Router /media/bulk-delete [post]
func (h *MediaHandler) DeleteFiles(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ids := uniqueIDs(req.IDs)
	if len(ids) == 0 {
		h.respondAppError(w, apperrors.Validation("No files to delete", apperrors.CodeInvalidRequest))
		return
	}

	principal := middleware.GetPrincipal(r.Context())
	permitted := make([]string, 0, len(ids))
	refused := make([]models.FailedDelete, 0)
	for _, id := range ids {
		asset, err := h.mediaService.Lookup(r.Context(), id)
		if err != nil {
			refused = append(refused, failedDelete(id, err))
			continue
		}
		if !h.permissions.CanDelete(principal, asset) {
			refused = append(refused, models.FailedDelete{
				ID:    id,
				Error: "You do not have permission to delete this file",
				Code:  apperrors.CodeForbidden,
			})
			continue
		}
		permitted = append(permitted, id)
	}

	outcome := &models.DeleteOutcome{Deleted: []string{}, Failed: []models.FailedDelete{}}
	if len(permitted) > 0 {
		outcome = h.mediaService.DeleteManyOutcome(r.Context(), permitted)
	}
	outcome.Failed = append(outcome.Failed, refused...)
	outcome.SuccessCount = len(outcome.Deleted)
	outcome.FailureCount = len(outcome.Failed)
	outcome.TotalCount = len(ids)

	h.respondJSON(w, http.StatusOK, outcome)
}

// AttachMedia handles POST /media/{id}/attach
// @Summary Attach a media file to a model
// @Tags media
// @Accept json
// @Param id path string true "Media ID"
// @Param request body models.ModelAttachment true "Model to attach to"
// @Success 204 "Media attached"
// @Failure 403 {object} ErrorResponse "Permission denied"
// @Failure 422 {object} ErrorResponse "Validation failed"
// @Security BearerAuth
// @Router /media/{id}/attach [post]
func (h *MediaHandler) AttachMedia(w http.ResponseWriter, r *http.Request) {
	var attachment models.ModelAttachment
	if err := decodeJSON(r, &attachment); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	principal := middleware.GetPrincipal(r.Context())
	asset, err := h.loadAsset(r, principal, "edit this file", h.permissions.CanEdit)
	if err != nil {
		h.respondAppError(w, err)
		return
	}

	if err := h.mediaService.AttachToModel(r.Context(), asset.ID, attachment); err != nil {
		h.respondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DetachMedia handles POST /media/{id}/detach
// @Summary Detach a media file from a model
// @Tags media
// @Accept json
// @Param id path string true "Media ID"
// @Param request body models.ModelRef true "Model to detach from"
// @Success 204 "Media detached"
// @Failure 403 {object} ErrorResponse "Permission denied"
// @Failure 422 {object} ErrorResponse "Validation failed"
// @Security BearerAuth
// @Router /media/{id}/detach [post]
func (h *MediaHandler) DetachMedia(w http.ResponseWriter, r *http.Request) {
	var ref models.ModelRef
	if err := decodeJSON(r, &ref); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	principal := middleware.GetPrincipal(r.Context())
	asset, err := h.loadAsset(r, principal, "edit this file", h.permissions.CanEdit)
	if err != nil {
		h.respondAppError(w, err)
		return
	}

	if err := h.mediaService.DetachFromModel(r.Context(), asset.ID, ref); err != nil {
		h.respondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// loadAsset looks up the asset named by the {id} URL parameter and gates the write with allowed
func (h *MediaHandler) loadAsset(r *http.Request, principal *models.Principal, action string, allowed func(*models.Principal, *models.MediaAsset) bool) (*models.MediaAsset, error) {
	asset, err := h.mediaService.Lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}
	if err := permissions.Require(allowed(principal, asset), action); err != nil {
		return nil, err
	}
	return asset, nil
}

func (h *MediaHandler) visible(principal *models.Principal, assets []models.MediaAsset) []models.MediaAsset {
	result := make([]models.MediaAsset, 0, len(assets))
	for i := range assets {
		if h.permissions.CanView(principal, &assets[i]) {
			result = append(result, assets[i])
		}
	}
	return result
}

// openPart opens an uploaded part and resolves its MIME type.
// A missing or generic declared type is replaced by the type sniffed from the content.
func (h *MediaHandler) openPart(header *multipart.FileHeader) (models.UploadFile, io.Closer, error) {
	part, err := header.Open()
	if err != nil {
		return models.UploadFile{}, nil, fmt.Errorf("failed to open part: %w", err)
	}

	mimeType := validation.NormalizeMimeType(header.Header.Get("Content-Type"))
	if mimeType == "" || mimeType == genericMimeType {
		detected, err := mimetype.DetectReader(part)
		if err != nil {
			part.Close()
			return models.UploadFile{}, nil, fmt.Errorf("failed to detect content type: %w", err)
		}
		if _, err := part.Seek(0, io.SeekStart); err != nil {
			part.Close()
			return models.UploadFile{}, nil, fmt.Errorf("failed to rewind part: %w", err)
		}
		mimeType = validation.NormalizeMimeType(detected.String())
		h.logger.Debug("sniffed content type", zap.String("filename", header.Filename), zap.String("mime_type", mimeType))
	}

	return models.UploadFile{
		FileInfo: models.FileInfo{
			Name:     header.Filename,
			Size:     header.Size,
			MimeType: mimeType,
		},
		Content: part,
	}, part, nil
}

// parseDescriptor reads the scalar upload fields. Ownership always comes from the principal.
func parseDescriptor(r *http.Request, principal *models.Principal) (models.UploadDescriptor, error) {
	descriptor := models.UploadDescriptor{
		AccessLevel:    models.AccessLevel(r.FormValue("accessLevel")),
		Directory:      r.FormValue("directory"),
		CollectionName: models.CollectionType(r.FormValue("collectionName")),
		AltText:        r.FormValue("altText"),
		Title:          r.FormValue("title"),
		Description:    r.FormValue("description"),
		ModelType:      r.FormValue("modelType"),
		ModelID:        r.FormValue("modelId"),
	}
	if principal != nil {
		descriptor.AuthID = principal.ID
		descriptor.AuthType = models.OwnerTypeAdmin
	}

	if descriptor.AccessLevel != "" && !descriptor.AccessLevel.IsValid() {
		return descriptor, errors.New("invalid accessLevel")
	}
	if raw := r.FormValue("sortOrder"); raw != "" {
		sortOrder, err := strconv.Atoi(raw)
		if err != nil {
			return descriptor, errors.New("invalid sortOrder")
		}
		descriptor.SortOrder = &sortOrder
	}
	return descriptor, nil
}

func uploadContext(r *http.Request) models.UploadContext {
	if ctx := r.FormValue("context"); ctx != "" {
		return models.UploadContext(ctx)
	}
	return models.ContextDashboard
}

func optionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid integer %q", raw)
	}
	return value, nil
}

// uniqueIDs drops blank and repeated ids, keeping the first occurrence order
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func failedDelete(id string, err error) models.FailedDelete {
	failed := models.FailedDelete{ID: id, Error: err.Error(), Code: apperrors.CodeDeleteFailed}
	if appErr, ok := apperrors.As(err); ok {
		failed.Error = appErr.Message
		failed.Code = appErr.Code
	}
	return failed
}

// MediaListResponse is a page of decorated media files
type MediaListResponse struct {
	Items []models.MediaAssetView `json:"items"`
	Total int                     `json:"total"`
	Page  int                     `json:"page"`
	Count int                     `json:"count"`
}

// BulkDeleteRequest lists the IDs to delete
type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}
