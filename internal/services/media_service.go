package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tenantdesk/mediagate/internal/apperrors"
	"github.com/tenantdesk/mediagate/internal/httpclient"
	"github.com/tenantdesk/mediagate/internal/models"
	"github.com/tenantdesk/mediagate/internal/rules"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// APIClient is the interface that wraps the request primitive of the media API
type APIClient interface {
	// Method Do performs one request against the media API.
	//
	// "path" parameter is the API path relative to the base URL.
	// "opts" parameter carries the method, query and JSON or multipart body.
	//
	// A non-2xx answer is returned as *httpclient.ResponseError.
	Do(ctx context.Context, path string, opts httpclient.RequestOptions) (json.RawMessage, error)
}

// AssetCache is the interface that wraps methods of the local asset cache
type AssetCache interface {
	// Method Upsert stores the latest known copy of an asset.
	//
	// "asset" parameter is the asset to store.
	//
	// If some error occurs, the error will be returned.
	Upsert(ctx context.Context, asset *models.MediaAsset) error
	// Method GetByID retrieves a fresh cached asset by ID.
	//
	// "id" parameter is the asset ID.
	//
	// A missing or stale entry is returned as "nil" value without error.
	GetByID(ctx context.Context, id string) (*models.MediaAsset, error)
	// Method DeleteByID evicts an asset.
	//
	// "id" parameter is the asset ID.
	//
	// If some error occurs, the error will be returned.
	DeleteByID(ctx context.Context, id string) error
}

// MediaService performs media operations against the media API.
// It never enforces permissions; callers gate actions with the permission checker first.
type MediaService struct {
	client APIClient
	cache  AssetCache
	rules  *rules.Rules
	logger *zap.Logger
}

// NewMediaService creates a new media service. cache may be nil.
func NewMediaService(client APIClient, cache AssetCache, r *rules.Rules, logger *zap.Logger) *MediaService {
	return &MediaService{
		client: client,
		cache:  cache,
		rules:  r,
		logger: logger,
	}
}

// Create uploads one file as a multipart request and returns the stored asset
func (s *MediaService) Create(ctx context.Context, file models.UploadFile, descriptor models.UploadDescriptor) (*models.MediaAsset, error) {
	payload, err := s.client.Do(ctx, "/media", httpclient.RequestOptions{
		Method: http.MethodPost,
		Multipart: &httpclient.Multipart{
			Fields: descriptor.FormFields(),
			Files: []httpclient.FilePart{{
				FieldName:   "file",
				FileName:    file.Name,
				ContentType: file.MimeType,
				Content:     file.Content,
			}},
		},
	})
	if err != nil {
		s.logger.Warn("upload rejected", zap.String("filename", file.Name), zap.Error(err))
		return nil, toUploadError(err, "Failed to upload file", apperrors.CodeUploadFailed)
	}

	var outcome models.UploadOutcome
	if err := decode(payload, &outcome); err != nil {
		return nil, apperrors.Upload("Failed to upload file", apperrors.CodeUploadFailed, 0, err)
	}

	asset := toAsset(outcome, file.Name, descriptor)
	s.remember(ctx, &asset)

	s.logger.Info("media uploaded",
		zap.String("media_id", asset.ID),
		zap.String("mime_type", asset.MimeType),
		zap.Int64("size", asset.Size),
	)
	return &asset, nil
}

// CreateMany uploads several files in one multipart request.
// The media API partitions the batch; failed items are reported, never retried.
func (s *MediaService) CreateMany(ctx context.Context, files []models.UploadFile, descriptor models.UploadDescriptor) (*models.BulkOutcome, error) {
	if len(files) == 0 {
		return nil, apperrors.Validation("No files to upload", apperrors.CodeInvalidRequest)
	}

	parts := make([]httpclient.FilePart, 0, len(files))
	for _, file := range files {
		parts = append(parts, httpclient.FilePart{
			FieldName:   "files[]",
			FileName:    file.Name,
			ContentType: file.MimeType,
			Content:     file.Content,
		})
	}

	payload, err := s.client.Do(ctx, "/media/bulk", httpclient.RequestOptions{
		Method: http.MethodPost,
		Multipart: &httpclient.Multipart{
			Fields: descriptor.FormFields(),
			Files:  parts,
		},
	})
	if err != nil {
		s.logger.Warn("bulk upload rejected", zap.Int("files", len(files)), zap.Error(err))
		return nil, toUploadError(err, "Failed to upload files", apperrors.CodeUploadFailed)
	}

	var response models.BulkUploadResponse
	if err := decode(payload, &response); err != nil {
		return nil, apperrors.Upload("Failed to upload files", apperrors.CodeUploadFailed, 0, err)
	}

	outcome := &models.BulkOutcome{
		Successful: make([]models.MediaAsset, 0, len(response.Successful)),
		Failed:     make([]models.FailedUpload, 0, len(response.Failed)),
	}
	for _, item := range response.Successful {
		asset := toAsset(item, item.Filename, descriptor)
		s.remember(ctx, &asset)
		outcome.Successful = append(outcome.Successful, asset)
	}
	outcome.Failed = append(outcome.Failed, response.Failed...)
	outcome.SuccessCount = len(outcome.Successful)
	outcome.FailureCount = len(outcome.Failed)
	outcome.TotalCount = outcome.SuccessCount + outcome.FailureCount

	if response.TotalCount != outcome.TotalCount || outcome.TotalCount != len(files) {
		s.logger.Warn("bulk upload counts disagree",
			zap.Int("files", len(files)),
			zap.Int("reported_total", response.TotalCount),
			zap.Int("successful", outcome.SuccessCount),
			zap.Int("failed", outcome.FailureCount),
		)
	}

	s.logger.Info("bulk upload finished",
		zap.Int("successful", outcome.SuccessCount),
		zap.Int("failed", outcome.FailureCount),
	)
	return outcome, nil
}

// Update changes the editable metadata of an asset.
// The request is checked before any network call.
func (s *MediaService) Update(ctx context.Context, id string, patch models.UpdateMediaRequest) (*models.MediaAsset, error) {
	if id == "" {
		return nil, apperrors.Validation("Media ID is required", apperrors.CodeInvalidRequest)
	}
	if patch.IsEmpty() {
		return nil, apperrors.Validation("No fields to update", apperrors.CodeInvalidRequest)
	}
	if patch.AccessLevel != nil && !patch.AccessLevel.IsValid() {
		return nil, apperrors.Validation(fmt.Sprintf("Invalid access level: %s", *patch.AccessLevel), apperrors.CodeInvalidRequest)
	}

	payload, err := s.client.Do(ctx, mediaPath(id), httpclient.RequestOptions{
		Method: http.MethodPatch,
		Body:   patch,
	})
	if err != nil {
		return nil, toUploadError(err, "Failed to update file", apperrors.CodeUpdateFailed)
	}

	var asset models.MediaAsset
	if err := decode(payload, &asset); err != nil {
		return nil, apperrors.Upload("Failed to update file", apperrors.CodeUpdateFailed, 0, err)
	}
	if asset.UpdatedAt.IsZero() {
		asset.UpdatedAt = asset.CreatedAt
	}

	s.remember(ctx, &asset)
	return &asset, nil
}

// Get retrieves an asset from the media API on behalf of the caller in ctx.
// The cache is refreshed but never read, so every read is authorized upstream.
func (s *MediaService) Get(ctx context.Context, id string) (*models.MediaAsset, error) {
	if id == "" {
		return nil, apperrors.Validation("Media ID is required", apperrors.CodeInvalidRequest)
	}

	payload, err := s.client.Do(ctx, mediaPath(id), httpclient.RequestOptions{Method: http.MethodGet})
	if err != nil {
		var respErr *httpclient.ResponseError
		if errors.As(err, &respErr) && respErr.Status == http.StatusNotFound {
			s.forget(ctx, id)
		}
		return nil, toUploadError(err, "Failed to load file", apperrors.CodeRequestFailed)
	}

	var asset models.MediaAsset
	if err := decode(payload, &asset); err != nil {
		return nil, apperrors.Upload("Failed to load file", apperrors.CodeRequestFailed, 0, err)
	}
	if asset.UpdatedAt.IsZero() {
		asset.UpdatedAt = asset.CreatedAt
	}

	s.remember(ctx, &asset)
	return &asset, nil
}

// Lookup returns a fresh cached copy of an asset, falling back to Get.
// It serves pre-flight permission checks before writes only; the media API
// re-checks the write itself. Never return its result to a caller as a read.
func (s *MediaService) Lookup(ctx context.Context, id string) (*models.MediaAsset, error) {
	if id == "" {
		return nil, apperrors.Validation("Media ID is required", apperrors.CodeInvalidRequest)
	}

	if s.cache != nil {
		cached, err := s.cache.GetByID(ctx, id)
		if err != nil {
			s.logger.Warn("asset cache read failed", zap.String("media_id", id), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}
	return s.Get(ctx, id)
}

// List retrieves a page of assets
func (s *MediaService) List(ctx context.Context, filter models.MediaFilter) (*models.MediaPage, error) {
	query := url.Values{}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Count > 0 {
		query.Set("count", strconv.Itoa(filter.Count))
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.MimePrefix != "" {
		query.Set("mimeType", filter.MimePrefix)
	}
	if filter.AccessLevel != "" {
		query.Set("accessLevel", string(filter.AccessLevel))
	}
	if filter.Collection != "" {
		query.Set("collection", string(filter.Collection))
	}

	payload, err := s.client.Do(ctx, "/media", httpclient.RequestOptions{Method: http.MethodGet, Query: query})
	if err != nil {
		return nil, toUploadError(err, "Failed to load files", apperrors.CodeRequestFailed)
	}

	var page models.MediaPage
	if err := decode(payload, &page); err != nil {
		return nil, apperrors.Upload("Failed to load files", apperrors.CodeRequestFailed, 0, err)
	}
	if page.Items == nil {
		page.Items = []models.MediaAsset{}
	}
	for i := range page.Items {
		if page.Items[i].UpdatedAt.IsZero() {
			page.Items[i].UpdatedAt = page.Items[i].CreatedAt
		}
	}
	return &page, nil
}

// Delete removes one asset
func (s *MediaService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.Validation("Media ID is required", apperrors.CodeInvalidRequest)
	}

	if _, err := s.client.Do(ctx, mediaPath(id), httpclient.RequestOptions{Method: http.MethodDelete}); err != nil {
		return toUploadError(err, "Failed to delete file", apperrors.CodeDeleteFailed)
	}

	s.forget(ctx, id)
	s.logger.Info("media deleted", zap.String("media_id", id))
	return nil
}

// DeleteMany deletes every id concurrently, bounded by the configured concurrency limit.
// It is not transactional: deletes that succeed stay deleted. Any failure is reported
// as a single error without a per-id breakdown; use DeleteManyOutcome for that.
func (s *MediaService) DeleteMany(ctx context.Context, ids []string) error {
	var g errgroup.Group
	g.SetLimit(s.rules.MaxConcurrentUploads())

	for _, id := range ids {
		g.Go(func() error {
			return s.Delete(ctx, id)
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Warn("bulk delete failed", zap.Int("ids", len(ids)), zap.Error(err))
		return apperrors.Upload("Failed to delete files", apperrors.CodeBulkDeleteFailed, 0, nil)
	}
	return nil
}

// DeleteManyOutcome deletes every id like DeleteMany and reports the result per id
func (s *MediaService) DeleteManyOutcome(ctx context.Context, ids []string) *models.DeleteOutcome {
	results := make([]error, len(ids))

	var g errgroup.Group
	g.SetLimit(s.rules.MaxConcurrentUploads())
	for i, id := range ids {
		g.Go(func() error {
			results[i] = s.Delete(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	outcome := &models.DeleteOutcome{
		Deleted: make([]string, 0, len(ids)),
		Failed:  make([]models.FailedDelete, 0),
	}
	for i, err := range results {
		if err == nil {
			outcome.Deleted = append(outcome.Deleted, ids[i])
			continue
		}
		failed := models.FailedDelete{ID: ids[i], Error: err.Error(), Code: apperrors.CodeDeleteFailed}
		if appErr, ok := apperrors.As(err); ok {
			failed.Error = appErr.Message
			failed.Code = appErr.Code
		}
		outcome.Failed = append(outcome.Failed, failed)
	}
	outcome.SuccessCount = len(outcome.Deleted)
	outcome.FailureCount = len(outcome.Failed)
	outcome.TotalCount = len(ids)
	return outcome
}

// AttachToModel links an asset to an owning model
func (s *MediaService) AttachToModel(ctx context.Context, id string, attachment models.ModelAttachment) error {
	if id == "" || attachment.ModelType == "" || attachment.ModelID == "" {
		return apperrors.Validation("Media ID, model type and model ID are required", apperrors.CodeInvalidRequest)
	}

	if _, err := s.client.Do(ctx, mediaPath(id)+"/attach", httpclient.RequestOptions{
		Method: http.MethodPost,
		Body:   attachment,
	}); err != nil {
		return toUploadError(err, "Failed to attach file", apperrors.CodeRequestFailed)
	}

	s.forget(ctx, id)
	return nil
}

// DetachFromModel removes the link between an asset and a model
func (s *MediaService) DetachFromModel(ctx context.Context, id string, ref models.ModelRef) error {
	if id == "" || ref.ModelType == "" || ref.ModelID == "" {
		return apperrors.Validation("Media ID, model type and model ID are required", apperrors.CodeInvalidRequest)
	}

	if _, err := s.client.Do(ctx, mediaPath(id)+"/detach", httpclient.RequestOptions{
		Method: http.MethodPost,
		Body:   ref,
	}); err != nil {
		return toUploadError(err, "Failed to detach file", apperrors.CodeRequestFailed)
	}

	s.forget(ctx, id)
	return nil
}

// GetModelMedia lists the assets attached to a model, optionally within one collection
func (s *MediaService) GetModelMedia(ctx context.Context, modelType, modelID string, collection models.CollectionType) ([]models.MediaAsset, error) {
	if modelType == "" || modelID == "" {
		return nil, apperrors.Validation("Model type and model ID are required", apperrors.CodeInvalidRequest)
	}

	query := url.Values{}
	if collection != "" {
		query.Set("collection", string(collection))
	}

	target := fmt.Sprintf("/media/model/%s/%s", url.PathEscape(modelType), url.PathEscape(modelID))
	payload, err := s.client.Do(ctx, target, httpclient.RequestOptions{Method: http.MethodGet, Query: query})
	if err != nil {
		return nil, toUploadError(err, "Failed to load files", apperrors.CodeRequestFailed)
	}

	assets := []models.MediaAsset{}
	if err := decode(payload, &assets); err != nil {
		return nil, apperrors.Upload("Failed to load files", apperrors.CodeRequestFailed, 0, err)
	}
	return assets, nil
}

// GetStats retrieves aggregate media figures. The media API filters them by the caller's access.
func (s *MediaService) GetStats(ctx context.Context) (*models.MediaStatsResponse, error) {
	payload, err := s.client.Do(ctx, "/media/stats", httpclient.RequestOptions{Method: http.MethodGet})
	if err != nil {
		return nil, toUploadError(err, "Failed to load statistics", apperrors.CodeRequestFailed)
	}

	var stats models.MediaStatsResponse
	if err := decode(payload, &stats); err != nil {
		return nil, apperrors.Upload("Failed to load statistics", apperrors.CodeRequestFailed, 0, err)
	}
	if stats.ByCategory == nil {
		stats.ByCategory = map[string]models.CategoryStats{}
	}
	if stats.ByAccessLevel == nil {
		stats.ByAccessLevel = map[models.AccessLevel]models.CategoryStats{}
	}
	return &stats, nil
}

// remember writes the asset to the cache. Cache failures never fail the operation.
func (s *MediaService) remember(ctx context.Context, asset *models.MediaAsset) {
	if s.cache == nil || asset.ID == "" {
		return
	}
	if err := s.cache.Upsert(ctx, asset); err != nil {
		s.logger.Warn("asset cache write failed", zap.String("media_id", asset.ID), zap.Error(err))
	}
}

func (s *MediaService) forget(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByID(ctx, id); err != nil {
		s.logger.Warn("asset cache eviction failed", zap.String("media_id", id), zap.Error(err))
	}
}

// toAsset maps the upload response DTO to a media asset
func toAsset(outcome models.UploadOutcome, originalName string, descriptor models.UploadDescriptor) models.MediaAsset {
	asset := models.MediaAsset{
		ID:               outcome.ID,
		UUID:             outcome.UUID,
		OriginalFilename: originalName,
		Filename:         outcome.Filename,
		URL:              outcome.URL,
		MimeType:         outcome.MimeType,
		Size:             outcome.Size,
		Width:            outcome.Width,
		Height:           outcome.Height,
		AccessLevel:      outcome.AccessLevel,
		OwnerID:          outcome.AuthID,
		OwnerType:        outcome.AuthType,
		Directory:        outcome.Directory,
		CreatedAt:        outcome.CreatedAt,
		UpdatedAt:        outcome.CreatedAt,
	}

	if asset.OriginalFilename == "" {
		asset.OriginalFilename = outcome.Filename
	}
	if asset.AccessLevel == "" {
		asset.AccessLevel = descriptor.AccessLevel
	}
	if asset.Directory == nil && descriptor.Directory != "" {
		asset.Directory = &descriptor.Directory
	}

	asset.Extension = extensionOf(outcome.Filename)
	if asset.Extension == "" {
		asset.Extension = extensionOf(originalName)
	}

	asset.Path = asset.Filename
	if asset.Directory != nil && *asset.Directory != "" {
		asset.Path = path.Join(*asset.Directory, asset.Filename)
	}

	if descriptor.CollectionName != "" {
		collection := descriptor.CollectionName
		asset.CollectionName = &collection
	}
	if descriptor.SortOrder != nil {
		sortOrder := *descriptor.SortOrder
		asset.SortOrder = &sortOrder
	}
	asset.AltText = optional(descriptor.AltText)
	asset.Title = optional(descriptor.Title)
	asset.Description = optional(descriptor.Description)

	return asset
}

// toUploadError converts a client failure into an upload error, keeping the server's message and code
func toUploadError(err error, fallback, code string) error {
	var respErr *httpclient.ResponseError
	if !errors.As(err, &respErr) {
		return apperrors.Upload(fallback, code, 0, err)
	}

	message := respErr.Message
	if message == "" {
		message = fallback
	}
	errCode := respErr.Code
	switch {
	case errCode != "":
	case respErr.Status == http.StatusNotFound:
		errCode = apperrors.CodeNotFound
	default:
		errCode = code
	}
	return apperrors.Upload(message, errCode, respErr.Status, err)
}

func decode(payload json.RawMessage, target any) error {
	if len(payload) == 0 {
		return errors.New("empty response")
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func mediaPath(id string) string {
	return "/media/" + url.PathEscape(id)
}

func extensionOf(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
