package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenantdesk/mediagate/internal/apperrors"
	"github.com/tenantdesk/mediagate/internal/middleware"
	"github.com/tenantdesk/mediagate/internal/models"
	"github.com/tenantdesk/mediagate/internal/permissions"
	"github.com/tenantdesk/mediagate/internal/rules"
	"github.com/tenantdesk/mediagate/internal/services"
	"go.uber.org/zap"
)

// mockMediaService is a mock implementation of MediaService
type mockMediaService struct {
	assets    map[string]*models.MediaAsset
	page      *models.MediaPage
	stats     *models.MediaStatsResponse
	modelList []models.MediaAsset
	err       error
	updated   *models.UpdateMediaRequest
	deleted   []string
	attached  *models.ModelAttachment
	detached  *models.ModelRef
	reads     []string
	lookups   []string
}

func (m *mockMediaService) Get(ctx context.Context, id string) (*models.MediaAsset, error) {
	m.reads = append(m.reads, id)
	return m.find(id)
}

func (m *mockMediaService) Lookup(ctx context.Context, id string) (*models.MediaAsset, error) {
	m.lookups = append(m.lookups, id)
	return m.find(id)
}

func (m *mockMediaService) find(id string) (*models.MediaAsset, error) {
	asset, ok := m.assets[id]
	if !ok {
		return nil, apperrors.Upload("Media not found", apperrors.CodeNotFound, http.StatusNotFound, nil)
	}
	return asset, nil
}

func (m *mockMediaService) List(ctx context.Context, filter models.MediaFilter) (*models.MediaPage, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.page, nil
}

func (m *mockMediaService) Update(ctx context.Context, id string, patch models.UpdateMediaRequest) (*models.MediaAsset, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.updated = &patch
	asset := *m.assets[id]
	if patch.Title != nil {
		asset.Title = patch.Title
	}
	return &asset, nil
}

func (m *mockMediaService) Delete(ctx context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockMediaService) DeleteManyOutcome(ctx context.Context, ids []string) *models.DeleteOutcome {
	m.deleted = append(m.deleted, ids...)
	return &models.DeleteOutcome{
		Deleted:      ids,
		Failed:       []models.FailedDelete{},
		TotalCount:   len(ids),
		SuccessCount: len(ids),
	}
}

func (m *mockMediaService) AttachToModel(ctx context.Context, id string, attachment models.ModelAttachment) error {
	if m.err != nil {
		return m.err
	}
	m.attached = &attachment
	return nil
}

func (m *mockMediaService) DetachFromModel(ctx context.Context, id string, ref models.ModelRef) error {
	if m.err != nil {
		return m.err
	}
	m.detached = &ref
	return nil
}

func (m *mockMediaService) GetModelMedia(ctx context.Context, modelType, modelID string, collection models.CollectionType) ([]models.MediaAsset, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.modelList, nil
}

func (m *mockMediaService) GetStats(ctx context.Context) (*models.MediaStatsResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.stats, nil
}

// mockUploader is a mock implementation of Uploader
type mockUploader struct {
	asset   *models.MediaAsset
	outcome *models.BulkOutcome
	err     error
	single  *services.UploadRequest
	bulk    *services.BulkUploadRequest
	content []string
}

func (m *mockUploader) Upload(ctx context.Context, tracker *services.UploadTracker, req services.UploadRequest) (*models.MediaAsset, error) {
	m.single = &req
	data, _ := io.ReadAll(req.File.Content)
	m.content = append(m.content, string(data))
	if m.err != nil {
		return nil, m.err
	}
	return m.asset, nil
}

func (m *mockUploader) UploadMany(ctx context.Context, tracker *services.UploadTracker, req services.BulkUploadRequest) (*models.BulkOutcome, error) {
	m.bulk = &req
	if m.err != nil {
		return nil, m.err
	}
	return m.outcome, nil
}

var (
	superAdmin    = &models.Principal{ID: "1", IsSuperAdmin: true, IsActive: true}
	supportAdmin  = &models.Principal{ID: "2", IsActive: true, Apps: []string{"support"}}
	academyAdmin  = &models.Principal{ID: "3", IsActive: true, Apps: []string{"academy"}}
	inactiveAdmin = &models.Principal{ID: "4", Apps: []string{"support"}}
)

func fixtureAssets() map[string]*models.MediaAsset {
	return map[string]*models.MediaAsset{
		"public":  {ID: "public", Filename: "logo.png", MimeType: "image/png", Size: 2048, AccessLevel: models.AccessLevelPublic, OwnerID: "9", OwnerType: models.OwnerTypeAdmin},
		"support": {ID: "support", Filename: "ticket.pdf", MimeType: "application/pdf", Size: 10485760, AccessLevel: models.AccessLevelSupport, OwnerID: "9", OwnerType: models.OwnerTypeAdmin},
		"own":     {ID: "own", Filename: "me.jpg", MimeType: "image/jpeg", Size: 512, AccessLevel: models.AccessLevelSelf, OwnerID: "3", OwnerType: models.OwnerTypeAdmin},
	}
}

func setupMediaRouter(media MediaService, uploader Uploader) chi.Router {
	checker := permissions.NewChecker(rules.Default())
	handler := NewMediaHandler(media, uploader, checker, zap.NewNop())

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func serve(router http.Handler, req *http.Request, principal *models.Principal) *httptest.ResponseRecorder {
	if principal != nil {
		req = req.WithContext(middleware.WithPrincipal(req.Context(), principal))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestNewMediaHandler(t *testing.T) {
	media := &mockMediaService{}
	uploader := &mockUploader{}
	checker := permissions.NewChecker(rules.Default())
	logger := zap.NewNop()

	handler := NewMediaHandler(media, uploader, checker, logger)

	assert.NotNil(t, handler)
	assert.Equal(t, media, handler.mediaService)
	assert.Equal(t, uploader, handler.uploader)
	assert.Equal(t, checker, handler.permissions)
	assert.Equal(t, logger, handler.logger)
}

func TestMediaHandler_GetMedia(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		principal      *models.Principal
		expectedStatus int
		expectedKind   apperrors.Kind
	}{
		{name: "public asset for anonymous caller", id: "public", expectedStatus: http.StatusOK},
		{name: "support asset for support admin", id: "support", principal: supportAdmin, expectedStatus: http.StatusOK},
		{name: "support asset for academy admin", id: "support", principal: academyAdmin, expectedStatus: http.StatusForbidden, expectedKind: apperrors.KindPermission},
		{name: "support asset for anonymous caller", id: "support", expectedStatus: http.StatusForbidden, expectedKind: apperrors.KindPermission},
		{name: "own asset", id: "own", principal: academyAdmin, expectedStatus: http.StatusOK},
		{name: "missing asset", id: "missing", principal: superAdmin, expectedStatus: http.StatusNotFound, expectedKind: apperrors.KindUpload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			media := &mockMediaService{assets: fixtureAssets()}
			router := setupMediaRouter(media, &mockUploader{})

			w := serve(router, httptest.NewRequest(http.MethodGet, "/media/"+tt.id, nil), tt.principal)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, []string{tt.id}, media.reads)
			assert.Empty(t, media.lookups)
			if tt.expectedKind != "" {
				assert.Equal(t, tt.expectedKind, decodeError(t, w).Kind)
				return
			}
			var view models.MediaAssetView
			require.NoError(t, json.NewDecoder(w.Body).Decode(&view))
			assert.Equal(t, tt.id, view.ID)
			assert.NotEmpty(t, view.SizeLabel)
			assert.NotEmpty(t, view.TypeLabel)
		})
	}
}

func TestMediaHandler_GetMedia_Labels(t *testing.T) {
	router := setupMediaRouter(&mockMediaService{assets: fixtureAssets()}, &mockUploader{})

	w := serve(router, httptest.NewRequest(http.MethodGet, "/media/support", nil), supportAdmin)

	require.Equal(t, http.StatusOK, w.Code)
	var view models.MediaAssetView
	require.NoError(t, json.NewDecoder(w.Body).Decode(&view))
	assert.Equal(t, "10 MB", view.SizeLabel)
}

func TestMediaHandler_ListMedia(t *testing.T) {
	assets := fixtureAssets()
	page := &models.MediaPage{
		Items: []models.MediaAsset{*assets["public"], *assets["support"], *assets["own"]},
		Total: 3,
		Page:  1,
		Count: 20,
	}

	tests := []struct {
		name           string
		query          string
		principal      *models.Principal
		err            error
		expectedStatus int
		expectedIDs    []string
	}{
		{name: "anonymous caller sees public assets", expectedStatus: http.StatusOK, expectedIDs: []string{"public"}},
		{name: "support admin", principal: supportAdmin, expectedStatus: http.StatusOK, expectedIDs: []string{"public", "support"}},
		{name: "owner", principal: academyAdmin, expectedStatus: http.StatusOK, expectedIDs: []string{"public", "own"}},
		{name: "super admin", principal: superAdmin, expectedStatus: http.StatusOK, expectedIDs: []string{"public", "support", "own"}},
		{name: "invalid page", query: "?page=first", expectedStatus: http.StatusBadRequest},
		{name: "invalid access level", query: "?accessLevel=PRIVATE", expectedStatus: http.StatusBadRequest},
		{
			name:           "media API failure",
			err:            apperrors.Upload("Failed to load files", apperrors.CodeRequestFailed, http.StatusInternalServerError, nil),
			expectedStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupMediaRouter(&mockMediaService{page: page, err: tt.err}, &mockUploader{})

			w := serve(router, httptest.NewRequest(http.MethodGet, "/media"+tt.query, nil), tt.principal)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				return
			}
			var body MediaListResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			ids := make([]string, 0, len(body.Items))
			for _, item := range body.Items {
				ids = append(ids, item.ID)
			}
			assert.Equal(t, tt.expectedIDs, ids)
			assert.Equal(t, 3, body.Total)
		})
	}
}

func TestMediaHandler_GetStats(t *testing.T) {
	stats := &models.MediaStatsResponse{TotalFiles: 3, TotalSize: 4096}
	router := setupMediaRouter(&mockMediaService{stats: stats}, &mockUploader{})

	w := serve(router, httptest.NewRequest(http.MethodGet, "/media/stats", nil), supportAdmin)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalFiles":3`)
}

func TestMediaHandler_GetMediaPermissions(t *testing.T) {
	router := setupMediaRouter(&mockMediaService{assets: fixtureAssets()}, &mockUploader{})

	w := serve(router, httptest.NewRequest(http.MethodGet, "/media/own/permissions", nil), academyAdmin)

	require.Equal(t, http.StatusOK, w.Code)
	var summary models.AssetPermissions
	require.NoError(t, json.NewDecoder(w.Body).Decode(&summary))
	assert.Equal(t, models.AssetPermissions{CanView: true, CanEdit: true, CanDelete: true}, summary)
}

func TestMediaHandler_GetModelMedia(t *testing.T) {
	assets := fixtureAssets()
	media := &mockMediaService{modelList: []models.MediaAsset{*assets["public"], *assets["support"]}}
	router := setupMediaRouter(media, &mockUploader{})

	w := serve(router, httptest.NewRequest(http.MethodGet, "/models/course/42/media?collection=documents", nil), academyAdmin)

	require.Equal(t, http.StatusOK, w.Code)
	var views []models.MediaAssetView
	require.NoError(t, json.NewDecoder(w.Body).Decode(&views))
	require.Len(t, views, 1)
	assert.Equal(t, "public", views[0].ID)
}

type multipartFile struct {
	field       string
	name        string
	contentType string
	content     []byte
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files ...multipartFile) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	for _, f := range files {
		header := make(map[string][]string)
		header["Content-Disposition"] = []string{`form-data; name="` + f.field + `"; filename="` + f.name + `"`}
		if f.contentType != "" {
			header["Content-Type"] = []string{f.contentType}
		}
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

func TestMediaHandler_UploadFile(t *testing.T) {
	t.Run("success with sniffed type", func(t *testing.T) {
		uploader := &mockUploader{asset: &models.MediaAsset{ID: "m-1", MimeType: "image/png", Size: 1536}}
		router := setupMediaRouter(&mockMediaService{}, uploader)

		req := multipartRequest(t, "/media",
			map[string]string{"context": "support", "accessLevel": "SUPPORT", "collectionName": "gallery", "sortOrder": "3"},
			multipartFile{field: "file", name: "photo", contentType: "application/octet-stream", content: pngBytes},
		)
		w := serve(router, req, supportAdmin)

		require.Equal(t, http.StatusCreated, w.Code)
		var view models.MediaAssetView
		require.NoError(t, json.NewDecoder(w.Body).Decode(&view))
		assert.Equal(t, "1.5 KB", view.SizeLabel)

		require.NotNil(t, uploader.single)
		assert.Equal(t, "image/png", uploader.single.File.MimeType)
		assert.Equal(t, int64(len(pngBytes)), uploader.single.File.Size)
		assert.Equal(t, models.ContextSupport, uploader.single.Context)
		assert.Equal(t, supportAdmin, uploader.single.Principal)
		assert.Equal(t, "2", uploader.single.Descriptor.AuthID)
		assert.Equal(t, models.CollectionGallery, uploader.single.Descriptor.CollectionName)
		assert.Equal(t, 3, *uploader.single.Descriptor.SortOrder)
		assert.Equal(t, string(pngBytes), uploader.content[0])
	})

	t.Run("declared type is kept", func(t *testing.T) {
		uploader := &mockUploader{asset: &models.MediaAsset{ID: "m-1"}}
		router := setupMediaRouter(&mockMediaService{}, uploader)

		req := multipartRequest(t, "/media", nil,
			multipartFile{field: "file", name: "notes.txt", contentType: "text/plain; charset=utf-8", content: []byte("hello")},
		)
		w := serve(router, req, supportAdmin)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "text/plain", uploader.single.File.MimeType)
		assert.Equal(t, models.ContextDashboard, uploader.single.Context)
	})

	tests := []struct {
		name           string
		principal      *models.Principal
		fields         map[string]string
		files          []multipartFile
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "anonymous caller",
			files:          []multipartFile{{field: "file", name: "a.png", contentType: "image/png", content: pngBytes}},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "inactive principal",
			principal:      inactiveAdmin,
			files:          []multipartFile{{field: "file", name: "a.png", contentType: "image/png", content: pngBytes}},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "missing file",
			principal:      supportAdmin,
			fields:         map[string]string{"title": "x"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid access level",
			principal:      supportAdmin,
			fields:         map[string]string{"accessLevel": "PRIVATE"},
			files:          []multipartFile{{field: "file", name: "a.png", contentType: "image/png", content: pngBytes}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "validation failure",
			principal:      supportAdmin,
			files:          []multipartFile{{field: "file", name: "a.png", contentType: "image/png", content: pngBytes}},
			err:            apperrors.Validation("File too large", apperrors.CodeValidationFailed, "File too large"),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   apperrors.CodeValidationFailed,
		},
		{
			name:           "permission failure",
			principal:      supportAdmin,
			files:          []multipartFile{{field: "file", name: "a.png", contentType: "image/png", content: pngBytes}},
			err:            apperrors.Permission("You do not have permission to upload files"),
			expectedStatus: http.StatusForbidden,
			expectedCode:   apperrors.CodeForbidden,
		},
		{
			name:           "media API failure",
			principal:      supportAdmin,
			files:          []multipartFile{{field: "file", name: "a.png", contentType: "image/png", content: pngBytes}},
			err:            apperrors.Upload("Failed to upload file", apperrors.CodeUploadFailed, http.StatusInternalServerError, nil),
			expectedStatus: http.StatusBadGateway,
			expectedCode:   apperrors.CodeUploadFailed,
		},
		{
			name:           "unexpected error",
			principal:      supportAdmin,
			files:          []multipartFile{{field: "file", name: "a.png", contentType: "image/png", content: pngBytes}},
			err:            errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupMediaRouter(&mockMediaService{}, &mockUploader{err: tt.err})

			w := serve(router, multipartRequest(t, "/media", tt.fields, tt.files...), tt.principal)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Code)
			}
		})
	}
}

func TestMediaHandler_UploadFiles(t *testing.T) {
	outcome := &models.BulkOutcome{
		Successful:   []models.MediaAsset{{ID: "m-1"}},
		Failed:       []models.FailedUpload{{Filename: "b.pdf", Error: "Duplicate file", Code: "DUPLICATE"}},
		TotalCount:   2,
		SuccessCount: 1,
		FailureCount: 1,
	}
	uploader := &mockUploader{outcome: outcome}
	router := setupMediaRouter(&mockMediaService{}, uploader)

	req := multipartRequest(t, "/media/bulk", map[string]string{"context": "academy"},
		multipartFile{field: "files[]", name: "a.png", contentType: "image/png", content: pngBytes},
		multipartFile{field: "files[]", name: "b.pdf", contentType: "application/pdf", content: []byte("%PDF-1.4")},
	)
	w := serve(router, req, academyAdmin)

	require.Equal(t, http.StatusCreated, w.Code)
	var body models.BulkOutcome
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, 1, body.SuccessCount)
	assert.Equal(t, 1, body.FailureCount)
	assert.Equal(t, body.TotalCount, body.SuccessCount+body.FailureCount)

	require.NotNil(t, uploader.bulk)
	require.Len(t, uploader.bulk.Files, 2)
	assert.Equal(t, "b.pdf", uploader.bulk.Files[1].Name)
	assert.Equal(t, models.ContextAcademy, uploader.bulk.Context)
}

func TestMediaHandler_UpdateMedia(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		body           string
		principal      *models.Principal
		expectedStatus int
	}{
		{name: "owner edits title", id: "own", body: `{"title":"Me"}`, principal: academyAdmin, expectedStatus: http.StatusOK},
		{name: "scoped admin edits scoped asset", id: "support", body: `{"altText":"scan"}`, principal: supportAdmin, expectedStatus: http.StatusOK},
		{name: "public asset is not editable by scoped admin", id: "public", body: `{"title":"x"}`, principal: supportAdmin, expectedStatus: http.StatusForbidden},
		{name: "access level outside scope", id: "support", body: `{"accessLevel":"ACADEMY"}`, principal: supportAdmin, expectedStatus: http.StatusForbidden},
		{name: "unknown field", id: "own", body: `{"size":1}`, principal: academyAdmin, expectedStatus: http.StatusBadRequest},
		{name: "malformed body", id: "own", body: `{`, principal: academyAdmin, expectedStatus: http.StatusBadRequest},
		{name: "missing asset", id: "missing", body: `{"title":"x"}`, principal: superAdmin, expectedStatus: http.StatusNotFound},
		{name: "anonymous caller", id: "public", body: `{"title":"x"}`, expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			media := &mockMediaService{assets: fixtureAssets()}
			router := setupMediaRouter(media, &mockUploader{})

			req := httptest.NewRequest(http.MethodPatch, "/media/"+tt.id, strings.NewReader(tt.body))
			w := serve(router, req, tt.principal)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.NotNil(t, media.updated)
			} else {
				assert.Nil(t, media.updated)
			}
		})
	}
}

func TestMediaHandler_DeleteMedia(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		principal      *models.Principal
		err            error
		expectedStatus int
	}{
		{name: "owner", id: "own", principal: academyAdmin, expectedStatus: http.StatusNoContent},
		{name: "super admin", id: "public", principal: superAdmin, expectedStatus: http.StatusNoContent},
		{name: "forbidden", id: "support", principal: academyAdmin, expectedStatus: http.StatusForbidden},
		{
			name:           "media API failure",
			id:             "own",
			principal:      academyAdmin,
			err:            apperrors.Upload("Failed to delete file", apperrors.CodeDeleteFailed, http.StatusServiceUnavailable, nil),
			expectedStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			media := &mockMediaService{assets: fixtureAssets(), err: tt.err}
			router := setupMediaRouter(media, &mockUploader{})

			w := serve(router, httptest.NewRequest(http.MethodDelete, "/media/"+tt.id, nil), tt.principal)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, []string{tt.id}, media.lookups)
			assert.Empty(t, media.reads)
		})
	}
}

func TestMediaHandler_DeleteFiles(t *testing.T) {
	t.Run("partitions permitted and refused ids", func(t *testing.T) {
		media := &mockMediaService{assets: fixtureAssets()}
		router := setupMediaRouter(media, &mockUploader{})

		req := httptest.NewRequest(http.MethodPost, "/media/bulk-delete", strings.NewReader(`{"ids":["own","support","missing"]}`))
		w := serve(router, req, academyAdmin)

		require.Equal(t, http.StatusOK, w.Code)
		var outcome models.DeleteOutcome
		require.NoError(t, json.NewDecoder(w.Body).Decode(&outcome))
		assert.Equal(t, []string{"own"}, outcome.Deleted)
		require.Len(t, outcome.Failed, 2)
		assert.Equal(t, models.FailedDelete{ID: "support", Error: "You do not have permission to delete this file", Code: apperrors.CodeForbidden}, outcome.Failed[0])
		assert.Equal(t, apperrors.CodeNotFound, outcome.Failed[1].Code)
		assert.Equal(t, 3, outcome.TotalCount)
		assert.Equal(t, outcome.TotalCount, outcome.SuccessCount+outcome.FailureCount)
		assert.Equal(t, []string{"own"}, media.deleted)
	})

	t.Run("nothing permitted", func(t *testing.T) {
		media := &mockMediaService{assets: fixtureAssets()}
		router := setupMediaRouter(media, &mockUploader{})

		req := httptest.NewRequest(http.MethodPost, "/media/bulk-delete", strings.NewReader(`{"ids":["support"]}`))
		w := serve(router, req, academyAdmin)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, media.deleted)
		assert.Contains(t, w.Body.String(), `"deleted":[]`)
	})

	t.Run("repeated ids are deleted once", func(t *testing.T) {
		media := &mockMediaService{assets: fixtureAssets()}
		router := setupMediaRouter(media, &mockUploader{})

		req := httptest.NewRequest(http.MethodPost, "/media/bulk-delete", strings.NewReader(`{"ids":["own","own"," own ","missing","missing"]}`))
		w := serve(router, req, academyAdmin)

		require.Equal(t, http.StatusOK, w.Code)
		var outcome models.DeleteOutcome
		require.NoError(t, json.NewDecoder(w.Body).Decode(&outcome))
		assert.Equal(t, []string{"own"}, media.deleted)
		assert.Equal(t, []string{"own", "missing"}, media.lookups)
		assert.Equal(t, []string{"own"}, outcome.Deleted)
		require.Len(t, outcome.Failed, 1)
		assert.Equal(t, "missing", outcome.Failed[0].ID)
		assert.Equal(t, 2, outcome.TotalCount)
		assert.Equal(t, outcome.TotalCount, outcome.SuccessCount+outcome.FailureCount)
	})

	for _, body := range []string{`{"ids":[]}`, `{"ids":[""," "]}`} {
		t.Run("empty id list "+body, func(t *testing.T) {
			router := setupMediaRouter(&mockMediaService{}, &mockUploader{})

			req := httptest.NewRequest(http.MethodPost, "/media/bulk-delete", strings.NewReader(body))
			w := serve(router, req, superAdmin)

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Equal(t, apperrors.KindValidation, decodeError(t, w).Kind)
		})
	}
}

func TestMediaHandler_AttachDetach(t *testing.T) {
	t.Run("attach", func(t *testing.T) {
		media := &mockMediaService{assets: fixtureAssets()}
		router := setupMediaRouter(media, &mockUploader{})

		req := httptest.NewRequest(http.MethodPost, "/media/own/attach", strings.NewReader(`{"modelType":"course","modelId":"42","collectionName":"documents"}`))
		w := serve(router, req, academyAdmin)

		assert.Equal(t, http.StatusNoContent, w.Code)
		require.NotNil(t, media.attached)
		assert.Equal(t, "course", media.attached.ModelType)
	})

	t.Run("detach", func(t *testing.T) {
		media := &mockMediaService{assets: fixtureAssets()}
		router := setupMediaRouter(media, &mockUploader{})

		req := httptest.NewRequest(http.MethodPost, "/media/own/detach", strings.NewReader(`{"modelType":"course","modelId":"42"}`))
		w := serve(router, req, academyAdmin)

		assert.Equal(t, http.StatusNoContent, w.Code)
		require.NotNil(t, media.detached)
		assert.Equal(t, "42", media.detached.ModelID)
	})

	t.Run("attach forbidden", func(t *testing.T) {
		media := &mockMediaService{assets: fixtureAssets()}
		router := setupMediaRouter(media, &mockUploader{})

		req := httptest.NewRequest(http.MethodPost, "/media/support/attach", strings.NewReader(`{"modelType":"course","modelId":"42"}`))
		w := serve(router, req, academyAdmin)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Nil(t, media.attached)
	})

	t.Run("validation error from the service", func(t *testing.T) {
		media := &mockMediaService{
			assets: fixtureAssets(),
			err:    apperrors.Validation("Media ID, model type and model ID are required", apperrors.CodeInvalidRequest),
		}
		router := setupMediaRouter(media, &mockUploader{})

		req := httptest.NewRequest(http.MethodPost, "/media/own/detach", strings.NewReader(`{}`))
		w := serve(router, req, academyAdmin)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
