package models

import (
	"io"
	"strconv"
	"time"

	"github.com/tenantdesk/mediagate/internal/apperrors"
)

// UploadContext represents the tenant surface an upload originates from
type UploadContext string

const (
	ContextDashboard UploadContext = "dashboard"
	ContextAcademy   UploadContext = "academy"
	ContextSupport   UploadContext = "support"
)

// Category represents a MIME-derived file classification used to select validation limits
type Category string

const (
	CategoryImage    Category = "image"
	CategorySvg      Category = "svg"
	CategoryAudio    Category = "audio"
	CategoryVideo    Category = "video"
	CategoryDocument Category = "document"
	CategoryArchive  Category = "archive"
	CategoryOther    Category = "other"
)

// SvgMimeType is the MIME type that gets dedicated SVG handling
const SvgMimeType = "image/svg+xml"

// FileInfo represents the declared attributes of a candidate file
type FileInfo struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

// UploadFile represents a candidate file together with its content
type UploadFile struct {
	FileInfo
	Content io.Reader `json:"-"`
}

// ValidationResult represents the outcome of screening one or more candidate files
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// NewValidationResult builds a result from an error list
func NewValidationResult(errs []string) ValidationResult {
	if errs == nil {
		errs = []string{}
	}
	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// Err converts an invalid result into a validation error, or returns nil
func (r ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	message := "File validation failed"
	if len(r.Errors) == 1 {
		message = r.Errors[0]
	}
	return apperrors.Validation(message, apperrors.CodeValidationFailed, r.Errors...)
}

// UploadDescriptor represents the scalar fields sent along with uploaded files
type UploadDescriptor struct {
	AccessLevel    AccessLevel    `json:"accessLevel,omitempty"`
	AuthID         string         `json:"authId,omitempty"`
	AuthType       OwnerType      `json:"authType,omitempty"`
	Directory      string         `json:"directory,omitempty"`
	CollectionName CollectionType `json:"collectionName,omitempty"`
	AltText        string         `json:"altText,omitempty"`
	Title          string         `json:"title,omitempty"`
	Description    string         `json:"description,omitempty"`
	ModelType      string         `json:"modelType,omitempty"`
	ModelID        string         `json:"modelId,omitempty"`
	SortOrder      *int           `json:"sortOrder,omitempty"`
}

// FormField represents a single scalar multipart field
type FormField struct {
	Name  string
	Value string
}

// FormFields returns the non-empty descriptor fields in a stable order.
// AuthType is never sent: the media API derives ownership type from the session.
func (d UploadDescriptor) FormFields() []FormField {
	candidates := []FormField{
		{"accessLevel", string(d.AccessLevel)},
		{"authId", d.AuthID},
		{"directory", d.Directory},
		{"collectionName", string(d.CollectionName)},
		{"altText", d.AltText},
		{"title", d.Title},
		{"description", d.Description},
		{"modelType", d.ModelType},
		{"modelId", d.ModelID},
	}
	if d.SortOrder != nil {
		candidates = append(candidates, FormField{"sortOrder", strconv.Itoa(*d.SortOrder)})
	}

	fields := make([]FormField, 0, len(candidates))
	for _, f := range candidates {
		if f.Value != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// UploadOutcome is the per-file upload response of the media API
type UploadOutcome struct {
	ID          string      `json:"id"`
	UUID        string      `json:"uuid"`
	Filename    string      `json:"filename"`
	MimeType    string      `json:"mimeType"`
	Size        int64       `json:"size"`
	Width       *int        `json:"width,omitempty"`
	Height      *int        `json:"height,omitempty"`
	URL         string      `json:"url"`
	AccessLevel AccessLevel `json:"accessLevel"`
	AuthID      string      `json:"authId,omitempty"`
	AuthType    OwnerType   `json:"authType,omitempty"`
	Directory   *string     `json:"directory,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// FailedUpload represents one rejected item of a bulk operation
type FailedUpload struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
	Code     string `json:"code"`
}

// BulkUploadResponse is the bulk upload response of the media API
type BulkUploadResponse struct {
	Successful   []UploadOutcome `json:"successful"`
	Failed       []FailedUpload  `json:"failed"`
	TotalCount   int             `json:"totalCount"`
	SuccessCount int             `json:"successCount"`
	FailureCount int             `json:"failureCount"`
}

// BulkOutcome represents the partitioned result of a multi-file upload.
// SuccessCount + FailureCount always equals TotalCount.
type BulkOutcome struct {
	Successful   []MediaAsset   `json:"successful"`
	Failed       []FailedUpload `json:"failed"`
	TotalCount   int            `json:"totalCount"`
	SuccessCount int            `json:"successCount"`
	FailureCount int            `json:"failureCount"`
}

// FailedDelete represents one rejected item of a bulk delete
type FailedDelete struct {
	ID    string `json:"id"`
	Error string `json:"error"`
	Code  string `json:"code"`
}

// DeleteOutcome represents the per-id result of a bulk delete
type DeleteOutcome struct {
	Deleted      []string       `json:"deleted"`
	Failed       []FailedDelete `json:"failed"`
	TotalCount   int            `json:"totalCount"`
	SuccessCount int            `json:"successCount"`
	FailureCount int            `json:"failureCount"`
}

// ModelAttachment represents a link between an asset and an owning model
type ModelAttachment struct {
	ModelType      string         `json:"modelType"`
	ModelID        string         `json:"modelId"`
	CollectionName CollectionType `json:"collectionName,omitempty"`
	SortOrder      *int           `json:"sortOrder,omitempty"`
}

// ModelRef identifies an owning model
type ModelRef struct {
	ModelType string `json:"modelType"`
	ModelID   string `json:"modelId"`
}

// CategoryStats represents aggregate figures for one category
type CategoryStats struct {
	Count     int   `json:"count"`
	TotalSize int64 `json:"totalSize"`
}

// MediaStatsResponse represents aggregate media figures visible to the caller
type MediaStatsResponse struct {
	TotalFiles    int                           `json:"totalFiles"`
	TotalSize     int64                         `json:"totalSize"`
	ByCategory    map[string]CategoryStats      `json:"byCategory"`
	ByAccessLevel map[AccessLevel]CategoryStats `json:"byAccessLevel"`
	RecentUploads int                           `json:"recentUploads"`
}
