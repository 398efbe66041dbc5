package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/tenantdesk/mediagate/internal/apperrors"
	"github.com/tenantdesk/mediagate/internal/models"
	"github.com/tenantdesk/mediagate/internal/validation"
	"go.uber.org/zap"
)

// UploadState is the state of one in-flight upload
type UploadState string

const (
	StateIdle       UploadState = "idle"
	StateValidating UploadState = "validating"
	StateRejected   UploadState = "rejected"
	StateUploading  UploadState = "uploading"
	StateSucceeded  UploadState = "succeeded"
	StateFailed     UploadState = "failed"
)

var uploadTransitions = map[UploadState][]UploadState{
	StateIdle:       {StateValidating},
	StateValidating: {StateRejected, StateUploading},
	StateUploading:  {StateSucceeded, StateFailed},
}

// IsTerminal reports whether no further transition is possible
func (s UploadState) IsTerminal() bool {
	return s == StateRejected || s == StateSucceeded || s == StateFailed
}

// UploadTracker follows one upload through idle, validating, rejected or uploading,
// and finally succeeded or failed. There is no cancelled state: once uploading, the
// request runs to completion.
type UploadTracker struct {
	mu    sync.Mutex
	id    string
	state UploadState
	err   error
}

// NewUploadTracker creates a new tracker in the idle state
func NewUploadTracker() *UploadTracker {
	return &UploadTracker{
		id:    uuid.New().String(),
		state: StateIdle,
	}
}

// ID returns the tracker id used to correlate log lines
func (t *UploadTracker) ID() string {
	return t.id
}

// State returns the current state
func (t *UploadTracker) State() UploadState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Err returns the error that moved the tracker to rejected or failed
func (t *UploadTracker) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Transition moves the tracker to the next state. Illegal transitions return an error.
func (t *UploadTracker) Transition(to UploadState) error {
	return t.transition(to, nil)
}

func (t *UploadTracker) fail(to UploadState, cause error) error {
	return t.transition(to, cause)
}

func (t *UploadTracker) transition(to UploadState, cause error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, next := range uploadTransitions[t.state] {
		if next == to {
			t.state = to
			t.err = cause
			return nil
		}
	}
	return fmt.Errorf("illegal upload transition from %s to %s", t.state, to)
}

// UploadPermissions is the interface that wraps the permission decisions of the upload flow
type UploadPermissions interface {
	CanUpload(p *models.Principal) bool
	CanUploadToCollection(p *models.Principal, collection models.CollectionType) bool
	CanAccessLevel(p *models.Principal, level models.AccessLevel) bool
	CanUploadSvg(p *models.Principal) bool
}

// FileValidator is the interface that wraps the validation entry points of the upload flow
type FileValidator interface {
	ValidateFile(file models.FileInfo, ctx models.UploadContext) models.ValidationResult
	ValidateFiles(files []models.FileInfo, ctx models.UploadContext) models.ValidationResult
	ValidateSvgFile(file models.FileInfo, principal *models.Principal, ctx models.UploadContext) models.ValidationResult
	ValidateFilesForCategory(files []models.FileInfo, category models.Category, ctx models.UploadContext) models.ValidationResult
}

// MediaCreator is the interface that wraps the upload operations of the media service
type MediaCreator interface {
	Create(ctx context.Context, file models.UploadFile, descriptor models.UploadDescriptor) (*models.MediaAsset, error)
	CreateMany(ctx context.Context, files []models.UploadFile, descriptor models.UploadDescriptor) (*models.BulkOutcome, error)
}

// UploadObserver is the interface that wraps the reporting of finished uploads
type UploadObserver interface {
	// Method ObserveUpload is called once per upload that reached a terminal state.
	//
	// "state" parameter is the terminal state; "err" is nil on success.
	// "size" parameter is the total declared size of the files.
	ObserveUpload(state string, err error, size int64)
}

// UploadRequest represents a single-file upload attempt
type UploadRequest struct {
	Principal  *models.Principal
	Context    models.UploadContext
	File       models.UploadFile
	Descriptor models.UploadDescriptor
}

// BulkUploadRequest represents a multi-file upload attempt
type BulkUploadRequest struct {
	Principal  *models.Principal
	Context    models.UploadContext
	Files      []models.UploadFile
	Descriptor models.UploadDescriptor
}

// Uploader runs the permission gate and the validator before handing files to the media service
type Uploader struct {
	permissions UploadPermissions
	validator   FileValidator
	media       MediaCreator
	observer    UploadObserver
	logger      *zap.Logger
}

// NewUploader creates a new uploader
func NewUploader(permissions UploadPermissions, validator FileValidator, media MediaCreator, logger *zap.Logger) *Uploader {
	return &Uploader{
		permissions: permissions,
		validator:   validator,
		media:       media,
		logger:      logger,
	}
}

// WithObserver reports every finished upload to o
func (u *Uploader) WithObserver(o UploadObserver) *Uploader {
	u.observer = o
	return u
}

// Upload gates, validates and uploads one file. A nil tracker is replaced by a fresh one.
func (u *Uploader) Upload(ctx context.Context, tracker *UploadTracker, req UploadRequest) (*models.MediaAsset, error) {
	if tracker == nil {
		tracker = NewUploadTracker()
	}
	if err := tracker.Transition(StateValidating); err != nil {
		return nil, err
	}

	if err := u.checkPermissions(req.Principal, req.Descriptor); err != nil {
		return nil, u.reject(tracker, err, req.File.Size)
	}

	var result models.ValidationResult
	if validation.NormalizeMimeType(req.File.MimeType) == models.SvgMimeType {
		result = u.validator.ValidateSvgFile(req.File.FileInfo, req.Principal, req.Context)
	} else {
		result = u.validator.ValidateFile(req.File.FileInfo, req.Context)
	}
	if err := result.Err(); err != nil {
		return nil, u.reject(tracker, err, req.File.Size)
	}

	if err := tracker.Transition(StateUploading); err != nil {
		return nil, err
	}

	asset, err := u.media.Create(ctx, req.File, req.Descriptor)
	if err != nil {
		_ = tracker.fail(StateFailed, err)
		u.observe(StateFailed, err, req.File.Size)
		u.logger.Warn("upload failed", zap.String("upload_id", tracker.ID()), zap.Error(err))
		return nil, err
	}

	_ = tracker.Transition(StateSucceeded)
	u.observe(StateSucceeded, nil, req.File.Size)
	u.logger.Debug("upload succeeded", zap.String("upload_id", tracker.ID()), zap.String("media_id", asset.ID))
	return asset, nil
}

// UploadMany gates, validates and uploads a batch in one request.
// SVG files must be sent in a batch of their own so the svg category limits apply.
func (u *Uploader) UploadMany(ctx context.Context, tracker *UploadTracker, req BulkUploadRequest) (*models.BulkOutcome, error) {
	if tracker == nil {
		tracker = NewUploadTracker()
	}
	if err := tracker.Transition(StateValidating); err != nil {
		return nil, err
	}

	var size int64
	for _, file := range req.Files {
		size += file.Size
	}

	if err := u.checkPermissions(req.Principal, req.Descriptor); err != nil {
		return nil, u.reject(tracker, err, size)
	}
	if len(req.Files) == 0 {
		return nil, u.reject(tracker, apperrors.Validation("No files to upload", apperrors.CodeInvalidRequest), 0)
	}

	infos := make([]models.FileInfo, 0, len(req.Files))
	svgCount := 0
	for _, file := range req.Files {
		infos = append(infos, file.FileInfo)
		if validation.NormalizeMimeType(file.MimeType) == models.SvgMimeType {
			svgCount++
		}
	}

	var result models.ValidationResult
	switch {
	case svgCount == 0:
		result = u.validator.ValidateFiles(infos, req.Context)
	case !u.permissions.CanUploadSvg(req.Principal):
		result = models.NewValidationResult([]string{"SVG uploads are restricted to super administrators"})
	case svgCount < len(infos):
		result = models.NewValidationResult([]string{"SVG files must be uploaded separately from other files"})
	default:
		result = u.validator.ValidateFilesForCategory(infos, models.CategorySvg, req.Context)
	}
	if err := result.Err(); err != nil {
		return nil, u.reject(tracker, err, size)
	}

	if err := tracker.Transition(StateUploading); err != nil {
		return nil, err
	}

	outcome, err := u.media.CreateMany(ctx, req.Files, req.Descriptor)
	if err != nil {
		_ = tracker.fail(StateFailed, err)
		u.observe(StateFailed, err, size)
		u.logger.Warn("bulk upload failed", zap.String("upload_id", tracker.ID()), zap.Error(err))
		return nil, err
	}

	_ = tracker.Transition(StateSucceeded)
	var accepted int64
	for _, asset := range outcome.Successful {
		accepted += asset.Size
	}
	u.observe(StateSucceeded, nil, accepted)
	return outcome, nil
}

func (u *Uploader) checkPermissions(p *models.Principal, descriptor models.UploadDescriptor) error {
	if !u.permissions.CanUpload(p) {
		return apperrors.Permission("You do not have permission to upload files")
	}
	if descriptor.CollectionName != "" && !u.permissions.CanUploadToCollection(p, descriptor.CollectionName) {
		return apperrors.Permission(fmt.Sprintf("You do not have permission to upload to the %s collection", descriptor.CollectionName))
	}
	if descriptor.AccessLevel != "" && !u.permissions.CanAccessLevel(p, descriptor.AccessLevel) {
		return apperrors.Permission(fmt.Sprintf("You do not have permission to assign the %s access level", descriptor.AccessLevel))
	}
	return nil
}

func (u *Uploader) reject(tracker *UploadTracker, err error, size int64) error {
	_ = tracker.fail(StateRejected, err)
	u.observe(StateRejected, err, size)
	u.logger.Debug("upload rejected",
		zap.String("upload_id", tracker.ID()),
		zap.String("kind", string(apperrors.KindOf(err))),
		zap.Error(err),
	)
	return err
}

func (u *Uploader) observe(state UploadState, err error, size int64) {
	if u.observer != nil {
		u.observer.ObserveUpload(string(state), err, size)
	}
}
