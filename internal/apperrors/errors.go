// Package apperrors provides the error taxonomy shared by the media engine.
//
// Errors are classified by the Kind field, not by their Go type, so they can be
// serialized and compared after crossing a process boundary.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an application error
type Kind string

const (
	KindValidation Kind = "validation"
	KindUpload     Kind = "upload"
	KindPermission Kind = "permission"
)

// Machine-readable error codes
const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeUploadFailed     = "UPLOAD_FAILED"
	CodeUpdateFailed     = "UPDATE_FAILED"
	CodeDeleteFailed     = "DELETE_FAILED"
	CodeBulkDeleteFailed = "BULK_DELETE_FAILED"
	CodeRequestFailed    = "REQUEST_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeForbidden        = "FORBIDDEN"
)

// Error is the single concrete error type of the taxonomy
type Error struct {
	Kind    Kind     `json:"kind"`
	Message string   `json:"message"`
	Code    string   `json:"code"`
	Details []string `json:"details,omitempty"`
	// Status carries the upstream HTTP status for upload errors, zero otherwise
	Status int `json:"status,omitempty"`

	cause error
}

func (e *Error) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Validation creates an error raised before any network call
func Validation(message, code string, details ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Code: code, Details: details}
}

// Upload creates an error for a network failure or server-side rejection
func Upload(message, code string, status int, cause error) *Error {
	return &Error{Kind: KindUpload, Message: message, Code: code, Status: status, cause: cause}
}

// Permission creates an error for an action the permission checker denied
func Permission(message string) *Error {
	return &Error{Kind: KindPermission, Message: message, Code: CodeForbidden}
}

// KindOf returns the kind of an application error, or "" for any other error
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// Is reports whether err is an application error of the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// As extracts the application error from err
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
