// Package validation screens candidate files against the rule tables before any network I/O
package validation

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tenantdesk/mediagate/internal/format"
	"github.com/tenantdesk/mediagate/internal/models"
	"github.com/tenantdesk/mediagate/internal/rules"
)

// Validator checks file size, MIME type and category limits. It holds no mutable state.
type Validator struct {
	rules *rules.Rules
}

// NewValidator creates a new upload validator
func NewValidator(r *rules.Rules) *Validator {
	return &Validator{
		rules: r,
	}
}

// NormalizeMimeType lower-cases the MIME type and strips any parameters
func NormalizeMimeType(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// ResolveCategory derives the validation category from a MIME type.
// SVG resolves to image so that the image category's deny list applies to it.
func ResolveCategory(mimeType string) models.Category {
	mimeType = NormalizeMimeType(mimeType)

	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return models.CategoryImage
	case strings.HasPrefix(mimeType, "audio/"):
		return models.CategoryAudio
	case strings.HasPrefix(mimeType, "video/"):
		return models.CategoryVideo
	case containsAny(mimeType, "pdf", "word", "excel", "sheet", "presentation", "powerpoint", "text", "rtf"):
		return models.CategoryDocument
	case containsAny(mimeType, "zip", "rar", "7z", "tar", "gzip", "compressed"):
		return models.CategoryArchive
	default:
		return models.CategoryOther
	}
}

// ValidateFile checks one file against the deny list, the context ceiling,
// the allow list and the limits of its resolved category.
func (v *Validator) ValidateFile(file models.FileInfo, ctx models.UploadContext) models.ValidationResult {
	mimeType := NormalizeMimeType(file.MimeType)

	if v.rules.IsDenied(mimeType) {
		return models.NewValidationResult([]string{deniedMessage(mimeType)})
	}

	errs := v.checkContextSize(file, ctx)

	if !v.isAllowed(file, mimeType) {
		errs = append(errs, fmt.Sprintf("File type %s is not allowed", displayType(mimeType)))
	}

	category := ResolveCategory(mimeType)
	if rule, ok := v.rules.Category(category); ok {
		if file.Size > rule.MaxSize {
			size, limit := format.FormatSizes(file.Size, rule.MaxSize)
			errs = append(errs, fmt.Sprintf("File size %s exceeds the maximum allowed size of %s for %s files",
				size, limit, category))
		}
		if slices.Contains(rule.DeniedTypes, mimeType) {
			errs = append(errs, fmt.Sprintf("File type %s is not allowed for %s files", displayType(mimeType), category))
		}
	}

	return models.NewValidationResult(errs)
}

// ValidateFiles checks the file count against the context ceiling and then every file.
// Per-file messages are prefixed with the 1-based index and the file name.
func (v *Validator) ValidateFiles(files []models.FileInfo, ctx models.UploadContext) models.ValidationResult {
	var errs []string

	if rule, ok := v.rules.Context(ctx); ok && len(files) > rule.MaxFiles {
		errs = append(errs, tooManyFilesMessage(rule.MaxFiles, len(files)))
	}

	for i, file := range files {
		result := v.ValidateFile(file, ctx)
		errs = append(errs, namespaced(i, file, result.Errors)...)
	}

	return models.NewValidationResult(errs)
}

// ValidateFileForCategory checks one file against an explicitly chosen category
func (v *Validator) ValidateFileForCategory(file models.FileInfo, category models.Category, ctx models.UploadContext) models.ValidationResult {
	mimeType := NormalizeMimeType(file.MimeType)

	if v.rules.IsDenied(mimeType) {
		return models.NewValidationResult([]string{deniedMessage(mimeType)})
	}

	errs := v.checkContextSize(file, ctx)

	rule, ok := v.rules.Category(category)
	if !ok {
		errs = append(errs, fmt.Sprintf("Unknown file category: %s", category))
		return models.NewValidationResult(errs)
	}

	if file.Size > rule.MaxSize {
		size, limit := format.FormatSizes(file.Size, rule.MaxSize)
		errs = append(errs, fmt.Sprintf("File size %s exceeds the maximum allowed size of %s for %s files",
			size, limit, category))
	}
	if len(rule.AllowedTypes) > 0 && !slices.Contains(rule.AllowedTypes, mimeType) {
		errs = append(errs, fmt.Sprintf("File type %s is not allowed for %s files", displayType(mimeType), category))
	} else if slices.Contains(rule.DeniedTypes, mimeType) {
		errs = append(errs, fmt.Sprintf("File type %s is not allowed for %s files", displayType(mimeType), category))
	}

	return models.NewValidationResult(errs)
}

// ValidateFilesForCategory checks a batch destined for one category.
// The category's own file count ceiling applies when it has one.
func (v *Validator) ValidateFilesForCategory(files []models.FileInfo, category models.Category, ctx models.UploadContext) models.ValidationResult {
	var errs []string

	maxFiles := 0
	if rule, ok := v.rules.Category(category); ok && rule.MaxFiles > 0 {
		maxFiles = rule.MaxFiles
	} else if rule, ok := v.rules.Context(ctx); ok {
		maxFiles = rule.MaxFiles
	}
	if maxFiles > 0 && len(files) > maxFiles {
		errs = append(errs, tooManyFilesMessage(maxFiles, len(files)))
	}

	for i, file := range files {
		result := v.ValidateFileForCategory(file, category, ctx)
		errs = append(errs, namespaced(i, file, result.Errors)...)
	}

	return models.NewValidationResult(errs)
}

// ValidateSvgFile restricts SVG uploads to super administrators and then
// validates the file against the svg category.
func (v *Validator) ValidateSvgFile(file models.FileInfo, principal *models.Principal, ctx models.UploadContext) models.ValidationResult {
	if NormalizeMimeType(file.MimeType) == models.SvgMimeType && (principal == nil || !principal.IsSuperAdmin) {
		return models.NewValidationResult([]string{"SVG uploads are restricted to super administrators"})
	}
	return v.ValidateFileForCategory(file, models.CategorySvg, ctx)
}

func (v *Validator) checkContextSize(file models.FileInfo, ctx models.UploadContext) []string {
	rule, ok := v.rules.Context(ctx)
	if !ok {
		return []string{fmt.Sprintf("Unknown upload context: %s", ctx)}
	}
	if file.Size > rule.MaxSize {
		size, limit := format.FormatSizes(file.Size, rule.MaxSize)
		return []string{fmt.Sprintf("File size %s exceeds the maximum allowed size of %s for %s",
			size, limit, ctx)}
	}
	return nil
}

// isAllowed compares against the MIME allow list and the allowed extensions.
// By default the extensions are matched as suffixes of the MIME string; in strict
// mode they are matched against the file name's extension instead.
func (v *Validator) isAllowed(file models.FileInfo, mimeType string) bool {
	if v.rules.IsAllowedMimeType(mimeType) {
		return true
	}

	if v.rules.StrictExtensionMatch() {
		return v.rules.IsAllowedExtension(filepath.Ext(file.Name))
	}

	for _, ext := range v.rules.AllowedExtensions() {
		if mimeType != "" && strings.HasSuffix(mimeType, ext) {
			return true
		}
	}
	return false
}

func deniedMessage(mimeType string) string {
	return fmt.Sprintf("File type %s is not allowed for security reasons", displayType(mimeType))
}

func tooManyFilesMessage(limit, got int) string {
	return fmt.Sprintf("Too many files: maximum %d files allowed, got %d", limit, got)
}

func namespaced(index int, file models.FileInfo, errs []string) []string {
	result := make([]string, 0, len(errs))
	for _, e := range errs {
		result = append(result, fmt.Sprintf("File %d (%s): %s", index+1, file.Name, e))
	}
	return result
}

func displayType(mimeType string) string {
	if mimeType == "" {
		return "unknown"
	}
	return mimeType
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
