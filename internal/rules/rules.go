// Package rules provides the immutable rule tables used by the validator and the permission checker
package rules

import (
	"maps"
	"slices"
	"strings"

	"github.com/tenantdesk/mediagate/internal/models"
)

const mb = 1024 * 1024

// CategoryRule holds the limits applied to one file category
type CategoryRule struct {
	MaxSize      int64
	AllowedTypes []string
	DeniedTypes  []string
	// MaxFiles is zero when the context ceiling applies
	MaxFiles int
}

// ContextRule holds the ceilings of one tenant surface
type ContextRule struct {
	MaxSize  int64
	MaxFiles int
}

// PermissionPolicy holds the scope names and collection policy of the permission checker
type PermissionPolicy struct {
	SupportScope      string
	AcademyScope      string
	OpenCollections   []models.CollectionType
	ScopedCollections []models.CollectionType
}

// Rules is the read-only rule table set.
// A Rules value is never mutated after construction and is safe for concurrent use.
type Rules struct {
	categories           map[models.Category]CategoryRule
	contexts             map[models.UploadContext]ContextRule
	allowedMimeTypes     []string
	allowedExtensions    []string
	deniedMimeTypes      []string
	maxConcurrentUploads int
	strictExtensionMatch bool
	permissions          PermissionPolicy
}

var (
	imageTypes = []string{
		"image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp", "image/tiff",
	}
	audioTypes = []string{
		"audio/mpeg", "audio/wav", "audio/ogg", "audio/mp4", "audio/aac", "audio/webm",
	}
	videoTypes = []string{
		"video/mp4", "video/webm", "video/ogg", "video/quicktime", "video/x-msvideo",
	}
	documentTypes = []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.ms-powerpoint",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"application/rtf",
		"text/plain",
		"text/csv",
	}
	archiveTypes = []string{
		"application/zip", "application/x-7z-compressed", "application/x-rar-compressed",
		"application/gzip", "application/x-tar",
	}
	securityDeniedTypes = []string{
		"text/html",
		"application/xhtml+xml",
		"application/javascript",
		"text/javascript",
		"application/x-msdownload",
		"application/x-msdos-program",
		"application/vnd.microsoft.portable-executable",
		"application/x-executable",
		"application/x-sh",
		"application/x-bat",
		"application/x-php",
		"application/java-archive",
	}
	allowedExtensions = []string{
		"jpg", "jpeg", "png", "gif", "webp", "bmp", "tiff", "svg",
		"mp3", "wav", "ogg", "m4a", "aac",
		"mp4", "webm", "mov", "avi",
		"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx", "rtf", "txt", "csv",
		"zip", "7z", "rar", "gz", "tar",
	}
)

// Default returns the built-in rule tables
func Default() *Rules {
	allowed := slices.Concat(imageTypes, []string{models.SvgMimeType}, audioTypes, videoTypes, documentTypes, archiveTypes)

	return &Rules{
		categories: map[models.Category]CategoryRule{
			models.CategoryImage: {
				MaxSize:      10 * mb,
				AllowedTypes: imageTypes,
				DeniedTypes:  []string{models.SvgMimeType},
			},
			models.CategorySvg: {
				MaxSize:      15 * mb,
				AllowedTypes: []string{models.SvgMimeType},
				MaxFiles:     3,
			},
			models.CategoryAudio: {
				MaxSize:      50 * mb,
				AllowedTypes: audioTypes,
			},
			models.CategoryVideo: {
				MaxSize:      100 * mb,
				AllowedTypes: videoTypes,
			},
			models.CategoryDocument: {
				MaxSize:      25 * mb,
				AllowedTypes: documentTypes,
				DeniedTypes:  []string{"application/vnd.ms-word.document.macroenabled.12"},
			},
			models.CategoryArchive: {
				MaxSize:      50 * mb,
				AllowedTypes: archiveTypes,
				DeniedTypes:  []string{"application/java-archive"},
			},
			models.CategoryOther: {
				MaxSize: 5 * mb,
			},
		},
		contexts: map[models.UploadContext]ContextRule{
			models.ContextDashboard: {MaxSize: 50 * mb, MaxFiles: 20},
			models.ContextAcademy:   {MaxSize: 10 * mb, MaxFiles: 10},
			models.ContextSupport:   {MaxSize: 25 * mb, MaxFiles: 5},
		},
		allowedMimeTypes:     allowed,
		allowedExtensions:    allowedExtensions,
		deniedMimeTypes:      securityDeniedTypes,
		maxConcurrentUploads: 4,
		permissions: PermissionPolicy{
			SupportScope: "support",
			AcademyScope: "academy",
			OpenCollections: []models.CollectionType{
				models.CollectionAvatar, models.CollectionCover, models.CollectionDefault,
			},
			ScopedCollections: []models.CollectionType{
				models.CollectionGallery, models.CollectionAttachments, models.CollectionDocuments,
			},
		},
	}
}

// Category returns the rule of a category
func (r *Rules) Category(category models.Category) (CategoryRule, bool) {
	rule, ok := r.categories[category]
	if !ok {
		return CategoryRule{}, false
	}
	return CategoryRule{
		MaxSize:      rule.MaxSize,
		AllowedTypes: slices.Clone(rule.AllowedTypes),
		DeniedTypes:  slices.Clone(rule.DeniedTypes),
		MaxFiles:     rule.MaxFiles,
	}, true
}

// Context returns the ceilings of a tenant surface
func (r *Rules) Context(ctx models.UploadContext) (ContextRule, bool) {
	rule, ok := r.contexts[ctx]
	return rule, ok
}

// Contexts lists the configured tenant surfaces in a stable order
func (r *Rules) Contexts() []models.UploadContext {
	return slices.Sorted(maps.Keys(r.contexts))
}

// IsDenied reports whether the MIME type is on the security deny list
func (r *Rules) IsDenied(mimeType string) bool {
	return slices.Contains(r.deniedMimeTypes, mimeType)
}

// IsAllowedMimeType reports whether the MIME type is on the global allow list
func (r *Rules) IsAllowedMimeType(mimeType string) bool {
	return slices.Contains(r.allowedMimeTypes, mimeType)
}

// AllowedExtensions returns the allowed file extensions without leading dots
func (r *Rules) AllowedExtensions() []string {
	return slices.Clone(r.allowedExtensions)
}

// IsAllowedExtension reports whether the extension (with or without dot) is allowed
func (r *Rules) IsAllowedExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	return ext != "" && slices.Contains(r.allowedExtensions, ext)
}

// MaxConcurrentUploads returns the bound on concurrent in-flight media requests
func (r *Rules) MaxConcurrentUploads() int {
	return r.maxConcurrentUploads
}

// StrictExtensionMatch reports whether extension matching uses the filename instead of the MIME string
func (r *Rules) StrictExtensionMatch() bool {
	return r.strictExtensionMatch
}

// Permissions returns the permission policy
func (r *Rules) Permissions() PermissionPolicy {
	return PermissionPolicy{
		SupportScope:      r.permissions.SupportScope,
		AcademyScope:      r.permissions.AcademyScope,
		OpenCollections:   slices.Clone(r.permissions.OpenCollections),
		ScopedCollections: slices.Clone(r.permissions.ScopedCollections),
	}
}

// WithStrictExtensionMatch returns a copy of the rules with extension matching switched
func (r *Rules) WithStrictExtensionMatch(strict bool) *Rules {
	clone := r.clone()
	clone.strictExtensionMatch = strict
	return clone
}

// WithMaxConcurrentUploads returns a copy of the rules with a different concurrency bound
func (r *Rules) WithMaxConcurrentUploads(n int) *Rules {
	clone := r.clone()
	if n > 0 {
		clone.maxConcurrentUploads = n
	}
	return clone
}

func (r *Rules) clone() *Rules {
	categories := make(map[models.Category]CategoryRule, len(r.categories))
	for k, v := range r.categories {
		categories[k] = CategoryRule{
			MaxSize:      v.MaxSize,
			AllowedTypes: slices.Clone(v.AllowedTypes),
			DeniedTypes:  slices.Clone(v.DeniedTypes),
			MaxFiles:     v.MaxFiles,
		}
	}
	return &Rules{
		categories:           categories,
		contexts:             maps.Clone(r.contexts),
		allowedMimeTypes:     slices.Clone(r.allowedMimeTypes),
		allowedExtensions:    slices.Clone(r.allowedExtensions),
		deniedMimeTypes:      slices.Clone(r.deniedMimeTypes),
		maxConcurrentUploads: r.maxConcurrentUploads,
		strictExtensionMatch: r.strictExtensionMatch,
		permissions:          r.Permissions(),
	}
}
