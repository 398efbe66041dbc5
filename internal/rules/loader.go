package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/tenantdesk/mediagate/internal/models"
	"gopkg.in/yaml.v3"
)

// fileOverrides mirrors the YAML rules file. Every field is optional and replaces the default.
type fileOverrides struct {
	MaxConcurrentUploads *int                        `yaml:"maxConcurrentUploads"`
	StrictExtensionMatch *bool                       `yaml:"strictExtensionMatch"`
	AllowedMimeTypes     []string                    `yaml:"allowedMimeTypes"`
	AllowedExtensions    []string                    `yaml:"allowedExtensions"`
	DeniedMimeTypes      []string                    `yaml:"deniedMimeTypes"`
	Contexts             map[string]contextOverride  `yaml:"contexts"`
	Categories           map[string]categoryOverride `yaml:"categories"`
	Permissions          *permissionOverride         `yaml:"permissions"`
}

type contextOverride struct {
	MaxSize  *int64 `yaml:"maxSize"`
	MaxFiles *int   `yaml:"maxFiles"`
}

type categoryOverride struct {
	MaxSize      *int64   `yaml:"maxSize"`
	AllowedTypes []string `yaml:"allowedTypes"`
	DeniedTypes  []string `yaml:"deniedTypes"`
	MaxFiles     *int     `yaml:"maxFiles"`
}

type permissionOverride struct {
	SupportScope      string   `yaml:"supportScope"`
	AcademyScope      string   `yaml:"academyScope"`
	OpenCollections   []string `yaml:"openCollections"`
	ScopedCollections []string `yaml:"scopedCollections"`
}

// Load builds the rule tables from the defaults and an optional YAML overrides file.
// An empty path returns the defaults.
func Load(path string) (*Rules, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	return Parse(data)
}

// Parse applies YAML overrides to the default rule tables
func Parse(data []byte) (*Rules, error) {
	var overrides fileOverrides
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&overrides); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	r := Default().clone()
	if err := overrides.apply(r); err != nil {
		return nil, err
	}
	return r, nil
}

func (o *fileOverrides) apply(r *Rules) error {
	if o.MaxConcurrentUploads != nil {
		if *o.MaxConcurrentUploads <= 0 {
			return fmt.Errorf("maxConcurrentUploads must be positive")
		}
		r.maxConcurrentUploads = *o.MaxConcurrentUploads
	}
	if o.StrictExtensionMatch != nil {
		r.strictExtensionMatch = *o.StrictExtensionMatch
	}
	if o.AllowedMimeTypes != nil {
		r.allowedMimeTypes = normalizeList(o.AllowedMimeTypes)
	}
	if o.AllowedExtensions != nil {
		exts := normalizeList(o.AllowedExtensions)
		for i, ext := range exts {
			exts[i] = strings.TrimPrefix(ext, ".")
		}
		r.allowedExtensions = exts
	}
	if o.DeniedMimeTypes != nil {
		r.deniedMimeTypes = normalizeList(o.DeniedMimeTypes)
	}

	for name, override := range o.Contexts {
		ctx := models.UploadContext(name)
		rule, ok := r.contexts[ctx]
		if !ok {
			return fmt.Errorf("unknown upload context: %s", name)
		}
		if override.MaxSize != nil {
			if *override.MaxSize <= 0 {
				return fmt.Errorf("context %s: maxSize must be positive", name)
			}
			rule.MaxSize = *override.MaxSize
		}
		if override.MaxFiles != nil {
			if *override.MaxFiles <= 0 {
				return fmt.Errorf("context %s: maxFiles must be positive", name)
			}
			rule.MaxFiles = *override.MaxFiles
		}
		r.contexts[ctx] = rule
	}

	for name, override := range o.Categories {
		category := models.Category(name)
		rule, ok := r.categories[category]
		if !ok {
			return fmt.Errorf("unknown category: %s", name)
		}
		if override.MaxSize != nil {
			if *override.MaxSize <= 0 {
				return fmt.Errorf("category %s: maxSize must be positive", name)
			}
			rule.MaxSize = *override.MaxSize
		}
		if override.AllowedTypes != nil {
			rule.AllowedTypes = normalizeList(override.AllowedTypes)
		}
		if override.DeniedTypes != nil {
			rule.DeniedTypes = normalizeList(override.DeniedTypes)
		}
		if override.MaxFiles != nil {
			if *override.MaxFiles < 0 {
				return fmt.Errorf("category %s: maxFiles must not be negative", name)
			}
			rule.MaxFiles = *override.MaxFiles
		}
		r.categories[category] = rule
	}

	if p := o.Permissions; p != nil {
		if p.SupportScope != "" {
			r.permissions.SupportScope = p.SupportScope
		}
		if p.AcademyScope != "" {
			r.permissions.AcademyScope = p.AcademyScope
		}
		if p.OpenCollections != nil {
			r.permissions.OpenCollections = toCollections(p.OpenCollections)
		}
		if p.ScopedCollections != nil {
			r.permissions.ScopedCollections = toCollections(p.ScopedCollections)
		}
	}

	return nil
}

func normalizeList(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" && !slices.Contains(result, v) {
			result = append(result, v)
		}
	}
	return result
}

func toCollections(values []string) []models.CollectionType {
	result := make([]models.CollectionType, 0, len(values))
	for _, v := range normalizeList(values) {
		result = append(result, models.CollectionType(v))
	}
	return result
}
