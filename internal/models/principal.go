package models

import "slices"

// Principal represents the authenticated actor whose permissions are evaluated.
// It is supplied by the authentication layer and is read-only here.
type Principal struct {
	ID           string   `json:"id"`
	IsSuperAdmin bool     `json:"isSuperAdmin"`
	IsActive     bool     `json:"isActive"`
	Apps         []string `json:"apps"`
}

// HasScope reports whether the principal was granted the given application scope
func (p *Principal) HasScope(scope string) bool {
	if p == nil {
		return false
	}
	return slices.Contains(p.Apps, scope)
}

// HasAnyScope reports whether the principal was granted at least one application scope
func (p *Principal) HasAnyScope() bool {
	return p != nil && len(p.Apps) > 0
}

// PrincipalCapabilities represents what the dashboard may offer to a principal
type PrincipalCapabilities struct {
	Authenticated       bool             `json:"authenticated"`
	CanUpload           bool             `json:"canUpload"`
	CanUploadSvg        bool             `json:"canUploadSvg"`
	AllowedAccessLevels []AccessLevel    `json:"allowedAccessLevels"`
	Collections         []CollectionType `json:"collections"`
}
