// Package permissions decides whether a principal may view, upload, edit or delete media.
//
// Decisions are pure functions of their inputs. They gate UI affordances and save
// network round-trips; the media API re-checks every request independently.
package permissions

import (
	"fmt"
	"slices"

	"github.com/tenantdesk/mediagate/internal/apperrors"
	"github.com/tenantdesk/mediagate/internal/models"
	"github.com/tenantdesk/mediagate/internal/rules"
)

// Checker evaluates access decisions over (principal, asset) pairs
type Checker struct {
	policy rules.PermissionPolicy
}

// NewChecker creates a new permission checker
func NewChecker(r *rules.Rules) *Checker {
	return &Checker{
		policy: r.Permissions(),
	}
}

// CanUpload reports whether the principal may upload at all
func (c *Checker) CanUpload(p *models.Principal) bool {
	if p == nil {
		return false
	}
	if p.IsSuperAdmin {
		return true
	}
	return p.HasAnyScope()
}

// CanView reports whether the principal may see the asset.
// An unauthenticated caller (nil principal) sees PUBLIC assets only.
func (c *Checker) CanView(p *models.Principal, asset *models.MediaAsset) bool {
	if asset == nil {
		return false
	}
	if p == nil {
		return asset.AccessLevel == models.AccessLevelPublic
	}
	if p.IsSuperAdmin {
		return true
	}
	if isOwner(p, asset) {
		return true
	}

	switch asset.AccessLevel {
	case models.AccessLevelPublic:
		return true
	case models.AccessLevelSelf:
		return isOwner(p, asset)
	case models.AccessLevelSupport:
		return p.HasScope(c.policy.SupportScope)
	case models.AccessLevelAcademy:
		return p.HasScope(c.policy.AcademyScope)
	default:
		return false
	}
}

// CanEdit reports whether the principal may change the asset metadata
func (c *Checker) CanEdit(p *models.Principal, asset *models.MediaAsset) bool {
	return c.canModify(p, asset)
}

// CanDelete reports whether the principal may delete the asset
func (c *Checker) CanDelete(p *models.Principal, asset *models.MediaAsset) bool {
	return c.canModify(p, asset)
}

// canModify is the shared edit/delete policy.
// Only owner types that opt in through OwnerEditable get owner rights.
func (c *Checker) canModify(p *models.Principal, asset *models.MediaAsset) bool {
	if p == nil || asset == nil {
		return false
	}
	if p.IsSuperAdmin {
		return true
	}
	if isOwner(p, asset) {
		return true
	}

	switch asset.AccessLevel {
	case models.AccessLevelSupport:
		return p.HasScope(c.policy.SupportScope)
	case models.AccessLevelAcademy:
		return p.HasScope(c.policy.AcademyScope)
	default:
		return false
	}
}

// AllowedAccessLevels returns the access levels the principal may assign to an asset
func (c *Checker) AllowedAccessLevels(p *models.Principal) []models.AccessLevel {
	if p == nil {
		return []models.AccessLevel{models.AccessLevelPublic}
	}
	if p.IsSuperAdmin {
		return models.AllAccessLevels()
	}

	levels := []models.AccessLevel{models.AccessLevelPublic, models.AccessLevelSelf}
	if p.HasScope(c.policy.SupportScope) {
		levels = append(levels, models.AccessLevelSupport)
	}
	if p.HasScope(c.policy.AcademyScope) {
		levels = append(levels, models.AccessLevelAcademy)
	}
	return levels
}

// CanAccessLevel reports whether the level is among the principal's allowed levels
func (c *Checker) CanAccessLevel(p *models.Principal, level models.AccessLevel) bool {
	return slices.Contains(c.AllowedAccessLevels(p), level)
}

// CanUploadToCollection reports whether the principal may upload into the collection
func (c *Checker) CanUploadToCollection(p *models.Principal, collection models.CollectionType) bool {
	if p == nil {
		return false
	}
	if p.IsSuperAdmin {
		return true
	}
	if slices.Contains(c.policy.OpenCollections, collection) {
		return true
	}
	if slices.Contains(c.policy.ScopedCollections, collection) {
		return p.HasAnyScope()
	}
	return false
}

// CanUploadSvg reports whether the principal may upload SVG files
func (c *Checker) CanUploadSvg(p *models.Principal) bool {
	return p != nil && p.IsSuperAdmin
}

// UploadableCollections lists the collections the principal may upload into
func (c *Checker) UploadableCollections(p *models.Principal) []models.CollectionType {
	all := slices.Concat(c.policy.OpenCollections, c.policy.ScopedCollections)
	result := make([]models.CollectionType, 0, len(all))
	for _, collection := range all {
		if c.CanUploadToCollection(p, collection) {
			result = append(result, collection)
		}
	}
	return result
}

// Summary returns the per-asset affordances for the principal
func (c *Checker) Summary(p *models.Principal, asset *models.MediaAsset) models.AssetPermissions {
	return models.AssetPermissions{
		CanView:   c.CanView(p, asset),
		CanEdit:   c.CanEdit(p, asset),
		CanDelete: c.CanDelete(p, asset),
	}
}

// Capabilities returns what the dashboard may offer to the principal
func (c *Checker) Capabilities(p *models.Principal) models.PrincipalCapabilities {
	return models.PrincipalCapabilities{
		Authenticated:       p != nil,
		CanUpload:           c.CanUpload(p),
		CanUploadSvg:        c.CanUploadSvg(p),
		AllowedAccessLevels: c.AllowedAccessLevels(p),
		Collections:         c.UploadableCollections(p),
	}
}

// Require converts a denied decision into a permission error
func Require(allowed bool, action string) error {
	if allowed {
		return nil
	}
	return apperrors.Permission(fmt.Sprintf("You do not have permission to %s", action))
}

func isOwner(p *models.Principal, asset *models.MediaAsset) bool {
	return asset.OwnerID != "" && asset.OwnerID == p.ID && asset.OwnerType.OwnerEditable()
}
