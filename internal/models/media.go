package models

import "time"

// AccessLevel represents the visibility tier attached to every media asset
type AccessLevel string

const (
	AccessLevelPublic  AccessLevel = "PUBLIC"
	AccessLevelSelf    AccessLevel = "SELF"
	AccessLevelSupport AccessLevel = "SUPPORT"
	AccessLevelAcademy AccessLevel = "ACADEMY"
)

// AllAccessLevels lists every access level in display order
func AllAccessLevels() []AccessLevel {
	return []AccessLevel{AccessLevelPublic, AccessLevelSelf, AccessLevelSupport, AccessLevelAcademy}
}

// IsValid reports whether the access level is one of the known tiers
func (l AccessLevel) IsValid() bool {
	switch l {
	case AccessLevelPublic, AccessLevelSelf, AccessLevelSupport, AccessLevelAcademy:
		return true
	default:
		return false
	}
}

// CollectionType represents the logical upload destination of a media asset
type CollectionType string

const (
	CollectionAvatar      CollectionType = "avatar"
	CollectionCover       CollectionType = "cover"
	CollectionGallery     CollectionType = "gallery"
	CollectionAttachments CollectionType = "attachments"
	CollectionDocuments   CollectionType = "documents"
	CollectionDefault     CollectionType = "default"
)

// OwnerType represents the kind of account that owns a media asset
type OwnerType string

const (
	OwnerTypeAdmin OwnerType = "ADMIN"
	OwnerTypeUser  OwnerType = "USER"
)

// OwnerEditable reports whether owners of this type may edit and delete their own assets.
// New owner types must be added here explicitly to get owner-editing semantics.
func (t OwnerType) OwnerEditable() bool {
	switch t {
	case OwnerTypeAdmin:
		return true
	default:
		return false
	}
}

// MediaAsset represents a stored file as issued by the media API.
// Size, MimeType, Path and Extension are fixed at creation.
type MediaAsset struct {
	ID               string          `json:"id"`
	UUID             string          `json:"uuid"`
	OriginalFilename string          `json:"originalFilename"`
	Filename         string          `json:"filename"`
	Path             string          `json:"path"`
	URL              string          `json:"url,omitempty"`
	MimeType         string          `json:"mimeType"`
	Extension        string          `json:"extension"`
	Size             int64           `json:"size"`
	Width            *int            `json:"width,omitempty"`
	Height           *int            `json:"height,omitempty"`
	Duration         *float64        `json:"duration,omitempty"`
	AltText          *string         `json:"altText,omitempty"`
	Title            *string         `json:"title,omitempty"`
	Description      *string         `json:"description,omitempty"`
	Metadata         map[string]any  `json:"metadata,omitempty"`
	AccessLevel      AccessLevel     `json:"accessLevel"`
	OwnerID          string          `json:"ownerId"`
	OwnerType        OwnerType       `json:"ownerType"`
	Directory        *string         `json:"directory,omitempty"`
	CollectionName   *CollectionType `json:"collectionName,omitempty"`
	SortOrder        *int            `json:"sortOrder,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// UpdateMediaRequest represents the metadata fields a client may change on an asset
type UpdateMediaRequest struct {
	AltText     *string      `json:"altText,omitempty"`
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	AccessLevel *AccessLevel `json:"accessLevel,omitempty"`
}

// IsEmpty reports whether the request carries no field to update
func (r UpdateMediaRequest) IsEmpty() bool {
	return r.AltText == nil && r.Title == nil && r.Description == nil && r.AccessLevel == nil
}

// MediaFilter represents list query parameters for media assets
type MediaFilter struct {
	Page        int
	Count       int
	Search      string
	MimePrefix  string
	AccessLevel AccessLevel
	Collection  CollectionType
}

// MediaPage represents a page of media assets returned by the media API
type MediaPage struct {
	Items []MediaAsset `json:"items"`
	Total int          `json:"total"`
	Page  int          `json:"page"`
	Count int          `json:"count"`
}

// AssetPermissions represents the actions a principal may take on one asset
type AssetPermissions struct {
	CanView   bool `json:"canView"`
	CanEdit   bool `json:"canEdit"`
	CanDelete bool `json:"canDelete"`
}

// MediaAssetView represents an asset together with its display strings
type MediaAssetView struct {
	MediaAsset
	SizeLabel string `json:"sizeLabel"`
	Icon      string `json:"icon"`
	TypeLabel string `json:"typeLabel"`
}
