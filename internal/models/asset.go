// internal/models/asset.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Asset anchors one logical image/audio asset and its version history. The
// identity columns mirror the AssetIdentity variants: only the fields the
// active variant declares are populated, the rest stay NULL.
type Asset struct {
	BaseModel
	AssetType AssetType `json:"asset_type" gorm:"type:varchar(20);not null;index"`
	MediaKind MediaKind `json:"media_kind" gorm:"type:varchar(10);not null;index"`
	OwnerID   uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`

	// Version scope. Nil for standalone assets, required for everything else.
	ScriptID        *uuid.UUID `json:"script_id,omitempty" gorm:"type:uuid;index"`
	ScriptVersionID *uuid.UUID `json:"script_version_id,omitempty" gorm:"type:uuid;index"`

	// Variant-specific identity fields.
	SceneID           *int64 `json:"scene_id,omitempty" gorm:"index"`
	ShotID            *int64 `json:"shot_id,omitempty"`
	ActorID           *int64 `json:"actor_id,omitempty"`
	ActorVersionID    *int64 `json:"actor_version_id,omitempty"`
	LocationID        *int64 `json:"location_id,omitempty"`
	LocationVersionID *int64 `json:"location_version_id,omitempty"`
	PromptType        string `json:"prompt_type,omitempty" gorm:"size:50"`

	// CurrentVersion is the version number the restore operation re-points.
	// VersionCount and EditCount only ever grow.
	CurrentVersion int `json:"current_version" gorm:"default:0"`
	VersionCount   int `json:"version_count" gorm:"default:0"`
	EditCount      int `json:"edit_count" gorm:"default:0"`

	// Relationships
	Owner    User           `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Versions []AssetVersion `json:"versions,omitempty" gorm:"foreignKey:AssetID"`
}

// AssetVersion is one stored revision of an asset. Exactly one row per asset
// has IsCurrent set; restore moves the flag without touching history.
type AssetVersion struct {
	BaseModel
	AssetID       uuid.UUID  `json:"asset_id" gorm:"type:uuid;not null;index:idx_asset_versions_asset"`
	Version       int        `json:"version" gorm:"not null"`
	StorageKey    string     `json:"storage_key" gorm:"size:512;not null"`
	ThumbnailPath string     `json:"thumbnail_path" gorm:"size:512"`
	IsCurrent     bool       `json:"is_current" gorm:"default:false;index"`
	LastEditedAt  *time.Time `json:"last_edited_at"`

	// Generation metadata (model tier, seed, prompt hash, ...). Kept as a
	// blob so newer pipeline fields survive round trips untouched.
	Generation JSONB `json:"generation" gorm:"type:jsonb"`

	CreditCost int64 `json:"credit_cost" gorm:"default:0"`

	// Relationships
	Asset Asset `json:"asset,omitempty" gorm:"foreignKey:AssetID"`
}
