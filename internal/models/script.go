// internal/models/script.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Script is a creative project in the library: a container for generated
// versions, scenes/shots and their image/audio assets.
type Script struct {
	BaseModel
	OwnerID     uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null;index"`
	Title       string         `json:"title" gorm:"size:255;not null"`
	Logline     string         `json:"logline" gorm:"type:text"`
	Genre       string         `json:"genre" gorm:"size:100;index"`
	Status      ScriptStatus   `json:"status" gorm:"type:varchar(20);default:'draft';index"`
	Tags        pq.StringArray `json:"tags" gorm:"type:text[]"`
	BriefData   JSONB          `json:"brief_data" gorm:"type:jsonb"`
	ThumbnailAt string         `json:"thumbnail_at" gorm:"size:512"`
	ViewCount   int64          `json:"view_count" gorm:"default:0"`

	// Relationships
	Owner    User            `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Versions []ScriptVersion `json:"versions,omitempty" gorm:"foreignKey:ScriptID"`
}

// ScriptVersion is one generated revision of a script. Assets produced for a
// script are scoped to a specific version except for standalone assets.
type ScriptVersion struct {
	BaseModel
	ScriptID   uuid.UUID `json:"script_id" gorm:"type:uuid;not null;index"`
	Number     int       `json:"number" gorm:"not null"`
	Content    JSONB     `json:"content" gorm:"type:jsonb"`
	ModelTier  string    `json:"model_tier" gorm:"size:50"`
	IsCurrent  bool      `json:"is_current" gorm:"default:false;index"`
	CreditCost int64     `json:"credit_cost" gorm:"default:0"`

	// Relationships
	Script Script `json:"script,omitempty" gorm:"foreignKey:ScriptID"`
}
