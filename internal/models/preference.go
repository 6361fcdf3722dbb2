// internal/models/preference.go
package models

import (
	"github.com/google/uuid"
)

// ViewPreference persists a user's dashboard grid/sort/filter blob plus the
// separately tracked current page. Writes are best-effort last-write-wins;
// two concurrent sessions may race and the later write stands.
type ViewPreference struct {
	BaseModel
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_view_prefs_user_key"`
	Namespace   string    `json:"namespace" gorm:"size:64;not null;uniqueIndex:idx_view_prefs_user_key"`
	Prefs       JSONB     `json:"prefs" gorm:"type:jsonb"`
	CurrentPage int       `json:"current_page" gorm:"default:1"`
}
