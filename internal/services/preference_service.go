// internal/services/preference_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chetanfram3/fram3-studio-backend/internal/models"
)

// Fixed preference namespaces mirroring the dashboard's storage keys.
const (
	PrefNamespaceLibraryGrid = "library.grid"
	PrefNamespaceAssetViewer = "asset.viewer"
)

// PreferenceService persists per-user view preferences. Saves are
// last-write-wins across sessions; callers treat failures as best-effort
// (logged, never surfaced).
type PreferenceService struct {
	db *gorm.DB
}

type SavePreferenceRequest struct {
	Namespace   string       `json:"namespace" validate:"required,max=64"`
	Prefs       models.JSONB `json:"prefs"`
	CurrentPage int          `json:"current_page" validate:"min=1"`
}

func NewPreferenceService(db *gorm.DB) *PreferenceService {
	return &PreferenceService{db: db}
}

func (s *PreferenceService) Get(userID uuid.UUID, namespace string) (*models.ViewPreference, error) {
	var pref models.ViewPreference
	err := s.db.Where("user_id = ? AND namespace = ?", userID, namespace).First(&pref).Error
	if err == gorm.ErrRecordNotFound {
		// Absent preferences are defaults, not an error.
		return &models.ViewPreference{
			UserID:      userID,
			Namespace:   namespace,
			CurrentPage: 1,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	return &pref, nil
}

func (s *PreferenceService) Save(userID uuid.UUID, req *SavePreferenceRequest) (*models.ViewPreference, error) {
	pref := &models.ViewPreference{
		UserID:      userID,
		Namespace:   req.Namespace,
		Prefs:       req.Prefs,
		CurrentPage: req.CurrentPage,
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "namespace"}},
		DoUpdates: clause.AssignmentColumns([]string{"prefs", "current_page", "updated_at"}),
	}).Create(pref).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}

	return pref, nil
}
