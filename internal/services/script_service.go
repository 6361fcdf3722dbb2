// internal/services/script_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/chetanfram3/fram3-studio-backend/internal/database"
	"github.com/chetanfram3/fram3-studio-backend/internal/models"
	"github.com/chetanfram3/fram3-studio-backend/internal/utils"
)

type ScriptService struct {
	db *gorm.DB
}

type CreateScriptRequest struct {
	Title     string       `json:"title" validate:"required,max=255"`
	Logline   string       `json:"logline"`
	Genre     string       `json:"genre" validate:"max=100"`
	Tags      []string     `json:"tags"`
	BriefData models.JSONB `json:"brief_data"`
}

type UpdateScriptRequest struct {
	Title   string              `json:"title" validate:"omitempty,max=255"`
	Logline string              `json:"logline"`
	Genre   string              `json:"genre" validate:"max=100"`
	Tags    []string            `json:"tags"`
	Status  models.ScriptStatus `json:"status" validate:"omitempty,oneof=draft active archived"`
}

func NewScriptService(db *gorm.DB) *ScriptService {
	return &ScriptService{db: db}
}

func (s *ScriptService) Create(ownerID uuid.UUID, req *CreateScriptRequest) (*models.Script, error) {
	script := &models.Script{
		OwnerID:   ownerID,
		Title:     req.Title,
		Logline:   req.Logline,
		Genre:     req.Genre,
		Status:    models.ScriptStatusDraft,
		Tags:      pq.StringArray(req.Tags),
		BriefData: req.BriefData,
	}

	if err := s.db.Create(script).Error; err != nil {
		return nil, fmt.Errorf("failed to create script: %w", err)
	}

	return script, nil
}

func (s *ScriptService) Get(ownerID, scriptID uuid.UUID) (*models.Script, error) {
	var script models.Script
	if err := s.db.Where("id = ? AND owner_id = ?", scriptID, ownerID).
		Preload("Versions").First(&script).Error; err != nil {
		return nil, fmt.Errorf("script not found: %w", err)
	}
	return &script, nil
}

func (s *ScriptService) List(ownerID uuid.UUID, params utils.PaginationParams) ([]models.Script, int64, error) {
	query := s.db.Model(&models.Script{}).Where("owner_id = ?", ownerID)

	if params.Search != "" {
		like := "%" + params.Search + "%"
		query = query.Where("title ILIKE ? OR logline ILIKE ?", like, like)
	}
	if params.Genre != "" {
		query = query.Where("genre = ?", params.Genre)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count scripts: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "title", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var scripts []models.Script
	if err := query.Find(&scripts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch scripts: %w", err)
	}

	return scripts, total, nil
}

func (s *ScriptService) Update(ownerID, scriptID uuid.UUID, req *UpdateScriptRequest) (*models.Script, error) {
	script, err := s.Get(ownerID, scriptID)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		script.Title = req.Title
	}
	if req.Logline != "" {
		script.Logline = req.Logline
	}
	if req.Genre != "" {
		script.Genre = req.Genre
	}
	if req.Tags != nil {
		script.Tags = pq.StringArray(req.Tags)
	}
	if req.Status != "" {
		script.Status = req.Status
	}

	if err := s.db.Save(script).Error; err != nil {
		return nil, fmt.Errorf("failed to update script: %w", err)
	}

	return script, nil
}

func (s *ScriptService) Delete(ownerID, scriptID uuid.UUID) error {
	result := s.db.Where("id = ? AND owner_id = ?", scriptID, ownerID).
		Delete(&models.Script{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete script: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("script not found")
	}
	return nil
}

// AddVersion appends a generated revision and makes it the current one.
func (s *ScriptService) AddVersion(ownerID, scriptID uuid.UUID, content models.JSONB, modelTier string, creditCost int64) (*models.ScriptVersion, error) {
	script, err := s.Get(ownerID, scriptID)
	if err != nil {
		return nil, err
	}

	var version *models.ScriptVersion
	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Model(&models.ScriptVersion{}).
			Where("script_id = ? AND is_current", script.ID).
			Update("is_current", false).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.ScriptVersion{}).
			Where("script_id = ?", script.ID).Count(&count).Error; err != nil {
			return err
		}

		version = &models.ScriptVersion{
			ScriptID:   script.ID,
			Number:     int(count) + 1,
			Content:    content,
			ModelTier:  modelTier,
			IsCurrent:  true,
			CreditCost: creditCost,
		}
		return tx.Create(version).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add script version: %w", err)
	}

	return version, nil
}
