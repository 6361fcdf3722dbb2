// internal/services/asset_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chetanfram3/fram3-studio-backend/internal/database"
	"github.com/chetanfram3/fram3-studio-backend/internal/metrics"
	"github.com/chetanfram3/fram3-studio-backend/internal/models"
	"github.com/chetanfram3/fram3-studio-backend/internal/utils"
)

// MissingScopeError is returned when an identity variant lacks a field it
// declares required. It fires before any store access so a malformed lookup
// never reaches the database.
type MissingScopeError struct {
	AssetType models.AssetType
	Field     string
}

func (e *MissingScopeError) Error() string {
	return fmt.Sprintf("asset identity %q is missing required field %q", e.AssetType, e.Field)
}

// AssetIdentity is the discriminated lookup key for a version set. Which
// fields are required depends on Type; Validate is the single place that
// knows the variants, so a new asset type is one exhaustive-switch change.
type AssetIdentity struct {
	Type      models.AssetType `json:"type"`
	MediaKind models.MediaKind `json:"media_kind"`

	ScriptID        *uuid.UUID `json:"script_id,omitempty"`
	ScriptVersionID *uuid.UUID `json:"script_version_id,omitempty"`

	SceneID           *int64 `json:"scene_id,omitempty"`
	ShotID            *int64 `json:"shot_id,omitempty"`
	ActorID           *int64 `json:"actor_id,omitempty"`
	ActorVersionID    *int64 `json:"actor_version_id,omitempty"`
	LocationID        *int64 `json:"location_id,omitempty"`
	LocationVersionID *int64 `json:"location_version_id,omitempty"`
	PromptType        string `json:"prompt_type,omitempty"`
}

// Validate checks the active variant's required fields. Standalone assets
// carry no script-version scope; every other variant requires it.
func (id *AssetIdentity) Validate() error {
	missing := func(field string) error {
		return &MissingScopeError{AssetType: id.Type, Field: field}
	}

	// The discriminant is checked before any field so an unknown type is
	// never misreported as a missing scope.
	switch id.Type {
	case models.AssetTypeShots, models.AssetTypeActor, models.AssetTypeLocation,
		models.AssetTypeKeyVisual, models.AssetTypeStandalone:
	default:
		return fmt.Errorf("unknown asset type %q", id.Type)
	}

	if id.Type != models.AssetTypeStandalone {
		if id.ScriptID == nil {
			return missing("scriptId")
		}
		if id.ScriptVersionID == nil {
			return missing("versionId")
		}
	}

	switch id.Type {
	case models.AssetTypeShots:
		if id.SceneID == nil {
			return missing("sceneId")
		}
		if id.ShotID == nil {
			return missing("shotId")
		}
	case models.AssetTypeActor:
		if id.ActorID == nil {
			return missing("actorId")
		}
		if id.ActorVersionID == nil {
			return missing("actorVersionId")
		}
	case models.AssetTypeLocation:
		if id.LocationID == nil {
			return missing("locationId")
		}
		if id.LocationVersionID == nil {
			return missing("locationVersionId")
		}
		if id.PromptType == "" {
			return missing("promptType")
		}
	}

	return nil
}

// VersionView is one resolved record handed to viewers: the stored row plus
// its freshly signed access URL.
type VersionView struct {
	Version       int          `json:"version"`
	SignedURL     string       `json:"signedUrl"`
	ThumbnailPath string       `json:"thumbnailPath"`
	IsCurrent     bool         `json:"isCurrent"`
	LastEditedAt  *time.Time   `json:"lastEditedAt"`
	Generation    models.JSONB `json:"generation,omitempty"`
}

// CompleteVersionData is the full payload for an asset's version history.
type CompleteVersionData struct {
	AssetID        uuid.UUID        `json:"assetId"`
	AssetType      models.AssetType `json:"assetType"`
	MediaKind      models.MediaKind `json:"mediaKind"`
	CurrentVersion int              `json:"currentVersion"`
	TotalVersions  int              `json:"totalVersions"`
	EditCount      int              `json:"editCount"`
	Versions       []VersionView    `json:"versions"`
}

type AppendVersionRequest struct {
	StorageKey    string       `json:"storage_key" validate:"required"`
	ThumbnailPath string       `json:"thumbnail_path"`
	Generation    models.JSONB `json:"generation"`
	CreditCost    int64        `json:"credit_cost" validate:"min=0"`
}

type AssetService struct {
	db      *gorm.DB
	storage *StorageService
	credits *CreditService
}

func NewAssetService(db *gorm.DB, storage *StorageService, credits *CreditService) *AssetService {
	return &AssetService{db: db, storage: storage, credits: credits}
}

// identityQuery translates the validated identity into the scoped lookup.
func (s *AssetService) identityQuery(ownerID uuid.UUID, id *AssetIdentity) *gorm.DB {
	q := s.db.Model(&models.Asset{}).
		Where("owner_id = ? AND asset_type = ? AND media_kind = ?", ownerID, id.Type, id.MediaKind)

	if id.Type != models.AssetTypeStandalone {
		q = q.Where("script_id = ? AND script_version_id = ?", id.ScriptID, id.ScriptVersionID)
	}

	switch id.Type {
	case models.AssetTypeShots:
		q = q.Where("scene_id = ? AND shot_id = ?", id.SceneID, id.ShotID)
	case models.AssetTypeActor:
		q = q.Where("actor_id = ? AND actor_version_id = ?", id.ActorID, id.ActorVersionID)
	case models.AssetTypeLocation:
		q = q.Where("location_id = ? AND location_version_id = ? AND prompt_type = ?",
			id.LocationID, id.LocationVersionID, id.PromptType)
	}

	return q
}

// FindAsset resolves an identity to its asset row.
func (s *AssetService) FindAsset(ownerID uuid.UUID, id *AssetIdentity) (*models.Asset, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var asset models.Asset
	if err := s.identityQuery(ownerID, id).First(&asset).Error; err != nil {
		return nil, fmt.Errorf("asset not found: %w", err)
	}
	return &asset, nil
}

// CreateAsset registers a new logical asset with its first version.
func (s *AssetService) CreateAsset(ctx context.Context, ownerID uuid.UUID, id *AssetIdentity, req *AppendVersionRequest) (*models.Asset, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	asset := &models.Asset{
		AssetType:         id.Type,
		MediaKind:         id.MediaKind,
		OwnerID:           ownerID,
		ScriptID:          id.ScriptID,
		ScriptVersionID:   id.ScriptVersionID,
		SceneID:           id.SceneID,
		ShotID:            id.ShotID,
		ActorID:           id.ActorID,
		ActorVersionID:    id.ActorVersionID,
		LocationID:        id.LocationID,
		LocationVersionID: id.LocationVersionID,
		PromptType:        id.PromptType,
	}
	asset.ID = uuid.New()

	// Credits are reserved before anything lands, same as AppendVersion; a
	// shortfall leaves no asset behind.
	if req.CreditCost > 0 {
		if _, err := s.credits.Consume(ctx, ownerID, req.CreditCost,
			fmt.Sprintf("%s generation", id.Type), &asset.ID); err != nil {
			return nil, err
		}
	}

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Create(asset).Error; err != nil {
			return fmt.Errorf("failed to create asset: %w", err)
		}
		return s.appendVersionTx(tx, asset, req)
	})
	if err != nil {
		return nil, err
	}

	return asset, nil
}

// AppendVersion adds a generated/edited revision and makes it current.
// Version and edit counters only ever grow.
func (s *AssetService) AppendVersion(ctx context.Context, ownerID uuid.UUID, id *AssetIdentity, req *AppendVersionRequest) (*models.Asset, error) {
	asset, err := s.FindAsset(ownerID, id)
	if err != nil {
		return nil, err
	}

	// Credits are reserved before the version lands; a shortfall surfaces
	// as the distinguished insufficient-credits failure.
	if req.CreditCost > 0 {
		if _, err := s.credits.Consume(ctx, ownerID, req.CreditCost,
			fmt.Sprintf("%s edit", id.Type), &asset.ID); err != nil {
			return nil, err
		}
	}

	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).
			First(asset, asset.ID).Error; err != nil {
			return err
		}
		return s.appendVersionTx(tx, asset, req)
	})
	if err != nil {
		return nil, err
	}

	return asset, nil
}

func (s *AssetService) appendVersionTx(tx *gorm.DB, asset *models.Asset, req *AppendVersionRequest) error {
	if err := tx.Model(&models.AssetVersion{}).
		Where("asset_id = ? AND is_current", asset.ID).
		Update("is_current", false).Error; err != nil {
		return fmt.Errorf("failed to clear current version: %w", err)
	}

	now := time.Now()
	version := &models.AssetVersion{
		AssetID:       asset.ID,
		Version:       asset.VersionCount + 1,
		StorageKey:    req.StorageKey,
		ThumbnailPath: req.ThumbnailPath,
		IsCurrent:     true,
		LastEditedAt:  &now,
		Generation:    req.Generation,
		CreditCost:    req.CreditCost,
	}
	if err := tx.Create(version).Error; err != nil {
		return fmt.Errorf("failed to create version: %w", err)
	}

	asset.VersionCount++
	asset.EditCount++
	asset.CurrentVersion = version.Version
	return tx.Model(asset).Updates(map[string]interface{}{
		"version_count":   asset.VersionCount,
		"edit_count":      asset.EditCount,
		"current_version": asset.CurrentVersion,
	}).Error
}

// GetCompleteData resolves an identity into its full version history with
// signed URLs for every record.
func (s *AssetService) GetCompleteData(ownerID uuid.UUID, id *AssetIdentity) (*CompleteVersionData, error) {
	asset, err := s.FindAsset(ownerID, id)
	if err != nil {
		return nil, err
	}

	var versions []models.AssetVersion
	if err := s.db.Where("asset_id = ?", asset.ID).
		Order("version ASC").Find(&versions).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch versions: %w", err)
	}

	data := &CompleteVersionData{
		AssetID:        asset.ID,
		AssetType:      asset.AssetType,
		MediaKind:      asset.MediaKind,
		CurrentVersion: asset.CurrentVersion,
		TotalVersions:  asset.VersionCount,
		EditCount:      asset.EditCount,
		Versions:       make([]VersionView, 0, len(versions)),
	}

	for _, v := range versions {
		signed, err := s.storage.SignURL(v.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("failed to sign version %d: %w", v.Version, err)
		}
		data.Versions = append(data.Versions, VersionView{
			Version:       v.Version,
			SignedURL:     signed,
			ThumbnailPath: s.storage.PublicURL(v.ThumbnailPath),
			IsCurrent:     v.IsCurrent,
			LastEditedAt:  v.LastEditedAt,
			Generation:    v.Generation,
		})
	}

	return data, nil
}

// RestoreVersion re-points the current flag to a prior version. History rows
// are untouched; after commit exactly one record is current and it is the
// target. Concurrent restores on one asset serialize on the row lock with
// last-write-wins.
func (s *AssetService) RestoreVersion(ownerID uuid.UUID, id *AssetIdentity, targetVersion int) (*CompleteVersionData, error) {
	if targetVersion < 1 {
		return nil, errors.New("target version must be positive")
	}

	asset, err := s.FindAsset(ownerID, id)
	if err != nil {
		return nil, err
	}

	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).
			First(asset, asset.ID).Error; err != nil {
			return err
		}

		var target models.AssetVersion
		if err := tx.Where("asset_id = ? AND version = ?", asset.ID, targetVersion).
			First(&target).Error; err != nil {
			return fmt.Errorf("version %d not found: %w", targetVersion, err)
		}

		if err := tx.Model(&models.AssetVersion{}).
			Where("asset_id = ? AND is_current", asset.ID).
			Update("is_current", false).Error; err != nil {
			return fmt.Errorf("failed to clear current version: %w", err)
		}

		if err := tx.Model(&target).Update("is_current", true).Error; err != nil {
			return fmt.Errorf("failed to set current version: %w", err)
		}

		asset.CurrentVersion = targetVersion
		asset.EditCount++
		return tx.Model(asset).Updates(map[string]interface{}{
			"current_version": targetVersion,
			"edit_count":      asset.EditCount,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.AssetRestores.Inc()
	return s.GetCompleteData(ownerID, id)
}

// ListAssets pages through a user's assets, optionally filtered by media kind.
func (s *AssetService) ListAssets(ownerID uuid.UUID, kind models.MediaKind, params utils.PaginationParams) ([]models.Asset, int64, error) {
	query := s.db.Model(&models.Asset{}).Where("owner_id = ?", ownerID)
	if kind != "" {
		query = query.Where("media_kind = ?", kind)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count assets: %w", err)
	}

	allowedSortFields := []string{"created_at", "asset_type", "edit_count"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var assets []models.Asset
	if err := query.Find(&assets).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch assets: %w", err)
	}

	return assets, total, nil
}
