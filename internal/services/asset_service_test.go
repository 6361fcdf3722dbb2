// internal/services/asset_service_test.go
package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/chetanfram3/fram3-studio-backend/internal/models"
)

func i64(v int64) *int64 { return &v }

func uuidPtr(v uuid.UUID) *uuid.UUID { return &v }

func newAssetFixture(t *testing.T) (*AssetService, *CreditService, *gorm.DB, *models.User) {
	t.Helper()

	db := newTestDB(t)
	cfg := newTestConfig()

	storage, err := NewStorageService(cfg)
	require.NoError(t, err)

	credits := NewCreditService(db, noCache())
	svc := NewAssetService(db, storage, credits)
	user := createTestUser(t, db, "KA", "IN", "")

	_, err = credits.Apply(context.Background(), user.ID, models.CreditEntryBonus, 1000, "test grant", nil, nil)
	require.NoError(t, err)

	return svc, credits, db, user
}

func shotsTestIdentity() *AssetIdentity {
	return &AssetIdentity{
		Type:            models.AssetTypeShots,
		MediaKind:       models.MediaKindImage,
		ScriptID:        uuidPtr(uuid.New()),
		ScriptVersionID: uuidPtr(uuid.New()),
		SceneID:         i64(3),
		ShotID:          i64(12),
	}
}

func TestAssetIdentity_ValidateVariants(t *testing.T) {
	scriptID := uuidPtr(uuid.New())
	versionID := uuidPtr(uuid.New())

	tests := []struct {
		name    string
		id      AssetIdentity
		missing string
	}{
		{
			name:    "shots without shot",
			id:      AssetIdentity{Type: models.AssetTypeShots, MediaKind: models.MediaKindImage, ScriptID: scriptID, ScriptVersionID: versionID, SceneID: i64(1)},
			missing: "shotId",
		},
		{
			name:    "actor without actor version",
			id:      AssetIdentity{Type: models.AssetTypeActor, MediaKind: models.MediaKindImage, ScriptID: scriptID, ScriptVersionID: versionID, ActorID: i64(2)},
			missing: "actorVersionId",
		},
		{
			name:    "location without prompt type",
			id:      AssetIdentity{Type: models.AssetTypeLocation, MediaKind: models.MediaKindImage, ScriptID: scriptID, ScriptVersionID: versionID, LocationID: i64(4), LocationVersionID: i64(1)},
			missing: "promptType",
		},
		{
			name:    "key visual without script scope",
			id:      AssetIdentity{Type: models.AssetTypeKeyVisual, MediaKind: models.MediaKindImage},
			missing: "scriptId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.id.Validate()
			require.Error(t, err)

			var scopeErr *MissingScopeError
			require.ErrorAs(t, err, &scopeErr)
			assert.Equal(t, tt.missing, scopeErr.Field)
		})
	}

	standalone := AssetIdentity{Type: models.AssetTypeStandalone, MediaKind: models.MediaKindAudio}
	assert.NoError(t, standalone.Validate())
}

func TestAssetService_CreateAndAppend(t *testing.T) {
	svc, credits, _, user := newAssetFixture(t)
	ctx := context.Background()
	id := shotsTestIdentity()

	asset, err := svc.CreateAsset(ctx, user.ID, id, &AppendVersionRequest{
		StorageKey: "shots/v1.png",
		CreditCost: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, asset.CurrentVersion)
	assert.Equal(t, 1, asset.VersionCount)

	asset, err = svc.AppendVersion(ctx, user.ID, id, &AppendVersionRequest{
		StorageKey: "shots/v2.png",
		CreditCost: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, asset.CurrentVersion)
	assert.Equal(t, 2, asset.VersionCount)
	assert.Equal(t, 2, asset.EditCount)

	balance, err := credits.GetBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 980, balance)

	data, err := svc.GetCompleteData(user.ID, id)
	require.NoError(t, err)
	assert.Equal(t, 2, data.CurrentVersion)
	assert.Equal(t, 2, data.TotalVersions)
	require.Len(t, data.Versions, 2)

	for _, v := range data.Versions {
		assert.NotEmpty(t, v.SignedURL)
	}
	assert.False(t, data.Versions[0].IsCurrent)
	assert.True(t, data.Versions[1].IsCurrent)
}

func TestAssetService_UnknownTypeIsNotAMissingScope(t *testing.T) {
	id := AssetIdentity{Type: models.AssetType("hologram"), MediaKind: models.MediaKindImage}

	err := id.Validate()
	require.Error(t, err)

	var scopeErr *MissingScopeError
	assert.False(t, errors.As(err, &scopeErr))
	assert.Contains(t, err.Error(), "unknown asset type")
}

func TestAssetService_CreateBlockedWithoutCredits(t *testing.T) {
	svc, credits, db, user := newAssetFixture(t)
	ctx := context.Background()

	balance, err := credits.GetBalance(ctx, user.ID)
	require.NoError(t, err)
	_, err = credits.Consume(ctx, user.ID, balance, "drain", nil)
	require.NoError(t, err)

	_, err = svc.CreateAsset(ctx, user.ID, shotsTestIdentity(), &AppendVersionRequest{
		StorageKey: "shots/v1.png",
		CreditCost: 10,
	})
	var shortfall *InsufficientCreditsError
	require.ErrorAs(t, err, &shortfall)

	// The rejected generation left nothing behind.
	var assetCount, versionCount int64
	require.NoError(t, db.Model(&models.Asset{}).Count(&assetCount).Error)
	require.NoError(t, db.Model(&models.AssetVersion{}).Count(&versionCount).Error)
	assert.EqualValues(t, 0, assetCount)
	assert.EqualValues(t, 0, versionCount)
}

func TestAssetService_AppendBlockedWithoutCredits(t *testing.T) {
	svc, credits, db, user := newAssetFixture(t)
	ctx := context.Background()
	id := shotsTestIdentity()

	asset, err := svc.CreateAsset(ctx, user.ID, id, &AppendVersionRequest{
		StorageKey: "shots/v1.png",
	})
	require.NoError(t, err)

	// Drain the balance, then try a paid edit.
	balance, err := credits.GetBalance(ctx, user.ID)
	require.NoError(t, err)
	_, err = credits.Consume(ctx, user.ID, balance, "drain", nil)
	require.NoError(t, err)

	_, err = svc.AppendVersion(ctx, user.ID, id, &AppendVersionRequest{
		StorageKey: "shots/v2.png",
		CreditCost: 5,
	})
	var shortfall *InsufficientCreditsError
	require.ErrorAs(t, err, &shortfall)

	// No version landed.
	var count int64
	require.NoError(t, db.Model(&models.AssetVersion{}).
		Where("asset_id = ?", asset.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAssetService_RestoreVersion(t *testing.T) {
	svc, _, db, user := newAssetFixture(t)
	ctx := context.Background()
	id := shotsTestIdentity()

	_, err := svc.CreateAsset(ctx, user.ID, id, &AppendVersionRequest{StorageKey: "shots/v1.png"})
	require.NoError(t, err)
	for v := 2; v <= 3; v++ {
		_, err = svc.AppendVersion(ctx, user.ID, id, &AppendVersionRequest{
			StorageKey: fmt.Sprintf("shots/v%d.png", v),
		})
		require.NoError(t, err)
	}

	before, err := svc.FindAsset(user.ID, id)
	require.NoError(t, err)

	data, err := svc.RestoreVersion(user.ID, id, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, data.CurrentVersion)
	assert.Equal(t, 3, data.TotalVersions, "history is never truncated by a restore")
	assert.Equal(t, before.EditCount+1, data.EditCount)

	currentCount := 0
	for _, v := range data.Versions {
		if v.IsCurrent {
			currentCount++
			assert.Equal(t, 1, v.Version)
		}
	}
	assert.Equal(t, 1, currentCount, "exactly one current version after restore")

	// The flag moved in storage too, not just in the response.
	var current models.AssetVersion
	require.NoError(t, db.Where("asset_id = ? AND is_current", before.ID).First(&current).Error)
	assert.Equal(t, 1, current.Version)
}

func TestAssetService_RestoreUnknownVersion(t *testing.T) {
	svc, _, _, user := newAssetFixture(t)
	id := shotsTestIdentity()

	_, err := svc.CreateAsset(context.Background(), user.ID, id, &AppendVersionRequest{StorageKey: "shots/v1.png"})
	require.NoError(t, err)

	_, err = svc.RestoreVersion(user.ID, id, 7)
	assert.Error(t, err)

	_, err = svc.RestoreVersion(user.ID, id, 0)
	assert.Error(t, err)
}

func TestAssetService_IdentityScopesLookups(t *testing.T) {
	svc, _, _, user := newAssetFixture(t)
	ctx := context.Background()

	first := shotsTestIdentity()
	second := shotsTestIdentity()
	second.ScriptID = first.ScriptID
	second.ScriptVersionID = first.ScriptVersionID
	second.ShotID = i64(13)

	_, err := svc.CreateAsset(ctx, user.ID, first, &AppendVersionRequest{StorageKey: "shots/a.png"})
	require.NoError(t, err)
	_, err = svc.CreateAsset(ctx, user.ID, second, &AppendVersionRequest{StorageKey: "shots/b.png"})
	require.NoError(t, err)

	a, err := svc.FindAsset(user.ID, first)
	require.NoError(t, err)
	b, err := svc.FindAsset(user.ID, second)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	// Another user never sees either asset.
	stranger := createTestUser(t, svc.db, "MH", "IN", "")
	_, err = svc.FindAsset(stranger.ID, first)
	assert.Error(t, err)
}
