// internal/services/preference_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chetanfram3/fram3-studio-backend/internal/models"
)

func TestPreferenceService_AbsentMeansDefaults(t *testing.T) {
	db := newTestDB(t)
	svc := NewPreferenceService(db)
	user := createTestUser(t, db, "KA", "IN", "")

	pref, err := svc.Get(user.ID, PrefNamespaceLibraryGrid)
	require.NoError(t, err)
	assert.Equal(t, 1, pref.CurrentPage)
	assert.Nil(t, pref.Prefs)
}

func TestPreferenceService_SaveIsLastWriteWins(t *testing.T) {
	db := newTestDB(t)
	svc := NewPreferenceService(db)
	user := createTestUser(t, db, "KA", "IN", "")

	_, err := svc.Save(user.ID, &SavePreferenceRequest{
		Namespace:   PrefNamespaceLibraryGrid,
		Prefs:       models.JSONB{"view": "grid", "sort": "newest"},
		CurrentPage: 2,
	})
	require.NoError(t, err)

	_, err = svc.Save(user.ID, &SavePreferenceRequest{
		Namespace:   PrefNamespaceLibraryGrid,
		Prefs:       models.JSONB{"view": "list"},
		CurrentPage: 5,
	})
	require.NoError(t, err)

	pref, err := svc.Get(user.ID, PrefNamespaceLibraryGrid)
	require.NoError(t, err)
	assert.Equal(t, 5, pref.CurrentPage)
	assert.Equal(t, "list", pref.Prefs["view"])

	// One row per user+namespace, not one per save.
	var count int64
	require.NoError(t, db.Model(&models.ViewPreference{}).
		Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestPreferenceService_NamespacesAreIndependent(t *testing.T) {
	db := newTestDB(t)
	svc := NewPreferenceService(db)
	user := createTestUser(t, db, "KA", "IN", "")

	_, err := svc.Save(user.ID, &SavePreferenceRequest{
		Namespace:   PrefNamespaceLibraryGrid,
		CurrentPage: 3,
	})
	require.NoError(t, err)

	viewer, err := svc.Get(user.ID, PrefNamespaceAssetViewer)
	require.NoError(t, err)
	assert.Equal(t, 1, viewer.CurrentPage)
}
