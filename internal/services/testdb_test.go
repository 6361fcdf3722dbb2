// internal/services/testdb_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chetanfram3/fram3-studio-backend/internal/cache"
	"github.com/chetanfram3/fram3-studio-backend/internal/config"
	"github.com/chetanfram3/fram3-studio-backend/internal/models"
	"github.com/chetanfram3/fram3-studio-backend/internal/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// One connection keeps every session on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Asset{},
		&models.AssetVersion{},
		&models.CreditTransaction{},
		&models.PaymentOrder{},
		&models.Invoice{},
		&models.ViewPreference{},
	))

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Server:      config.ServerConfig{Port: "8080"},
		Payment: config.PaymentConfig{
			RazorpayKeyID:     "rzp_test_key",
			RazorpayKeySecret: "rzp_test_secret",
			Currency:          "INR",
		},
		Billing: config.BillingConfig{
			PricePerCreditPaise: 9,
			MinCredits:          100,
			MaxCredits:          100000,
			GSTRatePercent:      18.0,
			SellerStateCode:     "KA",
			SellerCountryCode:   "IN",
		},
	}
}

// noCache builds a disabled cache so services run without Redis.
func noCache() *cache.Cache {
	return cache.New(config.RedisConfig{})
}

func paginationDefaults() utils.PaginationParams {
	return utils.PaginationParams{Page: 1, Limit: 20, Sort: "created_at", Order: "desc"}
}

func createTestUser(t *testing.T, db *gorm.DB, stateCode, countryCode, gstin string) *models.User {
	t.Helper()

	user := &models.User{
		Username:    "tester-" + stateCode + gstin,
		Email:       "tester-" + stateCode + gstin + "@example.com",
		Status:      models.UserStatusActive,
		StateCode:   stateCode,
		CountryCode: countryCode,
		GSTIN:       gstin,
	}
	require.NoError(t, user.SetPassword("correct-horse"))
	require.NoError(t, db.Create(user).Error)
	return user
}
