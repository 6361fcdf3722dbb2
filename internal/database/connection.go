// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/chetanfram3/fram3-studio-backend/internal/config"
	"github.com/chetanfram3/fram3-studio-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.User{},
		&models.Script{},
		&models.ScriptVersion{},
		&models.Asset{},
		&models.AssetVersion{},
		&models.CreditTransaction{},
		&models.PaymentOrder{},
		&models.Invoice{},
		&models.ViewPreference{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)",

		// Script indexes
		"CREATE INDEX IF NOT EXISTS idx_scripts_owner_status ON scripts(owner_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_scripts_created_at ON scripts(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_script_versions_script_number ON script_versions(script_id, number)",

		// Asset indexes; version sets are read by identity scope, restores
		// update the current flag per asset.
		"CREATE INDEX IF NOT EXISTS idx_assets_scope ON assets(script_id, script_version_id, asset_type)",
		"CREATE INDEX IF NOT EXISTS idx_assets_owner_kind ON assets(owner_id, media_kind)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_asset_versions_asset_version ON asset_versions(asset_id, version)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_asset_versions_current ON asset_versions(asset_id) WHERE is_current",

		// Ledger and order indexes
		"CREATE INDEX IF NOT EXISTS idx_credit_transactions_user_created ON credit_transactions(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_payment_orders_user_status ON payment_orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_payment_orders_created_at ON payment_orders(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_invoices_user ON invoices(user_id, issued_at DESC)",

		// Full-text search over the script library
		"CREATE INDEX IF NOT EXISTS idx_scripts_search ON scripts USING GIN(to_tsvector('english', title || ' ' || logline))",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// LockForUpdate takes a row lock on dialects that support it. The sqlite
// driver used in tests serializes writes on its own and rejects FOR UPDATE.
func LockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
