// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns the ID application-side. No column default is declared
// so the schema migrates on every dialect, including the sqlite test driver.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"
)

type ScriptStatus string

const (
	ScriptStatusDraft    ScriptStatus = "draft"
	ScriptStatusActive   ScriptStatus = "active"
	ScriptStatusArchived ScriptStatus = "archived"
)

// AssetType discriminates the identity variants an image/audio asset can be
// scoped under. Each variant requires a different subset of identifying
// fields; see AssetIdentity.Validate.
type AssetType string

const (
	AssetTypeShots      AssetType = "shots"
	AssetTypeActor      AssetType = "actor"
	AssetTypeLocation   AssetType = "location"
	AssetTypeKeyVisual  AssetType = "keyVisual"
	AssetTypeStandalone AssetType = "standalone"
)

type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindAudio MediaKind = "audio"
)

// TaxType is the GST split applied to an order. CGST+SGST for intrastate
// sales, IGST for interstate or unknown-location customers.
type TaxType string

const (
	TaxTypeCGSTSGST TaxType = "CGST+SGST"
	TaxTypeIGST     TaxType = "IGST"
)

type CustomerType string

const (
	CustomerTypeB2B CustomerType = "B2B"
	CustomerTypeB2C CustomerType = "B2C"
)

type CreditEntryType string

const (
	CreditEntryPurchase    CreditEntryType = "purchase"
	CreditEntryConsumption CreditEntryType = "consumption"
	CreditEntryRefund      CreditEntryType = "refund"
	CreditEntryBonus       CreditEntryType = "bonus"
)

type OrderStatus string

const (
	OrderStatusCreated    OrderStatus = "created"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusFailed     OrderStatus = "failed"
)
