// internal/models/credit.go
package models

import (
	"github.com/google/uuid"
)

// CreditTransaction is an append-only ledger entry. Credits is signed:
// purchases/refunds/bonuses are positive, consumption is negative.
// BalanceAfter is the balance once this entry applied; Seq is a per-user
// counter assigned under the user row lock, so the highest-seq row is the
// authoritative balance regardless of timestamp collisions.
type CreditTransaction struct {
	BaseModel
	UserID       uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_credit_tx_user_seq"`
	Seq          int64           `json:"seq" gorm:"not null;uniqueIndex:idx_credit_tx_user_seq"`
	EntryType    CreditEntryType `json:"entry_type" gorm:"type:varchar(20);not null;index"`
	Credits      int64           `json:"credits" gorm:"not null"`
	BalanceAfter int64           `json:"balance_after" gorm:"not null"`
	Description  string          `json:"description" gorm:"size:255"`
	OrderID      *uuid.UUID      `json:"order_id,omitempty" gorm:"type:uuid;index"`
	AssetID      *uuid.UUID      `json:"asset_id,omitempty" gorm:"type:uuid;index"`

	// Relationships
	User  User          `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Order *PaymentOrder `json:"order,omitempty" gorm:"foreignKey:OrderID"`
}
