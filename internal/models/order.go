// internal/models/order.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentOrder is one credit-purchase checkout session. All monetary fields
// are int64 paise; TotalPaise is always exactly BasePaise - SavingsPaise +
// GSTPaise, and that is the amount handed to Razorpay.
type PaymentOrder struct {
	BaseModel
	UserID          uuid.UUID    `json:"user_id" gorm:"type:uuid;not null;index"`
	Credits         int64        `json:"credits" gorm:"not null"`
	TierName        string       `json:"tier_name" gorm:"size:50"`
	BasePaise       int64        `json:"base_paise" gorm:"not null"`
	DiscountPercent float64      `json:"discount_percent" gorm:"type:decimal(5,2);default:0"`
	SavingsPaise    int64        `json:"savings_paise" gorm:"default:0"`
	GSTPaise        int64        `json:"gst_paise" gorm:"not null"`
	TotalPaise      int64        `json:"total_paise" gorm:"not null"`
	Currency        string       `json:"currency" gorm:"size:8;default:'INR'"`
	TaxType         TaxType      `json:"tax_type" gorm:"type:varchar(12)"`
	CustomerType    CustomerType `json:"customer_type" gorm:"type:varchar(4)"`
	TaxSnapshot     JSONB        `json:"tax_snapshot" gorm:"type:jsonb"`

	ProviderOrderID   string      `json:"provider_order_id" gorm:"size:64;uniqueIndex"`
	ProviderPaymentID string      `json:"provider_payment_id" gorm:"size:64"`
	Status            OrderStatus `json:"status" gorm:"type:varchar(20);default:'created';index"`
	FailureReason     string      `json:"failure_reason,omitempty" gorm:"size:255"`
	PaidAt            *time.Time  `json:"paid_at"`

	// Relationships
	User    User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Invoice *Invoice `json:"invoice,omitempty" gorm:"foreignKey:OrderID"`
}

// CanTransitionTo enforces the checkout state machine:
// created -> processing -> {paid, failed}, failed -> created for retry,
// paid terminal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusCreated:
		return next == OrderStatusProcessing
	case OrderStatusProcessing:
		return next == OrderStatusPaid || next == OrderStatusFailed
	case OrderStatusFailed:
		return next == OrderStatusCreated
	case OrderStatusPaid:
		return false
	default:
		return false
	}
}

// Invoice is the immutable billing record written once an order reaches paid.
type Invoice struct {
	BaseModel
	OrderID     uuid.UUID `json:"order_id" gorm:"type:uuid;not null;uniqueIndex"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Number      string    `json:"number" gorm:"size:32;uniqueIndex;not null"`
	BasePaise   int64     `json:"base_paise" gorm:"not null"`
	GSTPaise    int64     `json:"gst_paise" gorm:"not null"`
	TotalPaise  int64     `json:"total_paise" gorm:"not null"`
	TaxType     TaxType   `json:"tax_type" gorm:"type:varchar(12)"`
	GSTIN       string    `json:"gstin" gorm:"size:15"`
	TaxSnapshot JSONB     `json:"tax_snapshot" gorm:"type:jsonb"`
	IssuedAt    time.Time `json:"issued_at"`

	// Relationships
	Order PaymentOrder `json:"order,omitempty" gorm:"foreignKey:OrderID"`
}
