// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username     string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	ProfileData  JSONB      `json:"profile_data" gorm:"type:jsonb"`

	// Billing profile; feeds the GST engine. All three may be empty when the
	// user has never completed a checkout, in which case tax falls back to
	// IGST against an unknown location.
	StateCode   string `json:"state_code" gorm:"size:8"`
	CountryCode string `json:"country_code" gorm:"size:8"`
	GSTIN       string `json:"gstin" gorm:"size:15"`

	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	LastLoginAt     *time.Time `json:"last_login_at"`

	// Relationships
	Scripts      []Script            `json:"scripts,omitempty" gorm:"foreignKey:OwnerID"`
	Transactions []CreditTransaction `json:"transactions,omitempty" gorm:"foreignKey:UserID"`
	Orders       []PaymentOrder      `json:"orders,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// HasBillingProfile reports whether enough address data exists to locate the
// customer for tax purposes.
func (u *User) HasBillingProfile() bool {
	return u.StateCode != "" && u.CountryCode != ""
}
