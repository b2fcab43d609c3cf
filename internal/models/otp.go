package models

import (
	"time"

	"gorm.io/gorm"
)

// OTPType is what a one-time code authorizes.
type OTPType string

const (
	OTPTypePasswordReset OTPType = "password_reset"
)

// OTP is an emailed one-time code. Codes are single use and expire;
// requesting a new code does not invalidate older ones, IsValid does.
type OTP struct {
	gorm.Model
	UserID    uint      `json:"userId" gorm:"not null;index"`
	Code      string    `json:"code" gorm:"size:6;not null"`
	Type      OTPType   `json:"type" gorm:"not null"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null"`
	Used      bool      `json:"used" gorm:"not null;default:false"`
}

// IsValid reports whether the code can still be redeemed.
func (o *OTP) IsValid() bool {
	return !o.Used && time.Now().Before(o.ExpiresAt)
}

// MarkAsUsed burns the code so it cannot be redeemed again.
func (o *OTP) MarkAsUsed(db *gorm.DB) error {
	o.Used = true
	return db.Save(o).Error
}
