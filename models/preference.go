package models

import "time"

// UserMerchantPreference is a learned per-user association between a
// merchant and a category, strengthened by repeated corrections. One row
// per (user, merchant).
type UserMerchantPreference struct {
	ID         uint `gorm:"primaryKey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	UserID     uint `gorm:"not null;uniqueIndex:idx_user_merchant"`
	MerchantID uint `gorm:"not null;uniqueIndex:idx_user_merchant"`
	CategoryID uint `gorm:"not null"`
	// Confidence in [0,1], stored with two-decimal precision. Starts at
	// 0.5 on creation, +0.1 per confirming correction, capped at 1.0.
	Confidence float64 `gorm:"type:numeric(3,2);not null"`
}
