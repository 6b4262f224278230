package models

import "time"

// Merchant is a seller seen on transactions. NormalizedName (lowercase,
// trimmed) is the lookup key; DisplayName preserves the original casing.
type Merchant struct {
	ID                uint `gorm:"primaryKey"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	NormalizedName    string `gorm:"size:255;not null;uniqueIndex"`
	DisplayName       string `gorm:"size:255;not null"`
	DefaultCategoryID *uint  `gorm:"index"`
}
