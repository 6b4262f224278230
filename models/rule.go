package models

import "time"

// CategorizationRule maps a keyword to a category. Rules are scanned in
// priority-descending order; the first active rule whose keyword occurs in
// the transaction text wins.
type CategorizationRule struct {
	ID         uint `gorm:"primaryKey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Keyword    string `gorm:"size:255;not null"`
	CategoryID uint   `gorm:"index;not null"`
	Category   Category
	Priority   int  `gorm:"default:0"`
	IsActive   bool `gorm:"default:true"`
}
