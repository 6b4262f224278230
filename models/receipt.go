package models

import "time"

// Receipt is a scanned receipt with its extracted items.
type Receipt struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Total     float64
	Items     []ReceiptItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// ReceiptItem is one product line of a scanned receipt.
type ReceiptItem struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	ReceiptID uint   `gorm:"index;not null"`
	Name      string `gorm:"size:255;not null"`
	Price     float64
	Quantity  float64
	Unit      string  `gorm:"size:8"`
	Sale      float64 // fractional discount in [0,1]
}
