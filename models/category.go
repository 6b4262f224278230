package models

import "time"

// Transaction types a category can belong to.
const (
	TypeExpense = "expense"
	TypeIncome  = "income"
)

// DefaultCategoryName is the system fallback category that must exist for
// every transaction type.
const DefaultCategoryName = "Diverse"

// Category groups transactions. System categories (UserID nil, IsSystem)
// are seeded at startup; users may add their own.
type Category struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    *uint  `gorm:"index"`
	Name      string `gorm:"size:100;not null"`
	Type      string `gorm:"size:20;not null;index"`
	IsSystem  bool   `gorm:"default:false"`
}
