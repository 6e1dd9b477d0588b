package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget Model: at most one row per (user, month, year), enforced by the composite index.
type Budget struct {
	ID        uint            `gorm:"primaryKey"`                                // Primary key
	UserID    uint            `gorm:"not null;uniqueIndex:idx_user_budget_period"` // Owning user
	Month     int             `gorm:"not null;uniqueIndex:idx_user_budget_period"` // 1-12
	Year      int             `gorm:"not null;uniqueIndex:idx_user_budget_period"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"` // Absolute monthly ceiling
	CreatedAt time.Time
	UpdatedAt time.Time
}
