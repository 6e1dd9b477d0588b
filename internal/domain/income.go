package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Income Model
type Income struct {
	ID        uint            `gorm:"primaryKey"`                  // Primary key
	UserID    uint            `gorm:"index;not null"`              // Owning user
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"` // Positive amount, two decimal places
	Source    string          `gorm:"size:128"`                    // Optional source label (salary, freelance, ...)
	Date      time.Time       `gorm:"index;not null"`              // Calendar date received (UTC midnight)
	CreatedAt time.Time
}
