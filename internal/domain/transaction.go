package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is the recurrence interval of a recurring transaction.
type Frequency string

// Supported recurrence frequencies
const (
	FrequencyOneTime   Frequency = "one-time"
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// Valid reports whether f is one of the supported frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyOneTime, FrequencyDaily, FrequencyWeekly, FrequencyBiweekly,
		FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// Transaction Model (expense record)
type Transaction struct {
	ID          uint            `gorm:"primaryKey"`                // Primary key
	UserID      uint            `gorm:"index;not null"`            // Owning user
	CategoryID  uint            `gorm:"index;not null"`            // Foreign key to Category
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"` // Positive amount, two decimal places
	Description string          `gorm:"size:255"`                  // Optional free text
	Date        time.Time       `gorm:"index;not null"`            // Calendar date of the expense (UTC midnight)
	Recurring   bool            // Whether this expense repeats
	Frequency   Frequency       `gorm:"size:16;not null;default:one-time"` // Recurrence interval
	ReceiptID   *string         `gorm:"size:36"`                   // Optional receipt reference (uuid)
	CreatedAt   time.Time

	Category Category // Resolved category for display color/icon
}
