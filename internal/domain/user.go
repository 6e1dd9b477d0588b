package domain

import "time"

// User Model
type User struct {
	ID           uint   `gorm:"primaryKey"`                    // Primary key
	Email        string `gorm:"size:255;uniqueIndex;not null"` // Unique login email, stored lowercase
	PasswordHash string `gorm:"size:255"`                      // bcrypt hash; empty for external-identity accounts
	CreatedAt    time.Time

	Categories   []Category    `gorm:"constraint:OnDelete:CASCADE"` // Owned categories
	Transactions []Transaction `gorm:"constraint:OnDelete:CASCADE"` // Owned expense records
	Incomes      []Income      `gorm:"constraint:OnDelete:CASCADE"` // Owned income records
	Budgets      []Budget      `gorm:"constraint:OnDelete:CASCADE"` // Owned monthly budgets
}
