package domain

import "time"

// Category Model
type Category struct {
	ID        uint   `gorm:"primaryKey"`                                       // Primary key
	UserID    uint   `gorm:"not null;uniqueIndex:idx_user_category_name"`      // Foreign key to User
	Name      string `gorm:"size:64;not null;uniqueIndex:idx_user_category_name"` // Unique per user (case-insensitive)
	Color     string `gorm:"size:7;not null;default:#94a3b8"`                  // Display color, hex string
	Icon      string `gorm:"size:32"`                                          // Icon identifier
	CreatedAt time.Time
}
