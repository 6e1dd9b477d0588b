// Package budget establishes and reports on the single monthly spending
// ceiling of a user. A ceiling is derived once, at creation, either from an
// absolute amount or from a percentage of that month's income; the stored row
// always carries an absolute amount and is never recomputed when income
// changes later.
package budget

import (
	"errors"

	"fintrack/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Mode selects how the monthly ceiling is derived.
type Mode string

const (
	ModeAbsolute Mode = "absolute" // ceiling is the provided amount
	ModePercent  Mode = "percent"  // ceiling is a percentage of the month's income
)

// Status classifies budget utilization.
type Status string

const (
	StatusOnTrack Status = "on track"    // <= 80% used
	StatusWarning Status = "warning"     // 80% < used <= 100%
	StatusOver    Status = "over budget" // > 100% used
)

// User-correctable failures of the derivation and persistence contract.
var (
	ErrInvalidAmount  = errors.New("budget amount must be greater than zero")
	ErrInvalidPercent = errors.New("percentage must be between 1 and 100")
	ErrNoIncome       = errors.New("cannot derive a budget from zero income for this month")
	ErrInvalidPeriod  = errors.New("month must be between 1 and 12")
	ErrAlreadyExists  = errors.New("a budget already exists for this month")
	ErrNotFound       = errors.New("budget not found")
)

var hundred = decimal.NewFromInt(100)

// Derive computes the absolute monthly ceiling for the chosen mode.
// Absolute mode requires amount > 0. Percent mode requires a percentage in
// (0, 100] and a non-zero month income; the result is rounded to two decimal
// places.
func Derive(mode Mode, amount decimal.Decimal, percent int, monthIncome decimal.Decimal) (decimal.Decimal, error) {
	switch mode {
	case ModeAbsolute:
		if amount.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, ErrInvalidAmount
		}
		return amount.Round(2), nil
	case ModePercent:
		if percent < 1 || percent > 100 {
			return decimal.Zero, ErrInvalidPercent
		}
		if monthIncome.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, ErrNoIncome
		}
		return monthIncome.Mul(decimal.NewFromInt(int64(percent))).Div(hundred).Round(2), nil
	default:
		return decimal.Zero, ErrInvalidAmount
	}
}

// Create inserts the budget row for (user, month, year). A concurrent or
// repeated create for the same period loses to the composite uniqueness
// constraint and surfaces as ErrAlreadyExists; callers route that to the
// update path.
func Create(db *gorm.DB, userID uint, month, year int, ceiling decimal.Decimal) (*domain.Budget, error) {
	if month < 1 || month > 12 {
		return nil, ErrInvalidPeriod
	}
	if ceiling.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	b := domain.Budget{
		UserID: userID,
		Month:  month,
		Year:   year,
		Amount: ceiling,
	}
	if err := db.Create(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return &b, nil
}

// UpdateAmount replaces only the amount of an existing budget.
// Month, year and owner are immutable once created.
func UpdateAmount(db *gorm.DB, userID uint, month, year int, amount decimal.Decimal) (*domain.Budget, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	var b domain.Budget
	err := db.Where("user_id = ? AND month = ? AND year = ?", userID, month, year).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := db.Model(&b).Update("amount", amount.Round(2)).Error; err != nil {
		return nil, err
	}
	b.Amount = amount.Round(2)
	return &b, nil
}

// Get fetches the budget for (user, month, year).
func Get(db *gorm.DB, userID uint, month, year int) (*domain.Budget, error) {
	var b domain.Budget
	err := db.Where("user_id = ? AND month = ? AND year = ?", userID, month, year).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Delete removes the budget for (user, month, year).
func Delete(db *gorm.DB, userID uint, month, year int) error {
	res := db.Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		Delete(&domain.Budget{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Utilization returns spent as a percentage of the ceiling, 0 when the
// ceiling is 0.
func Utilization(spent, ceiling decimal.Decimal) float64 {
	if ceiling.IsZero() {
		return 0
	}
	pct, _ := spent.Div(ceiling).Mul(hundred).Round(2).Float64()
	return pct
}

// Classify maps a utilization percentage to its status bucket.
func Classify(pct float64) Status {
	switch {
	case pct > 100:
		return StatusOver
	case pct > 80:
		return StatusWarning
	default:
		return StatusOnTrack
	}
}
