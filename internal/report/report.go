// Package report computes the aggregate views shown on the dashboard:
// range totals, savings rate, per-category rollups, zero-filled daily series
// and month-over-month deltas. All percentage computations short-circuit to 0
// on a zero denominator.
package report

import (
	"sort"
	"time"

	"fintrack/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Totals aggregates income and expenses over a date range.
type Totals struct {
	Income      decimal.Decimal `json:"income"`
	Expense     decimal.Decimal `json:"expense"`
	Net         decimal.Decimal `json:"net"`          // income - expense
	SavingsRate float64         `json:"savings_rate"` // net / income * 100, 0 when income is 0
}

// CategoryTotal is one per-category expense rollup entry.
type CategoryTotal struct {
	CategoryID uint            `json:"category_id"`
	Name       string          `json:"name"`
	Color      string          `json:"color"`
	Icon       string          `json:"icon"`
	Total      decimal.Decimal `json:"total"`
}

// DailyTotal is the expense total of a single calendar day.
type DailyTotal struct {
	Day   int             `json:"day"`  // 1-based day of month
	Date  string          `json:"date"` // YYYY-MM-DD
	Total decimal.Decimal `json:"total"`
}

// MonthTotal is one entry of a rolling monthly series.
type MonthTotal struct {
	Year    int             `json:"year"`
	Month   time.Month      `json:"month"`
	Label   string          `json:"label"` // YYYY-MM
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// MonthRange returns the inclusive [first day, last day] boundaries of a month
// at UTC midnight. The last day is computed as day 0 of the following month,
// so February and leap years come out right.
func MonthRange(year int, month time.Month) (start, end time.Time) {
	start = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	return start, end
}

// DaysIn returns the number of calendar days in the given month (28-31).
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// RollingWindow returns the inclusive boundaries of the window covering the
// month of now and the months-1 months before it.
func RollingWindow(now time.Time, months int) (start, end time.Time) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	start = first.AddDate(0, -(months - 1), 0)
	_, end = MonthRange(now.Year(), now.Month())
	return start, end
}

// Summary computes income/expense totals over [start, end] inclusive.
// Empty result sets sum to zero.
func Summary(db *gorm.DB, userID uint, start, end time.Time) (Totals, error) {
	var t Totals
	expense, err := sumInRange(db, &domain.Transaction{}, userID, start, end)
	if err != nil {
		return t, err
	}
	income, err := sumInRange(db, &domain.Income{}, userID, start, end)
	if err != nil {
		return t, err
	}
	t.Expense = expense
	t.Income = income
	t.Net = income.Sub(expense)
	t.SavingsRate = SavingsRate(income, expense)
	return t, nil
}

// sumInRange sums the amount column of one record kind over a date range.
func sumInRange(db *gorm.DB, model any, userID uint, start, end time.Time) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := db.Model(model).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, start, end).
		Scan(&row).Error
	return row.Total, err
}

// SavingsRate returns net savings as a percentage of income, 0 when income is 0.
func SavingsRate(income, expense decimal.Decimal) float64 {
	if income.IsZero() {
		return 0
	}
	rate, _ := income.Sub(expense).Div(income).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return rate
}

// MonthOverMonth returns the percentage change from previous to current,
// 0 when previous is 0.
func MonthOverMonth(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		return 0
	}
	change, _ := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return change
}

// CategoryTotals computes per-category expense totals over [start, end],
// sorted descending by total. Display color and icon come from the owning
// category row; transactions whose category no longer resolves fall back to
// a neutral color and icon.
func CategoryTotals(db *gorm.DB, userID uint, start, end time.Time) ([]CategoryTotal, error) {
	var rows []CategoryTotal
	err := db.Model(&domain.Transaction{}).
		Select("transactions.category_id AS category_id, categories.name AS name, categories.color AS color, categories.icon AS icon, SUM(transactions.amount) AS total").
		Joins("LEFT JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ? AND transactions.date BETWEEN ? AND ?", userID, start, end).
		Group("transactions.category_id, categories.name, categories.color, categories.icon").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].Name == "" {
			rows[i].Name = "Uncategorized"
		}
		if rows[i].Color == "" {
			rows[i].Color = domain.NeutralColor
		}
		if rows[i].Icon == "" {
			rows[i].Icon = domain.NeutralIcon
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total.GreaterThan(rows[j].Total)
	})
	return rows, nil
}

// DailyTotals computes per-day expense totals for a single month. The series
// always has one entry per calendar day of that month, zero-filled for days
// with no transactions.
func DailyTotals(db *gorm.DB, userID uint, year int, month time.Month) ([]DailyTotal, error) {
	start, end := MonthRange(year, month)

	var txs []domain.Transaction
	err := db.Where("user_id = ? AND date BETWEEN ? AND ?", userID, start, end).
		Find(&txs).Error
	if err != nil {
		return nil, err
	}

	days := DaysIn(year, month)
	series := make([]DailyTotal, days)
	for d := 0; d < days; d++ {
		series[d] = DailyTotal{
			Day:   d + 1,
			Date:  start.AddDate(0, 0, d).Format("2006-01-02"),
			Total: decimal.Zero,
		}
	}
	for i := range txs {
		d := txs[i].Date.Day() - 1
		if d < 0 || d >= days {
			continue
		}
		series[d].Total = series[d].Total.Add(txs[i].Amount)
	}
	return series, nil
}

// MonthlySeries computes income/expense totals for the months months ending at
// the month of now, oldest first. Used for the rolling dashboard chart.
func MonthlySeries(db *gorm.DB, userID uint, now time.Time, months int) ([]MonthTotal, error) {
	series := make([]MonthTotal, 0, months)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := months - 1; i >= 0; i-- {
		m := first.AddDate(0, -i, 0)
		start, end := MonthRange(m.Year(), m.Month())
		t, err := Summary(db, userID, start, end)
		if err != nil {
			return nil, err
		}
		series = append(series, MonthTotal{
			Year:    m.Year(),
			Month:   m.Month(),
			Label:   m.Format("2006-01"),
			Income:  t.Income,
			Expense: t.Expense,
		})
	}
	return series, nil
}

// TransactionCount returns the number of expense records in [start, end].
func TransactionCount(db *gorm.DB, userID uint, start, end time.Time) (int64, error) {
	var n int64
	err := db.Model(&domain.Transaction{}).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, start, end).
		Count(&n).Error
	return n, err
}
