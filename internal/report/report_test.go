package report

import (
	"fmt"
	"strings"
	"testing"
	"time"

	dbpkg "fintrack/internal/db"
	"fintrack/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, dbpkg.AutoMigrate(db))
	return db
}

func seedExpense(t *testing.T, db *gorm.DB, userID, categoryID uint, amount string, date time.Time) {
	t.Helper()
	amt, err := decimal.NewFromString(amount)
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.Transaction{
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     amt,
		Date:       date,
		Frequency:  domain.FrequencyOneTime,
	}).Error)
}

func seedIncome(t *testing.T, db *gorm.DB, userID uint, amount string, date time.Time) {
	t.Helper()
	amt, err := decimal.NewFromString(amount)
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.Income{UserID: userID, Amount: amt, Date: date}).Error)
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthRange(t *testing.T) {
	cases := []struct {
		year    int
		month   time.Month
		lastDay int
	}{
		{2025, time.January, 31},
		{2025, time.February, 28},
		{2024, time.February, 29},
		{2025, time.April, 30},
		{2025, time.December, 31},
	}
	for _, tc := range cases {
		start, end := MonthRange(tc.year, tc.month)
		assert.Equal(t, 1, start.Day(), "%d-%s", tc.year, tc.month)
		assert.Equal(t, tc.month, start.Month())
		assert.Equal(t, tc.lastDay, end.Day(), "%d-%s", tc.year, tc.month)
		assert.Equal(t, tc.month, end.Month())
	}
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 28, DaysIn(2025, time.February))
	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, 30, DaysIn(2025, time.June))
	assert.Equal(t, 31, DaysIn(2025, time.July))
}

func TestRollingWindow(t *testing.T) {
	start, end := RollingWindow(day(2025, time.June, 15), 6)
	assert.Equal(t, day(2025, time.January, 1), start)
	assert.Equal(t, day(2025, time.June, 30), end)

	// window crossing a year boundary
	start, end = RollingWindow(day(2025, time.February, 1), 6)
	assert.Equal(t, day(2024, time.September, 1), start)
	assert.Equal(t, day(2025, time.February, 28), end)
}

func TestSummaryEmpty(t *testing.T) {
	db := openTestDB(t)
	start, end := MonthRange(2025, time.March)
	totals, err := Summary(db, 1, start, end)
	require.NoError(t, err)
	assert.True(t, totals.Income.IsZero())
	assert.True(t, totals.Expense.IsZero())
	assert.True(t, totals.Net.IsZero())
	assert.Equal(t, 0.0, totals.SavingsRate)
}

func TestSummary(t *testing.T) {
	db := openTestDB(t)
	seedIncome(t, db, 1, "2000.00", day(2025, time.June, 1))
	seedExpense(t, db, 1, 1, "300.00", day(2025, time.June, 10))
	seedExpense(t, db, 1, 1, "200.00", day(2025, time.June, 30)) // last day is inclusive
	seedExpense(t, db, 2, 1, "999.00", day(2025, time.June, 10)) // other user, excluded
	seedExpense(t, db, 1, 1, "999.00", day(2025, time.July, 1))  // outside range

	start, end := MonthRange(2025, time.June)
	totals, err := Summary(db, 1, start, end)
	require.NoError(t, err)
	assert.Equal(t, "2000.00", totals.Income.StringFixed(2))
	assert.Equal(t, "500.00", totals.Expense.StringFixed(2))
	assert.Equal(t, "1500.00", totals.Net.StringFixed(2))
	assert.Equal(t, 75.0, totals.SavingsRate)
}

func TestSavingsRateZeroIncome(t *testing.T) {
	rate := SavingsRate(decimal.Zero, decimal.NewFromInt(500))
	assert.Equal(t, 0.0, rate)
}

func TestMonthOverMonth(t *testing.T) {
	assert.Equal(t, 0.0, MonthOverMonth(decimal.NewFromInt(100), decimal.Zero))
	assert.Equal(t, 50.0, MonthOverMonth(decimal.NewFromInt(150), decimal.NewFromInt(100)))
	assert.Equal(t, -50.0, MonthOverMonth(decimal.NewFromInt(50), decimal.NewFromInt(100)))
}

func TestDailyTotalsSeriesLength(t *testing.T) {
	db := openTestDB(t)
	cases := []struct {
		year  int
		month time.Month
		days  int
	}{
		{2025, time.February, 28},
		{2024, time.February, 29},
		{2025, time.April, 30},
		{2025, time.January, 31},
	}
	for _, tc := range cases {
		series, err := DailyTotals(db, 1, tc.year, tc.month)
		require.NoError(t, err)
		assert.Len(t, series, tc.days, "%d-%s", tc.year, tc.month)
		for _, d := range series {
			assert.False(t, d.Total.IsNegative())
		}
	}
}

func TestDailyTotalsBuckets(t *testing.T) {
	db := openTestDB(t)
	seedExpense(t, db, 1, 1, "10.50", day(2025, time.February, 3))
	seedExpense(t, db, 1, 1, "5.00", day(2025, time.February, 3))
	seedExpense(t, db, 1, 1, "7.25", day(2025, time.February, 28))

	series, err := DailyTotals(db, 1, 2025, time.February)
	require.NoError(t, err)
	require.Len(t, series, 28)
	assert.Equal(t, "15.50", series[2].Total.StringFixed(2))
	assert.Equal(t, "2025-02-03", series[2].Date)
	assert.Equal(t, "7.25", series[27].Total.StringFixed(2))
	for i, d := range series {
		if i == 2 || i == 27 {
			continue
		}
		assert.True(t, d.Total.IsZero(), "day %d should be zero-filled", d.Day)
	}
}

func TestCategoryTotals(t *testing.T) {
	db := openTestDB(t)
	food := domain.Category{UserID: 1, Name: "Food & Dining", Color: "#f97316", Icon: "utensils"}
	travel := domain.Category{UserID: 1, Name: "Travel", Color: "#06b6d4", Icon: "plane"}
	require.NoError(t, db.Create(&food).Error)
	require.NoError(t, db.Create(&travel).Error)

	seedExpense(t, db, 1, food.ID, "40.00", day(2025, time.June, 2))
	seedExpense(t, db, 1, food.ID, "10.00", day(2025, time.June, 5))
	seedExpense(t, db, 1, travel.ID, "120.00", day(2025, time.June, 9))
	seedExpense(t, db, 1, 9999, "3.00", day(2025, time.June, 9)) // dangling category reference

	start, end := MonthRange(2025, time.June)
	rows, err := CategoryTotals(db, 1, start, end)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// sorted descending by total
	assert.Equal(t, "Travel", rows[0].Name)
	assert.Equal(t, "120.00", rows[0].Total.StringFixed(2))
	assert.Equal(t, "#06b6d4", rows[0].Color)
	assert.Equal(t, "Food & Dining", rows[1].Name)
	assert.Equal(t, "50.00", rows[1].Total.StringFixed(2))

	// unresolvable category falls back to the neutral display
	assert.Equal(t, "Uncategorized", rows[2].Name)
	assert.Equal(t, domain.NeutralColor, rows[2].Color)
	assert.Equal(t, domain.NeutralIcon, rows[2].Icon)
}

func TestMonthlySeries(t *testing.T) {
	db := openTestDB(t)
	seedIncome(t, db, 1, "1000.00", day(2025, time.May, 1))
	seedExpense(t, db, 1, 1, "250.00", day(2025, time.June, 5))

	series, err := MonthlySeries(db, 1, day(2025, time.June, 15), 6)
	require.NoError(t, err)
	require.Len(t, series, 6)
	assert.Equal(t, "2025-01", series[0].Label)
	assert.Equal(t, "2025-06", series[5].Label)
	assert.Equal(t, "1000.00", series[4].Income.StringFixed(2))
	assert.Equal(t, "250.00", series[5].Expense.StringFixed(2))
	assert.True(t, series[0].Income.IsZero())
}

func TestTransactionCount(t *testing.T) {
	db := openTestDB(t)
	seedExpense(t, db, 1, 1, "1.00", day(2025, time.June, 1))
	seedExpense(t, db, 1, 1, "2.00", day(2025, time.June, 2))
	seedExpense(t, db, 1, 1, "3.00", day(2025, time.July, 1))

	start, end := MonthRange(2025, time.June)
	n, err := TransactionCount(db, 1, start, end)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
