package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/budget"
	"fintrack/internal/domain"
	"fintrack/internal/report"
	"fintrack/internal/utils"

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// BudgetResponse is the wire shape of one monthly budget with utilization.
type BudgetResponse struct {
	ID          uint    `json:"id"`
	Month       int     `json:"month"`
	Year        int     `json:"year"`
	Amount      string  `json:"amount"`
	Spent       string  `json:"spent"`
	Remaining   string  `json:"remaining"`
	Utilization float64 `json:"utilization"`
	Status      string  `json:"status"`
}

// MutateBudgetRequest multiplexes save-budget/update/delete via intent.
// Mode selects absolute-amount or percentage-of-income derivation.
type MutateBudgetRequest struct {
	Intent  string `form:"intent" binding:"required"`
	Month   int    `form:"month"`
	Year    int    `form:"year"`
	Mode    string `form:"mode"`    // "absolute" (default) or "percent"
	Amount  string `form:"amount"`  // absolute mode
	Percent int    `form:"percent"` // percent mode, 1-100
}

// budgetWithUtilization annotates a budget row with its month's spend.
func budgetWithUtilization(db *gorm.DB, b *domain.Budget) (BudgetResponse, error) {
	start, end := report.MonthRange(b.Year, time.Month(b.Month))
	totals, err := report.Summary(db, b.UserID, start, end)
	if err != nil {
		return BudgetResponse{}, err
	}
	pct := budget.Utilization(totals.Expense, b.Amount)
	return BudgetResponse{
		ID:          b.ID,
		Month:       b.Month,
		Year:        b.Year,
		Amount:      b.Amount.StringFixed(2),
		Spent:       totals.Expense.StringFixed(2),
		Remaining:   b.Amount.Sub(totals.Expense).StringFixed(2),
		Utilization: pct,
		Status:      string(budget.Classify(pct)),
	}, nil
}

// ListBudgetsHandler returns the user's budgets, newest period first, each
// annotated with spend, utilization and status.
func ListBudgetsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var budgets []domain.Budget
		if err := db.Where("user_id = ?", userID).
			Order("year DESC, month DESC").
			Find(&budgets).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch budgets"})
			return
		}
		out := make([]BudgetResponse, 0, len(budgets))
		for i := range budgets {
			resp, err := budgetWithUtilization(db, &budgets[i])
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch budgets"})
				return
			}
			out = append(out, resp)
		}
		c.JSON(http.StatusOK, gin.H{"budgets": out})
	}
}

// GetBudgetHandler returns the single budget for ?month=&year= (default:
// current month), or 404 when none is set.
func GetBudgetHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		month, _ := strconv.Atoi(c.Query("month"))
		year, _ := strconv.Atoi(c.Query("year"))
		month, year, valid := parsePeriod(month, year)
		if !valid {
			fieldErrors(c, map[string]string{"month": "Invalid month or year"})
			return
		}
		b, err := budget.Get(db, userID, month, year)
		if err != nil {
			if errors.Is(err, budget.ErrNotFound) {
				notFound(c)
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch budget"})
			return
		}
		resp, err := budgetWithUtilization(db, b)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch budget"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"budget": resp})
	}
}

// MutateBudgetHandler saves, updates or deletes the monthly budget depending
// on the form's intent.
func MutateBudgetHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req MutateBudgetRequest
		if err := c.ShouldBind(&req); err != nil {
			fieldErrors(c, map[string]string{"intent": "Missing intent"})
			return
		}
		month, year, valid := parsePeriod(req.Month, req.Year)
		if !valid {
			fieldErrors(c, map[string]string{"month": "Invalid month or year"})
			return
		}
		switch req.Intent {
		case "save-budget":
			saveBudget(c, db, rdb, userID, month, year, &req)
		case "update":
			updateBudget(c, db, rdb, userID, month, year, &req)
		case "delete":
			deleteBudget(c, db, rdb, userID, month, year)
		default:
			fieldErrors(c, map[string]string{"intent": "Unknown intent"})
		}
	}
}

// deriveCeiling runs the derivation for the request's mode, loading the
// month's income only when percent mode asks for it.
func deriveCeiling(db *gorm.DB, userID uint, month, year int, req *MutateBudgetRequest) (decimal.Decimal, map[string]string) {
	mode := budget.ModeAbsolute
	if req.Mode == string(budget.ModePercent) {
		mode = budget.ModePercent
	}

	var amount decimal.Decimal
	if mode == budget.ModeAbsolute {
		parsed, ok := parseAmount(req.Amount)
		if !ok {
			return decimal.Zero, map[string]string{"amount": "Enter a positive amount"}
		}
		amount = parsed
	}

	monthIncome := decimal.Zero
	if mode == budget.ModePercent {
		start, end := report.MonthRange(year, time.Month(month))
		totals, err := report.Summary(db, userID, start, end)
		if err != nil {
			return decimal.Zero, map[string]string{"form": "Failed to load income for this month"}
		}
		monthIncome = totals.Income
	}

	ceiling, err := budget.Derive(mode, amount, req.Percent, monthIncome)
	if err != nil {
		switch {
		case errors.Is(err, budget.ErrInvalidPercent):
			return decimal.Zero, map[string]string{"percent": "Percentage must be between 1 and 100"}
		case errors.Is(err, budget.ErrNoIncome):
			return decimal.Zero, map[string]string{"percent": "Record income for this month before using a percentage budget"}
		default:
			return decimal.Zero, map[string]string{"amount": "Enter a positive amount"}
		}
	}
	return ceiling, nil
}

func saveBudget(c *gin.Context, db *gorm.DB, rdb *redis.Client, userID uint, month, year int, req *MutateBudgetRequest) {
	ceiling, errs := deriveCeiling(db, userID, month, year, req)
	if errs != nil {
		fieldErrors(c, errs)
		return
	}
	b, err := budget.Create(db, userID, month, year, ceiling)
	if err != nil {
		if errors.Is(err, budget.ErrAlreadyExists) {
			fieldErrors(c, map[string]string{"month": "A budget for this month already exists"})
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Error("Budget create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save budget"})
		return
	}
	utils.InvalidateUser(context.Background(), rdb, userID, time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC))
	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"month":   month,
		"year":    year,
		"amount":  b.Amount.StringFixed(2),
	}).Info("Budget created")
	resp, err := budgetWithUtilization(db, b)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save budget"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"budget": resp})
}

func updateBudget(c *gin.Context, db *gorm.DB, rdb *redis.Client, userID uint, month, year int, req *MutateBudgetRequest) {
	ceiling, errs := deriveCeiling(db, userID, month, year, req)
	if errs != nil {
		fieldErrors(c, errs)
		return
	}
	b, err := budget.UpdateAmount(db, userID, month, year, ceiling)
	if err != nil {
		if errors.Is(err, budget.ErrNotFound) {
			notFound(c)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save budget"})
		return
	}
	utils.InvalidateUser(context.Background(), rdb, userID, time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC))
	resp, err := budgetWithUtilization(db, b)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save budget"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"budget": resp})
}

func deleteBudget(c *gin.Context, db *gorm.DB, rdb *redis.Client, userID uint, month, year int) {
	if err := budget.Delete(db, userID, month, year); err != nil {
		if errors.Is(err, budget.ErrNotFound) {
			notFound(c)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete budget"})
		return
	}
	utils.InvalidateUser(context.Background(), rdb, userID, time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC))
	logrus.WithFields(logrus.Fields{"user_id": userID, "month": month, "year": year}).Info("Budget deleted")
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
