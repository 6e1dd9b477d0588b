package api

import (
	"net/http"
	"strings"
	"time"

	"fintrack/internal/advisor"
	"fintrack/internal/budget"
	"fintrack/internal/report"

	"github.com/gin-gonic/gin" // Gin web framework
	"github.com/shopspring/decimal"
	"gorm.io/gorm" // GORM ORM library
)

// ChatRequest carries the user's question for the advisor.
type ChatRequest struct {
	Question string `json:"question" binding:"required"`
}

// ChatHandler builds the current-month financial snapshot and forwards the
// question to the advisory provider. Provider failures degrade to a retry
// message; the request never fails with a raw upstream error.
func ChatHandler(db *gorm.DB, adv *advisor.Advisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Question) == "" {
			fieldErrors(c, map[string]string{"question": "Ask a question"})
			return
		}

		now := time.Now().UTC()
		start, end := report.MonthRange(now.Year(), now.Month())
		totals, err := report.Summary(db, userID, start, end)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load financial summary"})
			return
		}
		categories, err := report.CategoryTotals(db, userID, start, end)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load financial summary"})
			return
		}
		count, err := report.TransactionCount(db, userID, start, end)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load financial summary"})
			return
		}

		ceiling := decimal.Zero
		if b, err := budget.Get(db, userID, int(now.Month()), now.Year()); err == nil {
			ceiling = b.Amount
		}

		snap := advisor.Snapshot{
			BudgetCeiling:    ceiling,
			TotalIncome:      totals.Income,
			TotalExpense:     totals.Expense,
			Remaining:        ceiling.Sub(totals.Expense),
			CategoryTotals:   categories,
			TransactionCount: count,
		}

		answer, err := adv.GetAdvice(c.Request.Context(), req.Question, snap)
		if err != nil {
			// degraded, user-visible, retryable
			c.JSON(http.StatusOK, gin.H{
				"advice": "",
				"error":  "The advisor is unavailable right now. Please try again.",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"advice": answer})
	}
}
