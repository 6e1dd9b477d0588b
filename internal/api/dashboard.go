package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/budget"
	"fintrack/internal/report"
	"fintrack/internal/utils"

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// dashboardTTL bounds staleness of the cached summary; every write
// invalidates it anyway.
const dashboardTTL = 60 * time.Second

// DashboardResponse is the aggregated current-month view.
type DashboardResponse struct {
	Totals         report.Totals          `json:"totals"`
	MonthOverMonth float64                `json:"month_over_month"`
	Categories     []report.CategoryTotal `json:"categories"`
	Daily          []report.DailyTotal    `json:"daily"`
	Series         []report.MonthTotal    `json:"series"`
	Budget         *BudgetResponse        `json:"budget,omitempty"`
}

// DashboardHandler computes the current-month summary: totals, savings rate,
// category rollups, the zero-filled daily series, a 6-month rolling series,
// the month-over-month expense delta and budget utilization. Served
// cache-aside from redis.
func DashboardHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		ctx := context.Background()
		cacheKey := utils.DashboardKey(userID)

		var cached DashboardResponse
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"dashboard": cached, "cached": true})
			return
		}

		now := time.Now().UTC()
		start, end := report.MonthRange(now.Year(), now.Month())

		totals, err := report.Summary(db, userID, start, end)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard"})
			return
		}
		prevStart, prevEnd := report.MonthRange(now.Year(), now.Month()-1)
		prev, err := report.Summary(db, userID, prevStart, prevEnd)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard"})
			return
		}
		categories, err := report.CategoryTotals(db, userID, start, end)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard"})
			return
		}
		daily, err := report.DailyTotals(db, userID, now.Year(), now.Month())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard"})
			return
		}
		series, err := report.MonthlySeries(db, userID, now, 6)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard"})
			return
		}

		resp := DashboardResponse{
			Totals:         totals,
			MonthOverMonth: report.MonthOverMonth(totals.Expense, prev.Expense),
			Categories:     categories,
			Daily:          daily,
			Series:         series,
		}
		if b, err := budget.Get(db, userID, int(now.Month()), now.Year()); err == nil {
			withUtil, err := budgetWithUtilization(db, b)
			if err == nil {
				resp.Budget = &withUtil
			}
		} else if !errors.Is(err, budget.ErrNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard"})
			return
		}

		_ = utils.SetCache(ctx, rdb, cacheKey, resp, dashboardTTL)
		c.JSON(http.StatusOK, gin.H{"dashboard": resp, "cached": false})
	}
}

// MonthlyReportHandler returns the report for an explicit ?month=&year=
// (category rollups plus the daily series), cache-aside like the dashboard.
func MonthlyReportHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		month, year, valid := parsePeriod(atoiQuery(c, "month"), atoiQuery(c, "year"))
		if !valid {
			fieldErrors(c, map[string]string{"month": "Invalid month or year"})
			return
		}
		ctx := context.Background()
		cacheKey := utils.ReportKey(userID, year, month)

		var cached DashboardResponse
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"report": cached, "cached": true})
			return
		}

		start, end := report.MonthRange(year, time.Month(month))
		totals, err := report.Summary(db, userID, start, end)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
			return
		}
		prevStart, prevEnd := report.MonthRange(year, time.Month(month)-1)
		prev, err := report.Summary(db, userID, prevStart, prevEnd)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
			return
		}
		categories, err := report.CategoryTotals(db, userID, start, end)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
			return
		}
		daily, err := report.DailyTotals(db, userID, year, time.Month(month))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
			return
		}

		resp := DashboardResponse{
			Totals:         totals,
			MonthOverMonth: report.MonthOverMonth(totals.Expense, prev.Expense),
			Categories:     categories,
			Daily:          daily,
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, dashboardTTL)
		c.JSON(http.StatusOK, gin.H{"report": resp, "cached": false})
	}
}

// atoiQuery reads an integer query param, 0 when absent or malformed.
func atoiQuery(c *gin.Context, name string) int {
	v, _ := strconv.Atoi(c.Query(name))
	return v
}
