package api

import (
	"net/http"
	"time"

	"fintrack/internal/middleware"

	"github.com/gin-gonic/gin" // Gin web framework
	"github.com/shopspring/decimal"
)

// dateLayout is the wire format of all calendar dates.
const dateLayout = "2006-01-02"

// fieldErrors returns field-keyed validation messages with HTTP 200, so form
// renderers re-display the form instead of treating the response as a failure.
func fieldErrors(c *gin.Context, errs map[string]string) {
	c.JSON(http.StatusOK, gin.H{"errors": errs})
}

// notFound deliberately does not distinguish "exists but not yours" from
// "does not exist".
func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
}

// currentUserID reads the authenticated user, aborting with 401 if the
// middleware did not run.
func currentUserID(c *gin.Context) (uint, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return id, ok
}

// parseAmount parses a positive decimal amount from a form value.
func parseAmount(s string) (decimal.Decimal, bool) {
	amount, err := decimal.NewFromString(s)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, false
	}
	return amount.Round(2), true
}

// parseDate parses a YYYY-MM-DD form value into UTC midnight, so the stored
// date never shifts across timezones. An empty value defaults to today.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), true
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// parsePeriod validates month/year form values, defaulting to the current month.
func parsePeriod(month, year int) (int, int, bool) {
	now := time.Now().UTC()
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}
	if month < 1 || month > 12 || year < 2000 || year > 2100 {
		return 0, 0, false
	}
	return month, year, true
}
