package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/domain"
	"fintrack/internal/utils"

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// IncomeResponse is the wire shape of one income record.
type IncomeResponse struct {
	ID     uint   `json:"id"`
	Amount string `json:"amount"`
	Source string `json:"source,omitempty"`
	Date   string `json:"date"`
}

// MutateIncomeRequest multiplexes create/update/delete via intent.
type MutateIncomeRequest struct {
	Intent string `form:"intent" binding:"required"`
	ID     uint   `form:"id"`
	Amount string `form:"amount"`
	Source string `form:"source"`
	Date   string `form:"date"`
}

func toIncomeResponse(in *domain.Income) IncomeResponse {
	return IncomeResponse{
		ID:     in.ID,
		Amount: in.Amount.StringFixed(2),
		Source: in.Source,
		Date:   in.Date.Format(dateLayout),
	}
}

// ListIncomesHandler returns the user's income records for a month, newest
// first.
func ListIncomesHandler(db *gorm.DB) gin.HandlerFunc {
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
		start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, -1)

		var incomes []domain.Income
		if err := db.Where("user_id = ? AND date BETWEEN ? AND ?", userID, start, end).
			Order("date DESC, id DESC").
			Find(&incomes).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch incomes"})
			return
		}
		out := make([]IncomeResponse, 0, len(incomes))
		for i := range incomes {
			out = append(out, toIncomeResponse(&incomes[i]))
		}
		c.JSON(http.StatusOK, gin.H{"incomes": out})
	}
}

// MutateIncomeHandler creates, updates or deletes an income record depending
// on the form's intent.
func MutateIncomeHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req MutateIncomeRequest
		if err := c.ShouldBind(&req); err != nil {
			fieldErrors(c, map[string]string{"intent": "Missing intent"})
			return
		}
		switch req.Intent {
		case "create":
			createIncome(c, db, rdb, userID, &req)
		case "update":
			updateIncome(c, db, rdb, userID, &req)
		case "delete":
			deleteIncome(c, db, rdb, userID, req.ID)
		default:
			fieldErrors(c, map[string]string{"intent": "Unknown intent"})
		}
	}
}

func validateIncomeFields(req *MutateIncomeRequest) (*domain.Income, map[string]string) {
	errs := map[string]string{}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		errs["amount"] = "Enter a positive amount"
	}
	date, ok := parseDate(req.Date)
	if !ok {
		errs["date"] = "Enter a valid date (YYYY-MM-DD)"
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return &domain.Income{Amount: amount, Source: req.Source, Date: date}, nil
}

func createIncome(c *gin.Context, db *gorm.DB, rdb *redis.Client, userID uint, req *MutateIncomeRequest) {
	in, errs := validateIncomeFields(req)
	if errs != nil {
		fieldErrors(c, errs)
		return
	}
	in.UserID = userID
	if err := db.Create(in).Error; err != nil {
		logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Error("Income create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save income"})
		return
	}
	utils.InvalidateUser(context.Background(), rdb, userID, in.Date)
	logrus.WithFields(logrus.Fields{
		"user_id":   userID,
		"income_id": in.ID,
		"amount":    in.Amount.StringFixed(2),
	}).Info("Income created")
	c.JSON(http.StatusCreated, gin.H{"income": toIncomeResponse(in)})
}

func updateIncome(c *gin.Context, db *gorm.DB, rdb *redis.Client, userID uint, req *MutateIncomeRequest) {
	var existing domain.Income
	if err := db.Where("id = ? AND user_id = ?", req.ID, userID).First(&existing).Error; err != nil {
		notFound(c)
		return
	}
	in, errs := validateIncomeFields(req)
	if errs != nil {
		fieldErrors(c, errs)
		return
	}
	updates := map[string]any{"amount": in.Amount, "source": in.Source, "date": in.Date}
	if err := db.Model(&existing).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save income"})
		return
	}
	utils.InvalidateUser(context.Background(), rdb, userID, existing.Date)
	utils.InvalidateUser(context.Background(), rdb, userID, in.Date)
	in.ID = existing.ID
	c.JSON(http.StatusOK, gin.H{"income": toIncomeResponse(in)})
}

func deleteIncome(c *gin.Context, db *gorm.DB, rdb *redis.Client, userID uint, id uint) {
	var existing domain.Income
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&existing).Error; err != nil {
		notFound(c)
		return
	}
	if err := db.Delete(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete income"})
		return
	}
	utils.InvalidateUser(context.Background(), rdb, userID, existing.Date)
	logrus.WithFields(logrus.Fields{"user_id": userID, "income_id": id}).Info("Income deleted")
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
