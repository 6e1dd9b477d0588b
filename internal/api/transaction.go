package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/domain"
	"fintrack/internal/utils"

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/google/uuid"       // Receipt references
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// TransactionResponse is the wire shape of one expense record.
type TransactionResponse struct {
	ID          uint   `json:"id"`
	Amount      string `json:"amount"`
	CategoryID  uint   `json:"category_id"`
	Category    string `json:"category"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
	Recurring   bool   `json:"recurring"`
	Frequency   string `json:"frequency"`
	ReceiptID   string `json:"receipt_id,omitempty"`
}

// MutateTransactionRequest multiplexes create/update/delete onto one endpoint
// via the intent discriminator.
type MutateTransactionRequest struct {
	Intent      string `form:"intent" binding:"required"`
	ID          uint   `form:"id"`
	Amount      string `form:"amount"`
	CategoryID  uint   `form:"category_id"`
	Description string `form:"description"`
	Date        string `form:"date"`
	Recurring   bool   `form:"recurring"`
	Frequency   string `form:"frequency"`
	HasReceipt  bool   `form:"has_receipt"`
}

func toTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          t.ID,
		Amount:      t.Amount.StringFixed(2),
		CategoryID:  t.CategoryID,
		Category:    t.Category.Name,
		Color:       t.Category.Color,
		Icon:        t.Category.Icon,
		Description: t.Description,
		Date:        t.Date.Format(dateLayout),
		Recurring:   t.Recurring,
		Frequency:   string(t.Frequency),
	}
	if resp.Category == "" {
		resp.Category = "Uncategorized"
		resp.Color = domain.NeutralColor
		resp.Icon = domain.NeutralIcon
	}
	if t.ReceiptID != nil {
		resp.ReceiptID = *t.ReceiptID
	}
	return resp
}

// ListTransactionsHandler returns the user's expenses, newest first, filtered
// to a month (default: current) and paginated.
func ListTransactionsHandler(db *gorm.DB) gin.HandlerFunc {
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
		page, pageSize := pagination(c)
		start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, -1)

		var total int64
		if err := db.Model(&domain.Transaction{}).
			Where("user_id = ? AND date BETWEEN ? AND ?", userID, start, end).
			Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count transactions"})
			return
		}
		var txs []domain.Transaction
		if err := db.Preload("Category").
			Where("user_id = ? AND date BETWEEN ? AND ?", userID, start, end).
			Order("date DESC, id DESC").
			Offset((page - 1) * pageSize).
			Limit(pageSize).
			Find(&txs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		out := make([]TransactionResponse, 0, len(txs))
		for i := range txs {
			out = append(out, toTransactionResponse(&txs[i]))
		}
		c.JSON(http.StatusOK, gin.H{
			"transactions": out,
			"page":         page,
			"page_size":    pageSize,
			"total":        total,
		})
	}
}

// MutateTransactionHandler creates, updates or deletes an expense depending
// on the form's intent.
func MutateTransactionHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req MutateTransactionRequest
		if err := c.ShouldBind(&req); err != nil {
			fieldErrors(c, map[string]string{"intent": "Missing intent"})
			return
		}
		switch req.Intent {
		case "create":
			createTransaction(c, db, rdb, userID, &req)
		case "update":
			updateTransaction(c, db, rdb, userID, &req)
		case "delete":
			deleteTransaction(c, db, rdb, userID, req.ID)
		default:
			fieldErrors(c, map[string]string{"intent": "Unknown intent"})
		}
	}
}

// validateTransactionFields parses the shared create/update fields into a
// model, collecting field-keyed messages.
func validateTransactionFields(db *gorm.DB, userID uint, req *MutateTransactionRequest) (*domain.Transaction, map[string]string) {
	errs := map[string]string{}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		errs["amount"] = "Enter a positive amount"
	}
	date, ok := parseDate(req.Date)
	if !ok {
		errs["date"] = "Enter a valid date (YYYY-MM-DD)"
	}
	freq := domain.FrequencyOneTime
	if req.Frequency != "" {
		freq = domain.Frequency(req.Frequency)
		if !freq.Valid() {
			errs["frequency"] = "Unknown frequency"
		}
	}
	if req.Recurring && freq == domain.FrequencyOneTime {
		errs["frequency"] = "Choose a recurrence frequency"
	}
	// category must exist and belong to the requesting user
	var cat domain.Category
	if err := db.Where("id = ? AND user_id = ?", req.CategoryID, userID).First(&cat).Error; err != nil {
		errs["category"] = "Choose a category"
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return &domain.Transaction{
		UserID:      userID,
		CategoryID:  cat.ID,
		Amount:      amount,
		Description: req.Description,
		Date:        date,
		Recurring:   req.Recurring,
		Frequency:   freq,
		Category:    cat,
	}, nil
}

func createTransaction(c *gin.Context, db *gorm.DB, rdb *redis.Client, userID uint, req *MutateTransactionRequest) {
	tx, errs := validateTransactionFields(db, userID, req)
	if errs != nil {
		fieldErrors(c, errs)
		return
	}
	if req.HasReceipt {
		receiptID := uuid.NewString()
		tx.ReceiptID = &receiptID
	}
	if err := db.Omit("Category").Create(tx).Error; err != nil {
		logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Error("Transaction create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save transaction"})
		return
	}
	utils.InvalidateUser(context.Background(), rdb, userID, tx.Date)
	logrus.WithFields(logrus.Fields{
		"user_id":        userID,
		"transaction_id": tx.ID,
		"amount":         tx.Amount.StringFixed(2),
	}).Info("Transaction created")
	c.JSON(http.StatusCreated, gin.H{"transaction": toTransactionResponse(tx)})
}

func updateTransaction(c *gin.Context, db *gorm.DB, rdb *redis.Client, userID uint, req *MutateTransactionRequest) {
	var existing domain.Transaction
	if err := db.Where("id = ? AND user_id = ?", req.ID, userID).First(&existing).Error; err != nil {
		notFound(c)
		return
	}
	tx, errs := validateTransactionFields(db, userID, req)
	if errs != nil {
		fieldErrors(c, errs)
		return
	}
	updates := map[string]any{
		"amount":      tx.Amount,
		"category_id": tx.CategoryID,
		"description": tx.Description,
		"date":        tx.Date,
		"recurring":   tx.Recurring,
		"frequency":   tx.Frequency,
	}
	if err := db.Model(&existing).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save transaction"})
		return
	}
	utils.InvalidateUser(context.Background(), rdb, userID, existing.Date)
	utils.InvalidateUser(context.Background(), rdb, userID, tx.Date)
	tx.ID = existing.ID
	tx.ReceiptID = existing.ReceiptID
	c.JSON(http.StatusOK, gin.H{"transaction": toTransactionResponse(tx)})
}

func deleteTransaction(c *gin.Context, db *gorm.DB, rdb *redis.Client, userID uint, id uint) {
	var existing domain.Transaction
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&existing).Error; err != nil {
		notFound(c)
		return
	}
	if err := db.Delete(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete transaction"})
		return
	}
	utils.InvalidateUser(context.Background(), rdb, userID, existing.Date)
	logrus.WithFields(logrus.Fields{"user_id": userID, "transaction_id": id}).Info("Transaction deleted")
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// pagination reads page/page_size query params. Defaults to page 1 of 20,
// capped at 100 per page.
func pagination(c *gin.Context) (page, pageSize int) {
	page, pageSize = 1, 20
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}
	return page, pageSize
}
