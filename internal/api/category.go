package api

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"fintrack/internal/domain"
	"fintrack/internal/utils"

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// hexColor matches a #rrggbb display color.
var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// CategoryResponse is the wire shape of one category.
type CategoryResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// MutateCategoryRequest multiplexes create/update/delete via intent.
type MutateCategoryRequest struct {
	Intent string `form:"intent" binding:"required"`
	ID     uint   `form:"id"`
	Name   string `form:"name"`
	Color  string `form:"color"`
	Icon   string `form:"icon"`
}

// ListCategoriesHandler returns the user's categories, alphabetically.
func ListCategoriesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var cats []domain.Category
		if err := db.Where("user_id = ?", userID).Order("name ASC").Find(&cats).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}
		out := make([]CategoryResponse, 0, len(cats))
		for _, cat := range cats {
			out = append(out, CategoryResponse{ID: cat.ID, Name: cat.Name, Color: cat.Color, Icon: cat.Icon})
		}
		c.JSON(http.StatusOK, gin.H{"categories": out})
	}
}

// MutateCategoryHandler creates, updates or deletes a category depending on
// the form's intent. Deletion is refused while any transaction still
// references the category.
func MutateCategoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req MutateCategoryRequest
		if err := c.ShouldBind(&req); err != nil {
			fieldErrors(c, map[string]string{"intent": "Missing intent"})
			return
		}
		switch req.Intent {
		case "create":
			createCategory(c, db, rdb, userID, &req)
		case "update":
			updateCategory(c, db, rdb, userID, &req)
		case "delete":
			deleteCategory(c, db, rdb, userID, req.ID)
		default:
			fieldErrors(c, map[string]string{"intent": "Unknown intent"})
		}
	}
}

// validateCategoryFields checks name and color, including the per-user
// case-insensitive name uniqueness (excludeID skips the row being updated).
func validateCategoryFields(db *gorm.DB, userID uint, req *MutateCategoryRequest, excludeID uint) map[string]string {
	errs := map[string]string{}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || len(req.Name) > 64 {
		errs["name"] = "Enter a category name (up to 64 characters)"
	}
	if req.Color != "" && !hexColor.MatchString(req.Color) {
		errs["color"] = "Enter a hex color like #f97316"
	}
	if req.Name != "" {
		var count int64
		q := db.Model(&domain.Category{}).
			Where("user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(req.Name))
		if excludeID != 0 {
			q = q.Where("id <> ?", excludeID)
		}
		if err := q.Count(&count).Error; err == nil && count > 0 {
			errs["name"] = "A category with this name already exists"
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func createCategory(c *gin.Context, db *gorm.DB, rdb *redis.Client, userID uint, req *MutateCategoryRequest) {
	if errs := validateCategoryFields(db, userID, req, 0); errs != nil {
		fieldErrors(c, errs)
		return
	}
	cat := domain.Category{UserID: userID, Name: req.Name, Icon: req.Icon}
	if req.Color != "" {
		cat.Color = req.Color
	}
	if err := db.Create(&cat).Error; err != nil {
		// concurrent create for the same name loses to the composite index
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			fieldErrors(c, map[string]string{"name": "A category with this name already exists"})
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Error("Category create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save category"})
		return
	}
	utils.InvalidateUser(context.Background(), rdb, userID, time.Now().UTC())
	logrus.WithFields(logrus.Fields{"user_id": userID, "category_id": cat.ID, "name": cat.Name}).Info("Category created")
	c.JSON(http.StatusCreated, gin.H{"category": CategoryResponse{ID: cat.ID, Name: cat.Name, Color: cat.Color, Icon: cat.Icon}})
}

func updateCategory(c *gin.Context, db *gorm.DB, rdb *redis.Client, userID uint, req *MutateCategoryRequest) {
	var existing domain.Category
	if err := db.Where("id = ? AND user_id = ?", req.ID, userID).First(&existing).Error; err != nil {
		notFound(c)
		return
	}
	if errs := validateCategoryFields(db, userID, req, existing.ID); errs != nil {
		fieldErrors(c, errs)
		return
	}
	updates := map[string]any{"name": req.Name, "icon": req.Icon}
	if req.Color != "" {
		updates["color"] = req.Color
	}
	if err := db.Model(&existing).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save category"})
		return
	}
	utils.InvalidateUser(context.Background(), rdb, userID, time.Now().UTC())
	c.JSON(http.StatusOK, gin.H{"category": CategoryResponse{ID: existing.ID, Name: req.Name, Color: req.Color, Icon: req.Icon}})
}

func deleteCategory(c *gin.Context, db *gorm.DB, rdb *redis.Client, userID uint, id uint) {
	var existing domain.Category
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&existing).Error; err != nil {
		notFound(c)
		return
	}
	// dependent-count check: a category in use cannot be removed
	var dependents int64
	if err := db.Model(&domain.Transaction{}).
		Where("user_id = ? AND category_id = ?", userID, id).
		Count(&dependents).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}
	if dependents > 0 {
		fieldErrors(c, map[string]string{"category": "This category still has transactions; reassign them first"})
		return
	}
	if err := db.Delete(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}
	utils.InvalidateUser(context.Background(), rdb, userID, time.Now().UTC())
	logrus.WithFields(logrus.Fields{"user_id": userID, "category_id": id}).Info("Category deleted")
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
