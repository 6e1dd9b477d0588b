package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"fintrack/internal/auth"
	dbpkg "fintrack/internal/db"
	"fintrack/internal/domain"
	"fintrack/internal/middleware"
	"fintrack/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

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

// newTestServer wires the full route table against sqlite and no redis.
func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)

	r := gin.New()
	r.POST("/signup", SignupHandler(db, testSecret))
	r.POST("/login", LoginHandler(db, testSecret))
	r.POST("/logout", LogoutHandler())

	app := r.Group("")
	app.Use(middleware.SessionMiddleware(testSecret))
	app.GET("/dashboard", DashboardHandler(db, nil))
	app.GET("/reports/monthly", MonthlyReportHandler(db, nil))
	app.GET("/transactions", ListTransactionsHandler(db))
	app.POST("/transactions", MutateTransactionHandler(db, nil))
	app.GET("/incomes", ListIncomesHandler(db))
	app.POST("/incomes", MutateIncomeHandler(db, nil))
	app.GET("/budgets", ListBudgetsHandler(db))
	app.GET("/budgets/current", GetBudgetHandler(db))
	app.POST("/budgets", MutateBudgetHandler(db, nil))
	app.GET("/categories", ListCategoriesHandler(db))
	app.POST("/categories", MutateCategoryHandler(db, nil))
	app.POST("/account", AccountHandler(db))
	return r, db
}

// signupTestUser registers a user directly and returns a session token.
func signupTestUser(t *testing.T, db *gorm.DB, email string) (*domain.User, string) {
	t.Helper()
	user, err := auth.CreateUser(db, email, "SuperSecret1")
	require.NoError(t, err)
	token, err := utils.GenerateToken(user.ID, testSecret)
	require.NoError(t, err)
	return user, token
}

// postForm performs an authenticated form POST.
func postForm(r *gin.Engine, token, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

// getPath performs an authenticated GET.
func getPath(r *gin.Engine, token, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

// categoryByName resolves one of the user's categories.
func categoryByName(t *testing.T, db *gorm.DB, userID uint, name string) *domain.Category {
	t.Helper()
	var cat domain.Category
	require.NoError(t, db.Where("user_id = ? AND name = ?", userID, name).First(&cat).Error)
	return &cat
}
