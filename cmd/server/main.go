package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging

	"fintrack/internal/advisor"   // Chat advisory proxy
	"fintrack/internal/api"       // API handlers
	"fintrack/internal/config"    // Configuration
	"fintrack/internal/middleware" // Session middleware

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration; fails fast on missing secrets

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the database; TranslateError maps driver duplicate-key
	// failures onto gorm.ErrDuplicatedKey for the conflict paths.
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}

	// Setup Redis client for dashboard/report caching
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Advisory provider client
	adv := advisor.New(cfg.OpenAIKey, cfg.OpenAIModel)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default()
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes (no session required)
	r.POST("/signup", api.SignupHandler(db, cfg.SessionSecret))
	r.POST("/login", api.LoginHandler(db, cfg.SessionSecret))
	r.POST("/logout", api.LogoutHandler())

	// Session-protected application routes
	app := r.Group("")
	app.Use(middleware.SessionMiddleware(cfg.SessionSecret))
	app.GET("/dashboard", api.DashboardHandler(db, redisClient))
	app.GET("/reports/monthly", api.MonthlyReportHandler(db, redisClient))

	app.GET("/transactions", api.ListTransactionsHandler(db))
	app.POST("/transactions", api.MutateTransactionHandler(db, redisClient))
	app.GET("/incomes", api.ListIncomesHandler(db))
	app.POST("/incomes", api.MutateIncomeHandler(db, redisClient))
	app.GET("/budgets", api.ListBudgetsHandler(db))
	app.GET("/budgets/current", api.GetBudgetHandler(db))
	app.POST("/budgets", api.MutateBudgetHandler(db, redisClient))
	app.GET("/categories", api.ListCategoriesHandler(db))
	app.POST("/categories", api.MutateCategoryHandler(db, redisClient))
	app.POST("/account", api.AccountHandler(db))

	// Advisory chat (API path, 401 instead of redirect)
	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.SessionMiddleware(cfg.SessionSecret))
	apiGroup.POST("/chat", api.ChatHandler(db, adv))

	log.Println("Server running on " + cfg.AppPort)
	r.Run(":" + cfg.AppPort) // Start the server on port cfg.AppPort
}
