package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"finsight/internal/config"
	"finsight/internal/database"
	"finsight/internal/fxrates"
	"finsight/internal/handlers"
	"finsight/internal/logger"
	"finsight/internal/middleware"
	"finsight/internal/services"
	"finsight/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "finsight/internal/docs" // Import swagger docs
)

// @title           Finsight API
// @version         1.0
// @description     Finsight is a personal and small-business finance tracker: accounts, transactions, budgets, business P&L, KPI health, investments, and multi-currency reports.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Exchange-rate client shared by every currency-aware service
	ratesClient := fxrates.NewClient(
		&http.Client{Timeout: 10 * time.Second},
		appConfig.FXBaseURL,
		appConfig.BaseCurrency,
		appConfig.FXCacheTTL,
		appConfig.FXCryptoPrices,
	)

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	accountService := services.NewAccountService(db)
	transactionService := services.NewTransactionService(db, accountService)
	budgetService := services.NewBudgetService(db, userService, ratesClient)
	businessService := services.NewBusinessService(db, userService, ratesClient)
	investmentService := services.NewInvestmentService(db, userService, ratesClient)
	insightService := services.NewInsightService(db, userService, ratesClient)
	reportService := services.NewReportService(db, userService, ratesClient)
	auditService := services.NewAuditService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	accountHandler := handlers.NewAccountHandler(accountService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	businessHandler := handlers.NewBusinessHandler(businessService, auditService)
	investmentHandler := handlers.NewInvestmentHandler(investmentService, auditService)
	insightHandler := handlers.NewInsightHandler(insightService)
	reportHandler := handlers.NewReportHandler(reportService)
	opsHandler := handlers.NewOpsHandler(ratesClient)

	// Register custom binding validators
	validator.Register()

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Ops routes, guarded by API key instead of a user token
	ops := v1.Group("/ops", middleware.OpsAuthMiddleware(appConfig.OpsAPIKey))
	ops.POST("/rates/refresh", opsHandler.RefreshRates)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile/base-currency", authHandler.UpdateBaseCurrency)

	// Account routes
	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetUserAccounts)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeactivateAccount)
	accounts.GET("/:id/reconcile", accountHandler.Reconcile)
	accounts.POST("/:id/reconcile", accountHandler.RepairDrift)
	accounts.GET("/:id/transactions", transactionHandler.GetAccountTransactions)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/export", transactionHandler.ExportTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Budget routes
	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.POST("/mappings", budgetHandler.CreateMapping)
	budgets.GET("/mappings", budgetHandler.ListMappings)
	budgets.DELETE("/mappings/:id", budgetHandler.DeleteMapping)
	budgets.GET("/:id", budgetHandler.GetBudgetByID)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	// Business routes
	businesses := protected.Group("/businesses")
	businesses.POST("", businessHandler.CreateEntity)
	businesses.GET("", businessHandler.GetEntities)
	businesses.GET("/health", businessHandler.GetHealth)
	businesses.POST("/metrics", businessHandler.CreateMetric)
	businesses.GET("/metrics", businessHandler.ListMetrics)
	businesses.PUT("/metrics/:metric_id/value", businessHandler.RecordMetricValue)
	businesses.DELETE("/metrics/:metric_id", businessHandler.DeleteMetric)
	businesses.GET("/:id", businessHandler.GetEntityByID)
	businesses.PUT("/:id", businessHandler.UpdateEntity)
	businesses.DELETE("/:id", businessHandler.DeleteEntity)

	// Investment routes
	investments := protected.Group("/investments")
	investments.POST("", investmentHandler.AddInvestment)
	investments.GET("", investmentHandler.GetUserInvestments)
	investments.GET("/summary", investmentHandler.GetPortfolioSummary)
	investments.GET("/:id", investmentHandler.GetInvestmentByID)
	investments.PUT("/:id/price", investmentHandler.UpdatePrice)
	investments.DELETE("/:id", investmentHandler.DeleteInvestment)

	// Insight routes
	insights := protected.Group("/insights")
	insights.GET("/net-worth", insightHandler.GetNetWorth)
	insights.GET("/health", insightHandler.GetHealthScore)

	// Report routes
	protected.GET("/reports", reportHandler.GenerateReport)

	log.Infof("Starting Finsight backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
