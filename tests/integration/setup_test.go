package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"finsight/internal/handlers"
	"finsight/internal/logger"
	"finsight/internal/metrics"
	"finsight/internal/middleware"
	"finsight/internal/models"
	"finsight/internal/services"
	"finsight/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// fixedRates is a deterministic stand-in for the FX client so tests
// never touch the network.
type fixedRates struct{}

func (fixedRates) Rates(_ context.Context) (metrics.Rates, error) {
	return metrics.Rates{"USD": 1, "EUR": 0.85, "GBP": 0.75}, nil
}

func (fixedRates) Base() string { return "USD" }

var _ services.RatesProvider = fixedRates{}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Account{},
		&models.Transaction{},
		&models.BudgetCategory{},
		&models.CategoryMapping{},
		&models.BusinessEntity{},
		&models.BusinessMetric{},
		&models.Investment{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)
	rates := fixedRates{}

	// Services
	userService := services.NewUserService(db)
	accountService := services.NewAccountService(db)
	transactionService := services.NewTransactionService(db, accountService)
	budgetService := services.NewBudgetService(db, userService, rates)
	businessService := services.NewBusinessService(db, userService, rates)
	investmentService := services.NewInvestmentService(db, userService, rates)
	insightService := services.NewInsightService(db, userService, rates)
	reportService := services.NewReportService(db, userService, rates)
	auditService := services.NewAuditService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	accountHandler := handlers.NewAccountHandler(accountService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	businessHandler := handlers.NewBusinessHandler(businessService, auditService)
	investmentHandler := handlers.NewInvestmentHandler(investmentService, auditService)
	insightHandler := handlers.NewInsightHandler(insightService)
	reportHandler := handlers.NewReportHandler(reportService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile/base-currency", authHandler.UpdateBaseCurrency)

	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetUserAccounts)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeactivateAccount)
	accounts.GET("/:id/reconcile", accountHandler.Reconcile)
	accounts.POST("/:id/reconcile", accountHandler.RepairDrift)
	accounts.GET("/:id/transactions", transactionHandler.GetAccountTransactions)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/export", transactionHandler.ExportTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.POST("/mappings", budgetHandler.CreateMapping)
	budgets.GET("/mappings", budgetHandler.ListMappings)
	budgets.DELETE("/mappings/:id", budgetHandler.DeleteMapping)
	budgets.GET("/:id", budgetHandler.GetBudgetByID)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

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

	investments := protected.Group("/investments")
	investments.POST("", investmentHandler.AddInvestment)
	investments.GET("", investmentHandler.GetUserInvestments)
	investments.GET("/summary", investmentHandler.GetPortfolioSummary)
	investments.GET("/:id", investmentHandler.GetInvestmentByID)
	investments.PUT("/:id/price", investmentHandler.UpdatePrice)
	investments.DELETE("/:id", investmentHandler.DeleteInvestment)

	insights := protected.Group("/insights")
	insights.GET("/net-worth", insightHandler.GetNetWorth)
	insights.GET("/health", insightHandler.GetHealthScore)

	protected.GET("/reports", reportHandler.GenerateReport)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// assertErrorCode checks the machine-readable code in an error response.
func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, code string) {
	t.Helper()
	result := parseJSON(t, rec)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %s", rec.Body.String())
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// createAccount creates an account and returns its ID.
func (app *testApp) createAccount(t *testing.T, token, name, accountType string, initialBalance float64) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"type":%q,"currency":"USD","initial_balance":%g}`, name, accountType, initialBalance)
	rec := app.request("POST", "/api/v1/accounts", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	account := result["account"].(map[string]interface{})
	return account["id"].(string)
}

// createTransaction records a transaction and returns its ID.
func (app *testApp) createTransaction(t *testing.T, token, accountID, txType string, amount float64, category, date string) string {
	t.Helper()
	body := fmt.Sprintf(`{"account_id":%q,"type":%q,"amount":%g,"category":%q,"date":%q}`,
		accountID, txType, amount, category, date)
	rec := app.request("POST", "/api/v1/transactions", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	tx := result["transaction"].(map[string]interface{})
	return tx["id"].(string)
}
