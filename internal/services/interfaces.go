package services

import (
	"context"

	"gorm.io/gorm"

	"finsight/internal/metrics"
	"finsight/internal/models"
	"finsight/internal/pagination"
	"finsight/internal/reports"
)

// RatesProvider supplies the exchange-rate table used to normalize
// amounts into a user's base currency. *fxrates.Client satisfies it;
// tests substitute a fixed table.
type RatesProvider interface {
	Rates(ctx context.Context) (metrics.Rates, error)
	Base() string
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName, baseCurrency string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
	UpdateBaseCurrency(userID, currency string) (*models.User, error)
}

// AccountUpdateFields holds the optional fields for an account update.
// Nil fields are left unchanged.
type AccountUpdateFields struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// ReconcileResult compares an account's stored balance against a full
// replay of its transaction history.
type ReconcileResult struct {
	AccountID string  `json:"account_id"`
	Stored    float64 `json:"stored"`
	Replayed  float64 `json:"replayed"`
	Drift     float64 `json:"drift"`
	InSync    bool    `json:"in_sync"`
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(userID, name, description string, accountType models.AccountType, currency string, initialBalance float64) (*models.Account, error)
	GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(userID, accountID string) (*models.Account, error)
	UpdateAccount(userID, accountID string, fields AccountUpdateFields) (*models.Account, error)
	DeactivateAccount(userID, accountID string) error
	Reconcile(userID, accountID string) (*ReconcileResult, error)
	RepairDrift(userID, accountID string) (*ReconcileResult, error)
	ApplyTransaction(tx *gorm.DB, account *models.Account, transactionType models.TransactionType, amount float64) error
}

// TransactionInput carries the fields for creating a transaction.
type TransactionInput struct {
	AccountID         string
	BusinessID        *string
	Type              models.TransactionType
	Amount            float64
	Currency          string
	Date              string
	Category          string
	Merchant          string
	Notes             string
	IsRecurring       bool
	RecurringInterval string
}

// TransactionUpdate holds the optional fields for a transaction update.
// Nil fields are left unchanged; the account is never changeable.
type TransactionUpdate struct {
	Type       *models.TransactionType
	Amount     *float64
	Date       *string
	Category   *string
	Merchant   *string
	Notes      *string
	BusinessID *string
}

// TransactionFilter holds optional filter parameters for listing transactions.
// Dates are inclusive ISO YYYY-MM-DD bounds.
type TransactionFilter struct {
	FromDate   *string
	ToDate     *string
	Type       *models.TransactionType
	Category   *string
	AccountID  *string
	BusinessID *string
	MinAmount  *float64
	MaxAmount  *float64
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, in TransactionInput) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetAccountTransactions(userID, accountID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, in TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
	ListForExport(userID string, filter TransactionFilter) ([]models.Transaction, map[string]string, error)
}

// BudgetUpdateFields holds the optional fields for a budget update.
type BudgetUpdateFields struct {
	Limit *float64
	Icon  *string
	Color *string
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID, category string, limit float64, budgetType models.BudgetType, icon, color string) (*models.BudgetCategory, error)
	GetBudgetsWithSpent(ctx context.Context, userID string) ([]models.BudgetCategory, error)
	GetBudgetByID(userID, budgetID string) (*models.BudgetCategory, error)
	UpdateBudget(userID, budgetID string, fields BudgetUpdateFields) (*models.BudgetCategory, error)
	DeleteBudget(userID, budgetID string) error
	CreateMapping(userID, budgetCategory, transactionCategory string) (*models.CategoryMapping, error)
	ListMappings(userID string) ([]models.CategoryMapping, error)
	DeleteMapping(userID, mappingID string) error
}

// MetricInput carries the fields for creating a KPI definition.
type MetricInput struct {
	BusinessID     *string
	MetricID       string
	Name           string
	Unit           string
	Value          float64
	Target         *float64
	Warning        *float64
	Critical       *float64
	HigherIsBetter bool
	Weight         float64
}

// BusinessServicer defines the contract for business entities and KPIs.
type BusinessServicer interface {
	CreateEntity(userID, name string, entityType models.EntityType, parentID *string) (*models.BusinessEntity, error)
	GetEntities(ctx context.Context, userID string, window *metrics.DateWindow) ([]models.BusinessEntity, error)
	GetEntityByID(ctx context.Context, userID, entityID string) (*models.BusinessEntity, error)
	UpdateEntity(userID, entityID string, name *string, entityType *models.EntityType, parentID *string) (*models.BusinessEntity, error)
	DeleteEntity(userID, entityID string) error
	CreateMetric(userID string, in MetricInput) (*models.BusinessMetric, error)
	ListMetrics(userID string, businessID *string) ([]models.BusinessMetric, error)
	RecordMetricValue(userID, metricID string, value float64) (*models.BusinessMetric, error)
	DeleteMetric(userID, metricID string) error
	GetHealth(userID string, businessID *string) (*metrics.BusinessHealth, error)
}

// InvestmentInput carries the fields for creating a holding.
type InvestmentInput struct {
	AccountID    *string
	Symbol       string
	Name         string
	Quantity     float64
	CostBasis    float64
	CurrentPrice float64
	Currency     string
}

// PortfolioSummary aggregates all holdings into the user's base currency.
type PortfolioSummary struct {
	Currency      string  `json:"currency"`
	TotalValue    float64 `json:"total_value"`
	TotalCost     float64 `json:"total_cost"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
	PnLPct        float64 `json:"pnl_pct"`
	Holdings      int     `json:"holdings"`
}

// InvestmentServicer defines the contract for investment-related business logic.
type InvestmentServicer interface {
	AddInvestment(userID string, in InvestmentInput) (*models.Investment, error)
	GetUserInvestments(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Investment], error)
	GetInvestmentByID(userID, investmentID string) (*models.Investment, error)
	UpdatePrice(userID, investmentID string, price float64) (*models.Investment, error)
	DeleteInvestment(userID, investmentID string) error
	GetPortfolioSummary(ctx context.Context, userID string) (*PortfolioSummary, error)
}

// NetWorthSummary is the total across accounts and holdings plus the
// per-account-type breakdown, all in the user's base currency.
type NetWorthSummary struct {
	Total     float64                        `json:"total"`
	Formatted string                         `json:"formatted"`
	Currency  string                         `json:"currency"`
	ByType    map[models.AccountType]float64 `json:"by_type"`
}

// InsightServicer defines the contract for cross-cutting derived figures.
type InsightServicer interface {
	GetNetWorth(ctx context.Context, userID string) (*NetWorthSummary, error)
	GetHealthScore(ctx context.Context, userID string) (*metrics.HealthScore, error)
}

// ReportServicer defines the contract for report snapshot generation.
type ReportServicer interface {
	Generate(ctx context.Context, userID string, scope reports.Scope, period reports.Period, customRange *metrics.DateWindow) (*reports.Snapshot, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
