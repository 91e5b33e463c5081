package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"finsight/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        email,
		Password:     string(hash),
		BaseCurrency: "USD",
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAccount creates an active account of the given type with zero balance.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID string, accountType models.AccountType) *models.Account {
	t.Helper()
	return CreateTestAccountWithBalance(t, db, userID, accountType, 0)
}

// CreateTestAccountWithBalance creates an account seeded with the given balance.
// InitialBalance is set to the same figure so replay and stored balance agree.
func CreateTestAccountWithBalance(t *testing.T, db *gorm.DB, userID string, accountType models.AccountType, balance float64) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:         userID,
		Name:           fmt.Sprintf("Test Account %d", nextID()),
		Type:           accountType,
		Balance:        balance,
		InitialBalance: balance,
		Currency:       "USD",
		IsActive:       true,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestTransaction creates a transaction of the given type, amount, and category
// dated today.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, accountID string, txType models.TransactionType, amount float64, category string) *models.Transaction {
	t.Helper()
	return CreateTestTransactionOnDate(t, db, userID, accountID, txType, amount, category, time.Now().Format("2006-01-02"))
}

// CreateTestTransactionOnDate creates a transaction on a specific ISO date.
func CreateTestTransactionOnDate(t *testing.T, db *gorm.DB, userID, accountID string, txType models.TransactionType, amount float64, category, date string) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:        userID,
		AccountID:     accountID,
		Type:          txType,
		NumericAmount: amount,
		Currency:      "USD",
		Date:          date,
		Category:      category,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestBudget creates an expense budget for the given category.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, category string, limit float64) *models.BudgetCategory {
	t.Helper()

	budget := &models.BudgetCategory{
		UserID:   userID,
		Category: category,
		Limit:    limit,
		Type:     models.BudgetTypeExpense,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestBusiness creates a business entity for the user.
func CreateTestBusiness(t *testing.T, db *gorm.DB, userID string) *models.BusinessEntity {
	t.Helper()

	entity := &models.BusinessEntity{
		UserID: userID,
		Name:   fmt.Sprintf("Test Business %d", nextID()),
		Type:   models.EntityTypeLLC,
	}
	if err := db.Create(entity).Error; err != nil {
		t.Fatalf("failed to create test business: %v", err)
	}
	return entity
}

// CreateTestMetric creates an active higher-is-better KPI with full thresholds.
func CreateTestMetric(t *testing.T, db *gorm.DB, userID, metricID string, value, target, warning float64) *models.BusinessMetric {
	t.Helper()

	metric := &models.BusinessMetric{
		UserID:         userID,
		MetricID:       metricID,
		Name:           metricID,
		Value:          value,
		Target:         &target,
		Warning:        &warning,
		HigherIsBetter: true,
		Weight:         1,
		IsActive:       true,
	}
	if err := db.Create(metric).Error; err != nil {
		t.Fatalf("failed to create test metric: %v", err)
	}
	return metric
}

// CreateTestInvestment creates an investment holding for the user.
func CreateTestInvestment(t *testing.T, db *gorm.DB, userID string) *models.Investment {
	t.Helper()

	n := nextID()
	inv := &models.Investment{
		UserID:       userID,
		Symbol:       fmt.Sprintf("TST%d", n),
		Name:         fmt.Sprintf("Test Stock %d", n),
		Quantity:     10.0,
		CostBasis:    1000,
		CurrentPrice: 110,
		CurrentValue: 1100,
		Currency:     "USD",
		LastUpdated:  time.Now(),
	}
	if err := db.Create(inv).Error; err != nil {
		t.Fatalf("failed to create test investment: %v", err)
	}
	return inv
}
