package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "finsight/internal/errors"
	"finsight/internal/metrics"
	"finsight/internal/models"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db    *gorm.DB
	users UserServicer
	rates RatesProvider
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, users UserServicer, rates RatesProvider) BudgetServicer {
	return &budgetService{db: db, users: users, rates: rates}
}

// CreateBudget creates a monthly budget for a category. One budget per
// category and direction per user.
func (s *budgetService) CreateBudget(userID, category string, limit float64, budgetType models.BudgetType, icon, color string) (*models.BudgetCategory, error) {
	if category == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	if limit < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit must be non-negative")
	}
	if budgetType != models.BudgetTypeIncome && budgetType != models.BudgetTypeExpense {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget type must be income or expense")
	}

	var count int64
	s.db.Model(&models.BudgetCategory{}).
		Where("user_id = ? AND category = ? AND type = ?", userID, category, budgetType).
		Count(&count)
	if count > 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "a budget for this category already exists")
	}

	budget := &models.BudgetCategory{
		UserID:   userID,
		Category: category,
		Limit:    limit,
		Type:     budgetType,
		Icon:     icon,
		Color:    color,
	}
	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

// GetBudgetsWithSpent returns the user's budgets with the Spent field
// recomputed from the current month's transactions, normalized to the
// user's base currency.
func (s *budgetService) GetBudgetsWithSpent(ctx context.Context, userID string) ([]models.BudgetCategory, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	var budgets []models.BudgetCategory
	if err := s.db.Where("user_id = ?", userID).Order("category").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(budgets) == 0 {
		return budgets, nil
	}

	now := time.Now()
	monthStart := now.Format("2006-01") + "-01"
	var transactions []models.Transaction
	if err := s.db.Where("user_id = ? AND date >= ?", userID, monthStart).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	categories, err := s.loadCategoryMap(userID)
	if err != nil {
		return nil, err
	}

	rates, err := loadRates(ctx, s.rates)
	if err != nil {
		return nil, err
	}

	withSpent, err := metrics.ComputeSpent(budgets, transactions, user.BaseCurrency, rates, now, categories)
	if err != nil {
		return nil, currencyErr(err)
	}
	return withSpent, nil
}

// GetBudgetByID retrieves a budget by ID for a specific user.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.BudgetCategory, error) {
	var budget models.BudgetCategory
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget updates a budget's limit and presentation fields. The
// category itself is immutable; delete and recreate to rename.
func (s *budgetService) UpdateBudget(userID, budgetID string, fields BudgetUpdateFields) (*models.BudgetCategory, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Limit != nil {
		if *fields.Limit < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit must be non-negative")
		}
		updates["limit_amount"] = *fields.Limit
	}
	if fields.Icon != nil {
		updates["icon"] = *fields.Icon
	}
	if fields.Color != nil {
		updates["color"] = *fields.Color
	}

	if len(updates) > 0 {
		if err := s.db.Model(budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", budget.ID).First(budget).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return budget, nil
}

// DeleteBudget removes a budget and its category mappings.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND budget_category = ?", userID, budget.Category).
			Delete(&models.CategoryMapping{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(budget).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// CreateMapping adds an exact-match alias from a raw transaction
// category to a budget category.
func (s *budgetService) CreateMapping(userID, budgetCategory, transactionCategory string) (*models.CategoryMapping, error) {
	if budgetCategory == "" || transactionCategory == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "both categories are required")
	}

	mapping := &models.CategoryMapping{
		UserID:              userID,
		BudgetCategory:      budgetCategory,
		TransactionCategory: transactionCategory,
	}
	if err := s.db.Create(mapping).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return mapping, nil
}

// ListMappings returns all of the user's category mappings.
func (s *budgetService) ListMappings(userID string) ([]models.CategoryMapping, error) {
	var mappings []models.CategoryMapping
	if err := s.db.Where("user_id = ?", userID).
		Order("budget_category, transaction_category").
		Find(&mappings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return mappings, nil
}

// DeleteMapping removes a category mapping.
func (s *budgetService) DeleteMapping(userID, mappingID string) error {
	result := s.db.Where("id = ? AND user_id = ?", mappingID, userID).Delete(&models.CategoryMapping{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrMappingNotFound
	}
	return nil
}

func (s *budgetService) loadCategoryMap(userID string) (metrics.CategoryMap, error) {
	var mappings []models.CategoryMapping
	if err := s.db.Where("user_id = ?", userID).Find(&mappings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	categories := make(metrics.CategoryMap, len(mappings))
	for i := range mappings {
		m := &mappings[i]
		categories[m.BudgetCategory] = append(categories[m.BudgetCategory], m.TransactionCategory)
	}
	return categories, nil
}
