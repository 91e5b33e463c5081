package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "finsight/internal/errors"
	"finsight/internal/metrics"
	"finsight/internal/models"
	"finsight/internal/pagination"
)

// investmentService handles investment-related business logic.
type investmentService struct {
	db    *gorm.DB
	users UserServicer
	rates RatesProvider
}

// NewInvestmentService creates a new InvestmentServicer.
func NewInvestmentService(db *gorm.DB, users UserServicer, rates RatesProvider) InvestmentServicer {
	return &investmentService{db: db, users: users, rates: rates}
}

// AddInvestment records a new holding. CurrentValue is derived from
// quantity and price at creation.
func (s *investmentService) AddInvestment(userID string, in InvestmentInput) (*models.Investment, error) {
	if in.Symbol == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "symbol is required")
	}
	if in.Quantity < 0 || in.CostBasis < 0 || in.CurrentPrice < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "quantity, cost basis, and price must be non-negative")
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}

	inv := &models.Investment{
		UserID:       userID,
		AccountID:    in.AccountID,
		Symbol:       in.Symbol,
		Name:         in.Name,
		Quantity:     in.Quantity,
		CostBasis:    in.CostBasis,
		CurrentPrice: in.CurrentPrice,
		CurrentValue: in.Quantity * in.CurrentPrice,
		Currency:     in.Currency,
		LastUpdated:  time.Now(),
	}
	if err := s.db.Create(inv).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return inv, nil
}

// GetUserInvestments retrieves a paginated list of the user's holdings.
func (s *investmentService) GetUserInvestments(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Investment], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Investment{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var investments []models.Investment
	if err := base.Scopes(pagination.Paginate(page)).Order("symbol").Find(&investments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(investments, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetInvestmentByID retrieves a holding by ID for a specific user.
func (s *investmentService) GetInvestmentByID(userID, investmentID string) (*models.Investment, error) {
	var inv models.Investment
	if err := s.db.Where("id = ? AND user_id = ?", investmentID, userID).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvestmentNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &inv, nil
}

// UpdatePrice records a manual price update and recomputes the
// holding's current value.
func (s *investmentService) UpdatePrice(userID, investmentID string, price float64) (*models.Investment, error) {
	if price < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "price must be non-negative")
	}

	inv, err := s.GetInvestmentByID(userID, investmentID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"current_price": price,
		"current_value": inv.Quantity * price,
		"last_updated":  now,
	}
	if err := s.db.Model(inv).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	inv.CurrentPrice = price
	inv.CurrentValue = inv.Quantity * price
	inv.LastUpdated = now
	return inv, nil
}

// DeleteInvestment removes a holding.
func (s *investmentService) DeleteInvestment(userID, investmentID string) error {
	inv, err := s.GetInvestmentByID(userID, investmentID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(inv).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetPortfolioSummary aggregates every holding into the user's base
// currency. PnLPct is 0 when the total cost basis is 0.
func (s *investmentService) GetPortfolioSummary(ctx context.Context, userID string) (*PortfolioSummary, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	var investments []models.Investment
	if err := s.db.Where("user_id = ?", userID).Find(&investments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &PortfolioSummary{
		Currency: user.BaseCurrency,
		Holdings: len(investments),
	}
	if len(investments) == 0 {
		return summary, nil
	}

	rates, err := loadRates(ctx, s.rates)
	if err != nil {
		return nil, err
	}

	for i := range investments {
		inv := &investments[i]

		value, err := metrics.Convert(inv.CurrentValue, inv.Currency, user.BaseCurrency, rates)
		if err != nil {
			return nil, currencyErr(err)
		}
		cost, err := metrics.Convert(inv.CostBasis, inv.Currency, user.BaseCurrency, rates)
		if err != nil {
			return nil, currencyErr(err)
		}

		summary.TotalValue += value
		summary.TotalCost += cost
	}

	summary.UnrealizedPnL = summary.TotalValue - summary.TotalCost
	if summary.TotalCost != 0 {
		summary.PnLPct = summary.UnrealizedPnL / summary.TotalCost * 100
	}

	return summary, nil
}
