package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	apperrors "finsight/internal/errors"
	"finsight/internal/metrics"
	"finsight/internal/models"
)

// insightService computes cross-cutting derived figures: net worth and
// the financial health score.
type insightService struct {
	db    *gorm.DB
	users UserServicer
	rates RatesProvider
}

// NewInsightService creates a new InsightServicer.
func NewInsightService(db *gorm.DB, users UserServicer, rates RatesProvider) InsightServicer {
	return &insightService{db: db, users: users, rates: rates}
}

// GetNetWorth sums all account balances and holding values into the
// user's base currency, with a per-account-type breakdown.
func (s *insightService) GetNetWorth(ctx context.Context, userID string) (*NetWorthSummary, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	accounts, investments, err := s.loadHoldings(userID)
	if err != nil {
		return nil, err
	}

	rates, err := loadRates(ctx, s.rates)
	if err != nil {
		return nil, err
	}

	total, err := metrics.NetWorth(accounts, investments, user.BaseCurrency, rates)
	if err != nil {
		return nil, currencyErr(err)
	}

	byType, err := assetsByType(accounts, user.BaseCurrency, rates)
	if err != nil {
		return nil, err
	}

	return &NetWorthSummary{
		Total:     total,
		Formatted: metrics.FormatAmount(total, user.BaseCurrency),
		Currency:  user.BaseCurrency,
		ByType:    byType,
	}, nil
}

// GetHealthScore computes the composite financial health score from
// current balances and the trailing transaction history.
func (s *insightService) GetHealthScore(ctx context.Context, userID string) (*metrics.HealthScore, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	accounts, _, err := s.loadHoldings(userID)
	if err != nil {
		return nil, err
	}

	var transactions []models.Transaction
	if err := s.db.Where("user_id = ?", userID).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	rates, err := loadRates(ctx, s.rates)
	if err != nil {
		return nil, err
	}

	byType, err := assetsByType(accounts, user.BaseCurrency, rates)
	if err != nil {
		return nil, err
	}

	score, err := metrics.ComputeHealthScore(byType, transactions, user.BaseCurrency, rates, time.Now())
	if err != nil {
		return nil, currencyErr(err)
	}
	return score, nil
}

func (s *insightService) loadHoldings(userID string) ([]models.Account, []models.Investment, error) {
	var accounts []models.Account
	if err := s.db.Where("user_id = ? AND is_active = ?", userID, true).Find(&accounts).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var investments []models.Investment
	if err := s.db.Where("user_id = ?", userID).Find(&investments).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return accounts, investments, nil
}

// assetsByType rolls account balances up by account type, normalized to
// the base currency. Debt types keep their negative sign.
func assetsByType(accounts []models.Account, baseCurrency string, rates metrics.Rates) (map[models.AccountType]float64, error) {
	byType := make(map[models.AccountType]float64)
	for i := range accounts {
		amount, err := metrics.Convert(accounts[i].Balance, accounts[i].Currency, baseCurrency, rates)
		if err != nil {
			return nil, currencyErr(err)
		}
		byType[accounts[i].Type] += amount
	}
	return byType, nil
}
