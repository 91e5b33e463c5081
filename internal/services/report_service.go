package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "finsight/internal/errors"
	"finsight/internal/metrics"
	"finsight/internal/models"
	"finsight/internal/reports"
)

// reportService loads a user's records and hands them to the report
// engine. All computation lives in the engine; this layer only does
// I/O and error mapping.
type reportService struct {
	db     *gorm.DB
	users  UserServicer
	rates  RatesProvider
	engine *reports.Engine
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB, users UserServicer, rates RatesProvider) ReportServicer {
	return &reportService{
		db:     db,
		users:  users,
		rates:  rates,
		engine: reports.NewEngine(nil),
	}
}

// Generate builds a point-in-time snapshot for the requested scope and
// period.
func (s *reportService) Generate(ctx context.Context, userID string, scope reports.Scope, period reports.Period, customRange *metrics.DateWindow) (*reports.Snapshot, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	in, err := s.loadInputs(userID)
	if err != nil {
		return nil, err
	}

	in.Rates, err = loadRates(ctx, s.rates)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.engine.Generate(reports.Params{
		Scope:        scope,
		Period:       period,
		BaseCurrency: user.BaseCurrency,
		CustomRange:  customRange,
		AsOf:         time.Now(),
	}, in)
	if err != nil {
		var unknown *metrics.UnknownCurrencyError
		if errors.As(err, &unknown) {
			return nil, currencyErr(err)
		}
		return nil, apperrors.Wrap(apperrors.ErrInvalidReportRange, err)
	}
	return snapshot, nil
}

func (s *reportService) loadInputs(userID string) (reports.Inputs, error) {
	var in reports.Inputs

	if err := s.db.Where("user_id = ? AND is_active = ?", userID, true).Find(&in.Accounts).Error; err != nil {
		return in, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Where("user_id = ?", userID).Find(&in.Transactions).Error; err != nil {
		return in, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Where("user_id = ?", userID).Order("category").Find(&in.Budgets).Error; err != nil {
		return in, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Where("user_id = ?", userID).Find(&in.Investments).Error; err != nil {
		return in, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Where("user_id = ?", userID).Order("name").Find(&in.Entities).Error; err != nil {
		return in, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var mappings []models.CategoryMapping
	if err := s.db.Where("user_id = ?", userID).Find(&mappings).Error; err != nil {
		return in, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	in.Categories = make(metrics.CategoryMap, len(mappings))
	for i := range mappings {
		m := &mappings[i]
		in.Categories[m.BudgetCategory] = append(in.Categories[m.BudgetCategory], m.TransactionCategory)
	}

	return in, nil
}
