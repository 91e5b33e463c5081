package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "finsight/internal/errors"
	"finsight/internal/metrics"
	"finsight/internal/models"
)

// businessService handles business entities and their KPIs.
type businessService struct {
	db    *gorm.DB
	users UserServicer
	rates RatesProvider
}

// NewBusinessService creates a new BusinessServicer.
func NewBusinessService(db *gorm.DB, users UserServicer, rates RatesProvider) BusinessServicer {
	return &businessService{db: db, users: users, rates: rates}
}

// CreateEntity creates a business entity, optionally nested under a
// parent entity owned by the same user.
func (s *businessService) CreateEntity(userID, name string, entityType models.EntityType, parentID *string) (*models.BusinessEntity, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "business name is required")
	}

	if parentID != nil {
		if _, err := s.getEntity(userID, *parentID); err != nil {
			return nil, err
		}
	}

	entity := &models.BusinessEntity{
		UserID:   userID,
		Name:     name,
		Type:     entityType,
		ParentID: parentID,
	}
	if err := s.db.Create(entity).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return entity, nil
}

// GetEntities returns the user's business entities with P&L metrics
// recomputed over the given window (nil means all-time), in the user's
// base currency.
func (s *businessService) GetEntities(ctx context.Context, userID string, window *metrics.DateWindow) ([]models.BusinessEntity, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	var entities []models.BusinessEntity
	if err := s.db.Where("user_id = ?", userID).Order("name").Find(&entities).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(entities) == 0 {
		return entities, nil
	}

	var transactions []models.Transaction
	if err := s.db.Where("user_id = ? AND business_id IS NOT NULL", userID).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	rates, err := loadRates(ctx, s.rates)
	if err != nil {
		return nil, err
	}

	enriched, err := metrics.ComputeEntityMetrics(entities, transactions, user.BaseCurrency, rates, window)
	if err != nil {
		return nil, currencyErr(err)
	}
	return enriched, nil
}

// GetEntityByID returns one entity with all-time metrics.
func (s *businessService) GetEntityByID(ctx context.Context, userID, entityID string) (*models.BusinessEntity, error) {
	entity, err := s.getEntity(userID, entityID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	var transactions []models.Transaction
	if err := s.db.Where("user_id = ? AND business_id = ?", userID, entityID).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	rates, err := loadRates(ctx, s.rates)
	if err != nil {
		return nil, err
	}

	enriched, err := metrics.ComputeEntityMetrics([]models.BusinessEntity{*entity}, transactions, user.BaseCurrency, rates, nil)
	if err != nil {
		return nil, currencyErr(err)
	}
	return &enriched[0], nil
}

// UpdateEntity updates an entity's name, type, or parent. An entity can
// never be its own parent.
func (s *businessService) UpdateEntity(userID, entityID string, name *string, entityType *models.EntityType, parentID *string) (*models.BusinessEntity, error) {
	entity, err := s.getEntity(userID, entityID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != nil && *name != "" {
		updates["name"] = *name
	}
	if entityType != nil {
		updates["type"] = *entityType
	}
	if parentID != nil {
		if *parentID == "" {
			updates["parent_id"] = nil
		} else {
			if *parentID == entityID {
				return nil, apperrors.ErrSelfParentBusiness
			}
			if _, err := s.getEntity(userID, *parentID); err != nil {
				return nil, err
			}
			updates["parent_id"] = *parentID
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(entity).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", entity.ID).First(entity).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return entity, nil
}

// DeleteEntity removes an entity. Its transactions are untagged rather
// than deleted; children are detached from the parent.
func (s *businessService) DeleteEntity(userID, entityID string) error {
	entity, err := s.getEntity(userID, entityID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Transaction{}).
			Where("user_id = ? AND business_id = ?", userID, entityID).
			Update("business_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Model(&models.BusinessEntity{}).
			Where("user_id = ? AND parent_id = ?", userID, entityID).
			Update("parent_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("user_id = ? AND business_id = ?", userID, entityID).
			Delete(&models.BusinessMetric{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(entity).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// CreateMetric registers a KPI definition.
func (s *businessService) CreateMetric(userID string, in MetricInput) (*models.BusinessMetric, error) {
	if in.MetricID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "metric ID is required")
	}
	if in.Name == "" {
		in.Name = in.MetricID
	}
	if in.Weight <= 0 {
		in.Weight = 1
	}
	if in.BusinessID != nil {
		if _, err := s.getEntity(userID, *in.BusinessID); err != nil {
			return nil, err
		}
	}

	var count int64
	s.db.Model(&models.BusinessMetric{}).
		Where("user_id = ? AND metric_id = ?", userID, in.MetricID).
		Count(&count)
	if count > 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "a metric with this ID already exists")
	}

	metric := &models.BusinessMetric{
		UserID:         userID,
		BusinessID:     in.BusinessID,
		MetricID:       in.MetricID,
		Name:           in.Name,
		Unit:           in.Unit,
		Value:          in.Value,
		Target:         in.Target,
		Warning:        in.Warning,
		Critical:       in.Critical,
		HigherIsBetter: in.HigherIsBetter,
		Weight:         in.Weight,
		IsActive:       true,
	}
	if err := s.db.Create(metric).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return metric, nil
}

// ListMetrics returns the user's KPI definitions, optionally scoped to
// one business entity.
func (s *businessService) ListMetrics(userID string, businessID *string) ([]models.BusinessMetric, error) {
	query := s.db.Where("user_id = ?", userID)
	if businessID != nil {
		query = query.Where("business_id = ?", *businessID)
	}

	var list []models.BusinessMetric
	if err := query.Order("metric_id").Find(&list).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return list, nil
}

// RecordMetricValue stores the latest raw reading for a KPI.
func (s *businessService) RecordMetricValue(userID, metricID string, value float64) (*models.BusinessMetric, error) {
	var metric models.BusinessMetric
	if err := s.db.Where("user_id = ? AND metric_id = ?", userID, metricID).First(&metric).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMetricNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Model(&metric).Update("value", value).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	metric.Value = value
	return &metric, nil
}

// DeleteMetric removes a KPI definition.
func (s *businessService) DeleteMetric(userID, metricID string) error {
	result := s.db.Where("user_id = ? AND metric_id = ?", userID, metricID).Delete(&models.BusinessMetric{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrMetricNotFound
	}
	return nil
}

// GetHealth evaluates every active KPI and rolls the scores into a
// single weighted composite, optionally scoped to one business.
func (s *businessService) GetHealth(userID string, businessID *string) (*metrics.BusinessHealth, error) {
	list, err := s.ListMetrics(userID, businessID)
	if err != nil {
		return nil, err
	}

	health := metrics.ComputeBusinessHealth(list)
	return &health, nil
}

func (s *businessService) getEntity(userID, entityID string) (*models.BusinessEntity, error) {
	var entity models.BusinessEntity
	if err := s.db.Where("id = ? AND user_id = ?", entityID, userID).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBusinessNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &entity, nil
}
