package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "finsight/internal/errors"
	"finsight/internal/metrics"
	"finsight/internal/models"
	"finsight/internal/services"
)

// --- mock business service ---

type mockBusinessService struct {
	createEntityFn      func(userID, name string, entityType models.EntityType, parentID *string) (*models.BusinessEntity, error)
	getEntitiesFn       func(ctx context.Context, userID string, window *metrics.DateWindow) ([]models.BusinessEntity, error)
	getEntityByIDFn     func(ctx context.Context, userID, entityID string) (*models.BusinessEntity, error)
	updateEntityFn      func(userID, entityID string, name *string, entityType *models.EntityType, parentID *string) (*models.BusinessEntity, error)
	deleteEntityFn      func(userID, entityID string) error
	createMetricFn      func(userID string, in services.MetricInput) (*models.BusinessMetric, error)
	listMetricsFn       func(userID string, businessID *string) ([]models.BusinessMetric, error)
	recordMetricValueFn func(userID, metricID string, value float64) (*models.BusinessMetric, error)
	deleteMetricFn      func(userID, metricID string) error
	getHealthFn         func(userID string, businessID *string) (*metrics.BusinessHealth, error)
}

func (m *mockBusinessService) CreateEntity(userID, name string, entityType models.EntityType, parentID *string) (*models.BusinessEntity, error) {
	if m.createEntityFn != nil {
		return m.createEntityFn(userID, name, entityType, parentID)
	}
	return &models.BusinessEntity{}, nil
}

func (m *mockBusinessService) GetEntities(ctx context.Context, userID string, window *metrics.DateWindow) ([]models.BusinessEntity, error) {
	if m.getEntitiesFn != nil {
		return m.getEntitiesFn(ctx, userID, window)
	}
	return []models.BusinessEntity{}, nil
}

func (m *mockBusinessService) GetEntityByID(ctx context.Context, userID, entityID string) (*models.BusinessEntity, error) {
	if m.getEntityByIDFn != nil {
		return m.getEntityByIDFn(ctx, userID, entityID)
	}
	return &models.BusinessEntity{}, nil
}

func (m *mockBusinessService) UpdateEntity(userID, entityID string, name *string, entityType *models.EntityType, parentID *string) (*models.BusinessEntity, error) {
	if m.updateEntityFn != nil {
		return m.updateEntityFn(userID, entityID, name, entityType, parentID)
	}
	return &models.BusinessEntity{}, nil
}

func (m *mockBusinessService) DeleteEntity(userID, entityID string) error {
	if m.deleteEntityFn != nil {
		return m.deleteEntityFn(userID, entityID)
	}
	return nil
}

func (m *mockBusinessService) CreateMetric(userID string, in services.MetricInput) (*models.BusinessMetric, error) {
	if m.createMetricFn != nil {
		return m.createMetricFn(userID, in)
	}
	return &models.BusinessMetric{}, nil
}

func (m *mockBusinessService) ListMetrics(userID string, businessID *string) ([]models.BusinessMetric, error) {
	if m.listMetricsFn != nil {
		return m.listMetricsFn(userID, businessID)
	}
	return []models.BusinessMetric{}, nil
}

func (m *mockBusinessService) RecordMetricValue(userID, metricID string, value float64) (*models.BusinessMetric, error) {
	if m.recordMetricValueFn != nil {
		return m.recordMetricValueFn(userID, metricID, value)
	}
	return &models.BusinessMetric{}, nil
}

func (m *mockBusinessService) DeleteMetric(userID, metricID string) error {
	if m.deleteMetricFn != nil {
		return m.deleteMetricFn(userID, metricID)
	}
	return nil
}

func (m *mockBusinessService) GetHealth(userID string, businessID *string) (*metrics.BusinessHealth, error) {
	if m.getHealthFn != nil {
		return m.getHealthFn(userID, businessID)
	}
	return &metrics.BusinessHealth{OverallScore: 100, Status: metrics.HealthStatusHealthy, Detractors: []metrics.Detractor{}}, nil
}

// verify interface compliance
var _ services.BusinessServicer = (*mockBusinessService)(nil)

func setupBusinessRouter(handler *BusinessHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/businesses", handler.CreateEntity)
	auth.GET("/businesses", handler.GetEntities)
	auth.GET("/businesses/health", handler.GetHealth)
	auth.POST("/businesses/metrics", handler.CreateMetric)
	auth.GET("/businesses/metrics", handler.ListMetrics)
	auth.PUT("/businesses/metrics/:metric_id/value", handler.RecordMetricValue)
	auth.DELETE("/businesses/metrics/:metric_id", handler.DeleteMetric)
	auth.GET("/businesses/:id", handler.GetEntityByID)
	auth.PUT("/businesses/:id", handler.UpdateEntity)
	auth.DELETE("/businesses/:id", handler.DeleteEntity)
	return r
}

func TestBusinessHandler_CreateEntity(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		bizSvc := &mockBusinessService{
			createEntityFn: func(userID, name string, entityType models.EntityType, parentID *string) (*models.BusinessEntity, error) {
				return &models.BusinessEntity{
					Base:     models.Base{ID: "biz-1"},
					UserID:   userID,
					Name:     name,
					Type:     entityType,
					ParentID: parentID,
				}, nil
			},
		}
		handler := NewBusinessHandler(bizSvc, &mockAuditService{})
		r := setupBusinessRouter(handler)

		rec := doRequest(r, "POST", "/businesses", `{"name":"Acme LLC","type":"llc"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		biz := result["business"].(map[string]interface{})
		if biz["name"] != "Acme LLC" {
			t.Errorf("expected name Acme LLC, got %v", biz["name"])
		}
	})

	t.Run("returns 400 on unknown entity type", func(t *testing.T) {
		handler := NewBusinessHandler(&mockBusinessService{}, &mockAuditService{})
		r := setupBusinessRouter(handler)

		rec := doRequest(r, "POST", "/businesses", `{"name":"Acme","type":"conglomerate"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestBusinessHandler_GetEntities(t *testing.T) {
	t.Run("passes the window through", func(t *testing.T) {
		var got *metrics.DateWindow
		bizSvc := &mockBusinessService{
			getEntitiesFn: func(_ context.Context, _ string, window *metrics.DateWindow) ([]models.BusinessEntity, error) {
				got = window
				return []models.BusinessEntity{
					{Base: models.Base{ID: "biz-1"}, Name: "Acme", Metrics: models.EntityMetrics{Revenue: 1000, Expenses: 400, Profit: 600, Margin: 60}},
				}, nil
			},
		}
		handler := NewBusinessHandler(bizSvc, &mockAuditService{})
		r := setupBusinessRouter(handler)

		rec := doRequest(r, "GET", "/businesses?start=2026-07-01&end=2026-07-31", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got == nil || got.Start != "2026-07-01" || got.End != "2026-07-31" {
			t.Errorf("expected window 2026-07-01..2026-07-31, got %+v", got)
		}
		result := parseJSON(t, rec)
		list := result["businesses"].([]interface{})
		biz := list[0].(map[string]interface{})
		m := biz["metrics"].(map[string]interface{})
		if m["profit"].(float64) != 600 {
			t.Errorf("expected profit 600, got %v", m["profit"])
		}
	})

	t.Run("all-time when no window given", func(t *testing.T) {
		bizSvc := &mockBusinessService{
			getEntitiesFn: func(_ context.Context, _ string, window *metrics.DateWindow) ([]models.BusinessEntity, error) {
				if window != nil {
					t.Errorf("expected nil window, got %+v", window)
				}
				return []models.BusinessEntity{}, nil
			},
		}
		handler := NewBusinessHandler(bizSvc, &mockAuditService{})
		r := setupBusinessRouter(handler)

		rec := doRequest(r, "GET", "/businesses", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}

func TestBusinessHandler_UpdateEntity(t *testing.T) {
	t.Run("returns 400 when made its own parent", func(t *testing.T) {
		bizSvc := &mockBusinessService{
			updateEntityFn: func(_, _ string, _ *string, _ *models.EntityType, _ *string) (*models.BusinessEntity, error) {
				return nil, apperrors.ErrSelfParentBusiness
			},
		}
		handler := NewBusinessHandler(bizSvc, &mockAuditService{})
		r := setupBusinessRouter(handler)

		rec := doRequest(r, "PUT", "/businesses/biz-1", `{"parent_id":"biz-1"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "SELF_PARENT_BUSINESS")
	})
}

func TestBusinessHandler_Metrics(t *testing.T) {
	t.Run("creates a KPI definition", func(t *testing.T) {
		bizSvc := &mockBusinessService{
			createMetricFn: func(userID string, in services.MetricInput) (*models.BusinessMetric, error) {
				return &models.BusinessMetric{
					Base:     models.Base{ID: "m-1"},
					UserID:   userID,
					MetricID: in.MetricID,
					Name:     in.Name,
					Value:    in.Value,
					Weight:   in.Weight,
				}, nil
			},
		}
		handler := NewBusinessHandler(bizSvc, &mockAuditService{})
		r := setupBusinessRouter(handler)

		rec := doRequest(r, "POST", "/businesses/metrics",
			`{"metric_id":"mrr","name":"Monthly Recurring Revenue","value":12000,"target":15000,"weight":2}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		metric := result["metric"].(map[string]interface{})
		if metric["metric_id"] != "mrr" {
			t.Errorf("expected metric_id mrr, got %v", metric["metric_id"])
		}
	})

	t.Run("records a new value", func(t *testing.T) {
		bizSvc := &mockBusinessService{
			recordMetricValueFn: func(_, metricID string, value float64) (*models.BusinessMetric, error) {
				return &models.BusinessMetric{Base: models.Base{ID: "m-1"}, MetricID: metricID, Value: value}, nil
			},
		}
		handler := NewBusinessHandler(bizSvc, &mockAuditService{})
		r := setupBusinessRouter(handler)

		rec := doRequest(r, "PUT", "/businesses/metrics/mrr/value", `{"value":13500}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		metric := result["metric"].(map[string]interface{})
		if metric["value"].(float64) != 13500 {
			t.Errorf("expected value 13500, got %v", metric["value"])
		}
	})

	t.Run("returns 404 recording against an unknown metric", func(t *testing.T) {
		bizSvc := &mockBusinessService{
			recordMetricValueFn: func(_, _ string, _ float64) (*models.BusinessMetric, error) {
				return nil, apperrors.ErrMetricNotFound
			},
		}
		handler := NewBusinessHandler(bizSvc, &mockAuditService{})
		r := setupBusinessRouter(handler)

		rec := doRequest(r, "PUT", "/businesses/metrics/nope/value", `{"value":1}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestBusinessHandler_GetHealth(t *testing.T) {
	t.Run("returns the composite with detractors", func(t *testing.T) {
		bizSvc := &mockBusinessService{
			getHealthFn: func(_ string, businessID *string) (*metrics.BusinessHealth, error) {
				return &metrics.BusinessHealth{
					OverallScore: 62.5,
					Status:       metrics.HealthStatusAtRisk,
					Detractors: []metrics.Detractor{
						{MetricID: "churn", Name: "Churn Rate", Score: 30, Status: metrics.KPIStatusCritical, Diagnosis: "Churn Rate is at 8, critically short of its target of 2"},
					},
				}, nil
			},
		}
		handler := NewBusinessHandler(bizSvc, &mockAuditService{})
		r := setupBusinessRouter(handler)

		rec := doRequest(r, "GET", "/businesses/health", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["overall_score"].(float64) != 62.5 {
			t.Errorf("expected overall_score 62.5, got %v", result["overall_score"])
		}
		if result["status"] != "at_risk" {
			t.Errorf("expected status at_risk, got %v", result["status"])
		}
		detractors := result["detractors"].([]interface{})
		if len(detractors) != 1 {
			t.Fatalf("expected 1 detractor, got %d", len(detractors))
		}
	})
}
