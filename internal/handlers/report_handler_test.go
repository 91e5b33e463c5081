package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "finsight/internal/errors"
	"finsight/internal/metrics"
	"finsight/internal/reports"
	"finsight/internal/services"
)

// --- mock report service ---

type mockReportService struct {
	generateFn func(ctx context.Context, userID string, scope reports.Scope, period reports.Period, customRange *metrics.DateWindow) (*reports.Snapshot, error)
}

func (m *mockReportService) Generate(ctx context.Context, userID string, scope reports.Scope, period reports.Period, customRange *metrics.DateWindow) (*reports.Snapshot, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, userID, scope, period, customRange)
	}
	return &reports.Snapshot{}, nil
}

// verify interface compliance
var _ services.ReportServicer = (*mockReportService)(nil)

func setupReportRouter(handler *ReportHandler) *gin.Engine {
	r := gin.New()
	r.GET("/reports", injectUserID(testUserID), handler.GenerateReport)
	return r
}

func TestReportHandler_GenerateReport(t *testing.T) {
	t.Run("defaults to personal month", func(t *testing.T) {
		var gotScope reports.Scope
		var gotPeriod reports.Period
		reportSvc := &mockReportService{
			generateFn: func(_ context.Context, _ string, scope reports.Scope, period reports.Period, _ *metrics.DateWindow) (*reports.Snapshot, error) {
				gotScope = scope
				gotPeriod = period
				return &reports.Snapshot{
					Scope:        scope,
					Period:       period,
					BaseCurrency: "USD",
					TotalIncome:  reports.MetricValue{Value: 5000, Formatted: "USD 5000.00", Currency: "USD"},
				}, nil
			},
		}
		handler := NewReportHandler(reportSvc)
		r := setupReportRouter(handler)

		rec := doRequest(r, "GET", "/reports", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotScope != reports.ScopePersonal || gotPeriod != reports.PeriodMonth {
			t.Errorf("expected personal/month defaults, got %s/%s", gotScope, gotPeriod)
		}
		result := parseJSON(t, rec)
		income := result["total_income"].(map[string]interface{})
		if income["value"].(float64) != 5000 {
			t.Errorf("expected total_income 5000, got %v", income["value"])
		}
	})

	t.Run("passes a custom range through", func(t *testing.T) {
		var got *metrics.DateWindow
		reportSvc := &mockReportService{
			generateFn: func(_ context.Context, _ string, _ reports.Scope, period reports.Period, customRange *metrics.DateWindow) (*reports.Snapshot, error) {
				got = customRange
				return &reports.Snapshot{Period: period}, nil
			},
		}
		handler := NewReportHandler(reportSvc)
		r := setupReportRouter(handler)

		rec := doRequest(r, "GET", "/reports?period=custom&start=2026-01-01&end=2026-03-31", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got == nil || got.Start != "2026-01-01" || got.End != "2026-03-31" {
			t.Errorf("expected range 2026-01-01..2026-03-31, got %+v", got)
		}
	})

	t.Run("rejects an unknown period", func(t *testing.T) {
		handler := NewReportHandler(&mockReportService{})
		r := setupReportRouter(handler)

		rec := doRequest(r, "GET", "/reports?period=fortnight", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("rejects an unknown scope", func(t *testing.T) {
		handler := NewReportHandler(&mockReportService{})
		r := setupReportRouter(handler)

		rec := doRequest(r, "GET", "/reports?scope=household", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("maps a custom period without dates to 400", func(t *testing.T) {
		reportSvc := &mockReportService{
			generateFn: func(_ context.Context, _ string, _ reports.Scope, _ reports.Period, _ *metrics.DateWindow) (*reports.Snapshot, error) {
				return nil, apperrors.ErrInvalidReportRange
			},
		}
		handler := NewReportHandler(reportSvc)
		r := setupReportRouter(handler)

		rec := doRequest(r, "GET", "/reports?period=custom", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_REPORT_RANGE")
	})
}
