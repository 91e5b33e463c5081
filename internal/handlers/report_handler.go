package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "finsight/internal/errors"
	"finsight/internal/metrics"
	"finsight/internal/reports"
	"finsight/internal/services"
)

// ReportHandler serves point-in-time financial report snapshots.
type ReportHandler struct {
	reportService services.ReportServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// reportQuery binds the report parameters.
type reportQuery struct {
	Scope  string  `form:"scope" binding:"omitempty,oneof=personal business"`
	Period string  `form:"period" binding:"omitempty,report_period"`
	Start  *string `form:"start" binding:"omitempty,iso_date"`
	End    *string `form:"end" binding:"omitempty,iso_date"`
}

// GenerateReport builds a report snapshot for the requested window.
// @Summary     Generate report
// @Description Deterministic snapshot of income, expenses, net worth, budgets, and holdings for the window, with deltas against the previous window
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       scope query string false "personal or business" default(personal)
// @Param       period query string false "month, quarter, year, ytd, or custom" default(month)
// @Param       start query string false "Custom window start (YYYY-MM-DD)"
// @Param       end query string false "Custom window end (YYYY-MM-DD)"
// @Success     200 {object} reports.Snapshot "Report"
// @Failure     400 {object} ErrorResponse "Invalid range"
// @Failure     503 {object} ErrorResponse "Exchange rates unavailable"
// @Router      /reports [get]
func (h *ReportHandler) GenerateReport(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query reportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	scope := reports.ScopePersonal
	if query.Scope != "" {
		scope = reports.Scope(query.Scope)
	}
	period := reports.PeriodMonth
	if query.Period != "" {
		period = reports.Period(query.Period)
	}

	var customRange *metrics.DateWindow
	if query.Start != nil && query.End != nil {
		customRange = &metrics.DateWindow{Start: *query.Start, End: *query.End}
	}

	snapshot, err := h.reportService.Generate(c.Request.Context(), userID, scope, period, customRange)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
