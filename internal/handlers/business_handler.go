package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "finsight/internal/errors"
	"finsight/internal/metrics"
	"finsight/internal/models"
	"finsight/internal/services"
)

// BusinessHandler handles business entity and KPI requests.
type BusinessHandler struct {
	businessService services.BusinessServicer
	auditService    services.AuditServicer
}

// NewBusinessHandler creates a new BusinessHandler.
func NewBusinessHandler(businessService services.BusinessServicer, auditService services.AuditServicer) *BusinessHandler {
	return &BusinessHandler{businessService: businessService, auditService: auditService}
}

// CreateEntityRequest represents the entity creation payload.
type CreateEntityRequest struct {
	Name     string  `json:"name" binding:"required,max=255"`
	Type     string  `json:"type" binding:"required,entity_type"`
	ParentID *string `json:"parent_id"`
}

// UpdateEntityRequest represents the entity update payload.
type UpdateEntityRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=255"`
	Type     *string `json:"type" binding:"omitempty,entity_type"`
	ParentID *string `json:"parent_id"`
}

// CreateMetricRequest represents the KPI definition payload.
type CreateMetricRequest struct {
	BusinessID     *string  `json:"business_id"`
	MetricID       string   `json:"metric_id" binding:"required,max=100"`
	Name           string   `json:"name" binding:"max=255"`
	Unit           string   `json:"unit" binding:"max=32"`
	Value          float64  `json:"value"`
	Target         *float64 `json:"target"`
	Warning        *float64 `json:"warning"`
	Critical       *float64 `json:"critical"`
	HigherIsBetter *bool    `json:"higher_is_better"`
	Weight         float64  `json:"weight"`
}

// RecordValueRequest carries a new raw reading for a KPI.
type RecordValueRequest struct {
	Value float64 `json:"value" binding:"required"`
}

// entityWindowQuery binds the optional P&L window.
type entityWindowQuery struct {
	Start *string `form:"start" binding:"omitempty,iso_date"`
	End   *string `form:"end" binding:"omitempty,iso_date"`
}

// CreateEntity creates a business entity.
// @Summary     Create business entity
// @Tags        businesses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateEntityRequest true "Entity details"
// @Success     201 {object} models.BusinessEntity "Entity created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /businesses [post]
func (h *BusinessHandler) CreateEntity(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	entity, err := h.businessService.CreateEntity(userID, req.Name, models.EntityType(req.Type), req.ParentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "business.create", "business", entity.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "type": req.Type})

	c.JSON(http.StatusCreated, gin.H{"business": entity})
}

// GetEntities lists entities with P&L over the requested window.
// @Summary     List business entities
// @Description Returns entities with revenue, expenses, profit, and margin computed over the optional start/end window (all-time when omitted)
// @Tags        businesses
// @Produce     json
// @Security    BearerAuth
// @Param       start query string false "Inclusive start date (YYYY-MM-DD)"
// @Param       end query string false "Inclusive end date (YYYY-MM-DD)"
// @Success     200 {array} models.BusinessEntity "Entities"
// @Failure     503 {object} ErrorResponse "Exchange rates unavailable"
// @Router      /businesses [get]
func (h *BusinessHandler) GetEntities(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query entityWindowQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var window *metrics.DateWindow
	if query.Start != nil && query.End != nil {
		window = &metrics.DateWindow{Start: *query.Start, End: *query.End}
	}

	entities, err := h.businessService.GetEntities(c.Request.Context(), userID, window)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"businesses": entities})
}

// GetEntityByID returns one entity with all-time P&L.
// @Summary     Get business entity
// @Tags        businesses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Entity ID"
// @Success     200 {object} models.BusinessEntity "Entity"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /businesses/{id} [get]
func (h *BusinessHandler) GetEntityByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entity, err := h.businessService.GetEntityByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"business": entity})
}

// UpdateEntity updates an entity's name, type, or parent.
// @Summary     Update business entity
// @Tags        businesses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Entity ID"
// @Param       request body UpdateEntityRequest true "Fields to update"
// @Success     200 {object} models.BusinessEntity "Updated entity"
// @Failure     400 {object} ErrorResponse "Self-parent"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /businesses/{id} [put]
func (h *BusinessHandler) UpdateEntity(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var entityType *models.EntityType
	if req.Type != nil {
		t := models.EntityType(*req.Type)
		entityType = &t
	}

	entity, err := h.businessService.UpdateEntity(userID, c.Param("id"), req.Name, entityType, req.ParentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"business": entity})
}

// DeleteEntity removes an entity, untagging its transactions.
// @Summary     Delete business entity
// @Tags        businesses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Entity ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /businesses/{id} [delete]
func (h *BusinessHandler) DeleteEntity(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entityID := c.Param("id")
	if err := h.businessService.DeleteEntity(userID, entityID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "business.delete", "business", entityID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// CreateMetric registers a KPI definition.
// @Summary     Create KPI metric
// @Tags        businesses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateMetricRequest true "Metric definition"
// @Success     201 {object} models.BusinessMetric "Metric created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /businesses/metrics [post]
func (h *BusinessHandler) CreateMetric(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateMetricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	higherIsBetter := true
	if req.HigherIsBetter != nil {
		higherIsBetter = *req.HigherIsBetter
	}

	metric, err := h.businessService.CreateMetric(userID, services.MetricInput{
		BusinessID:     req.BusinessID,
		MetricID:       req.MetricID,
		Name:           req.Name,
		Unit:           req.Unit,
		Value:          req.Value,
		Target:         req.Target,
		Warning:        req.Warning,
		Critical:       req.Critical,
		HigherIsBetter: higherIsBetter,
		Weight:         req.Weight,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"metric": metric})
}

// ListMetrics lists KPI definitions, optionally scoped to one entity.
// @Summary     List KPI metrics
// @Tags        businesses
// @Produce     json
// @Security    BearerAuth
// @Param       business_id query string false "Scope to one entity"
// @Success     200 {array} models.BusinessMetric "Metrics"
// @Router      /businesses/metrics [get]
func (h *BusinessHandler) ListMetrics(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var businessID *string
	if v := c.Query("business_id"); v != "" {
		businessID = &v
	}

	list, err := h.businessService.ListMetrics(userID, businessID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"metrics": list})
}

// RecordMetricValue stores the latest raw reading for a KPI.
// @Summary     Record KPI value
// @Tags        businesses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       metric_id path string true "Metric ID"
// @Param       request body RecordValueRequest true "New value"
// @Success     200 {object} models.BusinessMetric "Updated metric"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /businesses/metrics/{metric_id}/value [put]
func (h *BusinessHandler) RecordMetricValue(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RecordValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	metric, err := h.businessService.RecordMetricValue(userID, c.Param("metric_id"), req.Value)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"metric": metric})
}

// DeleteMetric removes a KPI definition.
// @Summary     Delete KPI metric
// @Tags        businesses
// @Produce     json
// @Security    BearerAuth
// @Param       metric_id path string true "Metric ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /businesses/metrics/{metric_id} [delete]
func (h *BusinessHandler) DeleteMetric(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.businessService.DeleteMetric(userID, c.Param("metric_id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetHealth returns the weighted KPI composite score.
// @Summary     Business health score
// @Description Weighted aggregate of all active KPIs with up to three detractors
// @Tags        businesses
// @Produce     json
// @Security    BearerAuth
// @Param       business_id query string false "Scope to one entity"
// @Success     200 {object} metrics.BusinessHealth "Health"
// @Router      /businesses/health [get]
func (h *BusinessHandler) GetHealth(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var businessID *string
	if v := c.Query("business_id"); v != "" {
		businessID = &v
	}

	health, err := h.businessService.GetHealth(userID, businessID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, health)
}
