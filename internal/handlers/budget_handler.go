package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "finsight/internal/errors"
	"finsight/internal/models"
	"finsight/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// CreateBudgetRequest represents the budget creation payload.
type CreateBudgetRequest struct {
	Category string  `json:"category" binding:"required,max=255"`
	Limit    float64 `json:"limit" binding:"min=0"`
	Type     string  `json:"type" binding:"required,budget_type"`
	Icon     string  `json:"icon" binding:"max=16"`
	Color    string  `json:"color" binding:"omitempty,hex_color"`
}

// UpdateBudgetRequest represents the budget update payload.
type UpdateBudgetRequest struct {
	Limit *float64 `json:"limit" binding:"omitempty,min=0"`
	Icon  *string  `json:"icon" binding:"omitempty,max=16"`
	Color *string  `json:"color" binding:"omitempty,hex_color"`
}

// CreateMappingRequest aliases a raw transaction category to a budget category.
type CreateMappingRequest struct {
	BudgetCategory      string `json:"budget_category" binding:"required,max=255"`
	TransactionCategory string `json:"transaction_category" binding:"required,max=255"`
}

// CreateBudget creates a monthly budget for a category.
// @Summary     Create a budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} models.BudgetCategory "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.CreateBudget(userID, req.Category, req.Limit, models.BudgetType(req.Type), req.Icon, req.Color)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "budget.create", "budget", budget.ID, c.ClientIP(),
		map[string]interface{}{"category": req.Category, "limit": req.Limit})

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// GetBudgets lists budgets with current-month spend figures.
// @Summary     List budgets with spend
// @Description Returns every budget with Spent recomputed from the current month's transactions in the user's base currency
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.BudgetCategory "Budgets"
// @Failure     422 {object} ErrorResponse "Unknown currency in transactions"
// @Failure     503 {object} ErrorResponse "Exchange rates unavailable"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgets, err := h.budgetService.GetBudgetsWithSpent(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budgets": budgets})
}

// GetBudgetByID returns a single budget without spend data.
// @Summary     Get budget
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} models.BudgetCategory "Budget"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudgetByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// UpdateBudget updates a budget's limit or presentation.
// @Summary     Update budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Fields to update"
// @Success     200 {object} models.BudgetCategory "Updated budget"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.UpdateBudget(userID, c.Param("id"), services.BudgetUpdateFields{
		Limit: req.Limit,
		Icon:  req.Icon,
		Color: req.Color,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// DeleteBudget removes a budget and its category mappings.
// @Summary     Delete budget
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID := c.Param("id")
	if err := h.budgetService.DeleteBudget(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "budget.delete", "budget", budgetID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// CreateMapping adds a category mapping.
// @Summary     Create category mapping
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateMappingRequest true "Mapping"
// @Success     201 {object} models.CategoryMapping "Mapping created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /budgets/mappings [post]
func (h *BudgetHandler) CreateMapping(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	mapping, err := h.budgetService.CreateMapping(userID, req.BudgetCategory, req.TransactionCategory)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"mapping": mapping})
}

// ListMappings lists the user's category mappings.
// @Summary     List category mappings
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.CategoryMapping "Mappings"
// @Router      /budgets/mappings [get]
func (h *BudgetHandler) ListMappings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	mappings, err := h.budgetService.ListMappings(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"mappings": mappings})
}

// DeleteMapping removes a category mapping.
// @Summary     Delete category mapping
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Mapping ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /budgets/mappings/{id} [delete]
func (h *BudgetHandler) DeleteMapping(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteMapping(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
