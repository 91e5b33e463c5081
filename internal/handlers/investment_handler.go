package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "finsight/internal/errors"
	"finsight/internal/pagination"
	"finsight/internal/services"
)

// InvestmentHandler handles investment-related requests.
type InvestmentHandler struct {
	investmentService services.InvestmentServicer
	auditService      services.AuditServicer
}

// NewInvestmentHandler creates a new InvestmentHandler.
func NewInvestmentHandler(investmentService services.InvestmentServicer, auditService services.AuditServicer) *InvestmentHandler {
	return &InvestmentHandler{investmentService: investmentService, auditService: auditService}
}

// CreateInvestmentRequest represents the holding creation payload.
type CreateInvestmentRequest struct {
	AccountID    *string `json:"account_id"`
	Symbol       string  `json:"symbol" binding:"required,max=32"`
	Name         string  `json:"name" binding:"max=255"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0"`
	CostBasis    float64 `json:"cost_basis" binding:"gte=0"`
	CurrentPrice float64 `json:"current_price" binding:"gte=0"`
	Currency     string  `json:"currency" binding:"omitempty,currency_code"`
}

// UpdatePriceRequest carries a fresh market price for a holding.
type UpdatePriceRequest struct {
	Price float64 `json:"price" binding:"gte=0"`
}

// AddInvestment records a new holding.
// @Summary     Add investment
// @Tags        investments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateInvestmentRequest true "Holding details"
// @Success     201 {object} models.Investment "Holding created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /investments [post]
func (h *InvestmentHandler) AddInvestment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	investment, err := h.investmentService.AddInvestment(userID, services.InvestmentInput{
		AccountID:    req.AccountID,
		Symbol:       req.Symbol,
		Name:         req.Name,
		Quantity:     req.Quantity,
		CostBasis:    req.CostBasis,
		CurrentPrice: req.CurrentPrice,
		Currency:     req.Currency,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "investment.create", "investment", investment.ID, c.ClientIP(),
		map[string]interface{}{"symbol": req.Symbol, "quantity": req.Quantity})

	c.JSON(http.StatusCreated, gin.H{"investment": investment})
}

// GetUserInvestments lists the user's holdings.
// @Summary     List investments
// @Tags        investments
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number" default(1)
// @Param       page_size query int false "Page size" default(20)
// @Success     200 {object} pagination.PageResponse[models.Investment] "Holdings"
// @Router      /investments [get]
func (h *InvestmentHandler) GetUserInvestments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	resp, err := h.investmentService.GetUserInvestments(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetInvestmentByID returns one holding.
// @Summary     Get investment
// @Tags        investments
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Investment ID"
// @Success     200 {object} models.Investment "Holding"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /investments/{id} [get]
func (h *InvestmentHandler) GetInvestmentByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	investment, err := h.investmentService.GetInvestmentByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"investment": investment})
}

// UpdatePrice refreshes a holding's market price and derived value.
// @Summary     Update investment price
// @Tags        investments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Investment ID"
// @Param       request body UpdatePriceRequest true "New price"
// @Success     200 {object} models.Investment "Updated holding"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /investments/{id}/price [put]
func (h *InvestmentHandler) UpdatePrice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	investment, err := h.investmentService.UpdatePrice(userID, c.Param("id"), req.Price)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"investment": investment})
}

// DeleteInvestment removes a holding.
// @Summary     Delete investment
// @Tags        investments
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Investment ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /investments/{id} [delete]
func (h *InvestmentHandler) DeleteInvestment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	investmentID := c.Param("id")
	if err := h.investmentService.DeleteInvestment(userID, investmentID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "investment.delete", "investment", investmentID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// GetPortfolioSummary aggregates all holdings into the base currency.
// @Summary     Portfolio summary
// @Description Total value, cost basis, and unrealized P&L across all holdings converted to the user's base currency
// @Tags        investments
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.PortfolioSummary "Summary"
// @Failure     503 {object} ErrorResponse "Exchange rates unavailable"
// @Router      /investments/summary [get]
func (h *InvestmentHandler) GetPortfolioSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.investmentService.GetPortfolioSummary(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
