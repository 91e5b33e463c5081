package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finsight/internal/services"
)

// InsightHandler serves derived figures that cut across modules.
type InsightHandler struct {
	insightService services.InsightServicer
}

// NewInsightHandler creates a new InsightHandler.
func NewInsightHandler(insightService services.InsightServicer) *InsightHandler {
	return &InsightHandler{insightService: insightService}
}

// GetNetWorth returns total net worth in the user's base currency.
// @Summary     Net worth
// @Description Sum of active account balances and investment values converted to the base currency, with a per-account-type breakdown
// @Tags        insights
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.NetWorthSummary "Net worth"
// @Failure     503 {object} ErrorResponse "Exchange rates unavailable"
// @Router      /insights/net-worth [get]
func (h *InsightHandler) GetNetWorth(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.insightService.GetNetWorth(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetHealthScore returns the personal financial health composite.
// @Summary     Financial health score
// @Description Composite 0-100 score built from savings rate, emergency runway, debt ratio, and diversification
// @Tags        insights
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} metrics.HealthScore "Health score"
// @Failure     503 {object} ErrorResponse "Exchange rates unavailable"
// @Router      /insights/health [get]
func (h *InsightHandler) GetHealthScore(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	score, err := h.insightService.GetHealthScore(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, score)
}
