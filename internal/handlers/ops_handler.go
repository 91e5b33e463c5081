package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "finsight/internal/errors"
	"finsight/internal/fxrates"
	"finsight/internal/logger"
)

// OpsHandler serves operational endpoints guarded by the ops API key.
type OpsHandler struct {
	rates *fxrates.Client
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(rates *fxrates.Client) *OpsHandler {
	return &OpsHandler{rates: rates}
}

// RefreshRates drops the cached exchange rates and refetches them.
// @Summary     Refresh exchange rates
// @Description Invalidates the FX cache and fetches a fresh table from the upstream provider
// @Tags        ops
// @Produce     json
// @Security    ApiKeyAuth
// @Success     200 {object} map[string]interface{} "Fresh rates"
// @Failure     503 {object} ErrorResponse "Upstream unavailable"
// @Router      /ops/rates/refresh [post]
func (h *OpsHandler) RefreshRates(c *gin.Context) {
	h.rates.Invalidate()

	rates, err := h.rates.Rates(c.Request.Context())
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrRatesUnavailable, err))
		return
	}

	logger.Get().Infow("exchange rates refreshed", "base", h.rates.Base(), "currencies", len(rates))

	c.JSON(http.StatusOK, gin.H{
		"base":       h.rates.Base(),
		"currencies": len(rates),
		"rates":      rates,
	})
}
