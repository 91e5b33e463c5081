package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "finsight/internal/errors"
	"finsight/internal/models"
	"finsight/internal/pagination"
	"finsight/internal/services"
)

// AccountHandler handles account-related requests.
type AccountHandler struct {
	accountService services.AccountServicer
	auditService   services.AuditServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService services.AccountServicer, auditService services.AuditServicer) *AccountHandler {
	return &AccountHandler{accountService: accountService, auditService: auditService}
}

// CreateAccountRequest represents the account creation payload.
type CreateAccountRequest struct {
	Name           string  `json:"name" binding:"required,max=255"`
	Description    string  `json:"description" binding:"max=1000"`
	Type           string  `json:"type" binding:"required,account_type"`
	Currency       string  `json:"currency" binding:"omitempty,currency_code"`
	InitialBalance float64 `json:"initial_balance"`
}

// UpdateAccountRequest represents the account update payload.
type UpdateAccountRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	IsActive    *bool   `json:"is_active"`
}

// CreateAccount handles the creation of a new account.
// @Summary     Create an account
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateAccountRequest true "Account details"
// @Success     201 {object} models.Account "Account created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.accountService.CreateAccount(
		userID,
		req.Name,
		req.Description,
		models.AccountType(req.Type),
		req.Currency,
		req.InitialBalance,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "account.create", "account", account.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "type": req.Type, "currency": account.Currency})

	c.JSON(http.StatusCreated, gin.H{"account": account})
}

// GetUserAccounts lists the authenticated user's active accounts.
// @Summary     List accounts
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Account] "Accounts"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /accounts [get]
func (h *AccountHandler) GetUserAccounts(c *gin.Context) {
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

	result, err := h.accountService.GetUserAccounts(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAccountByID returns a single account.
// @Summary     Get account
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} models.Account "Account"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /accounts/{id} [get]
func (h *AccountHandler) GetAccountByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.accountService.GetAccountByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// UpdateAccount updates an account's mutable fields.
// @Summary     Update account
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Param       request body UpdateAccountRequest true "Fields to update"
// @Success     200 {object} models.Account "Updated account"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /accounts/{id} [put]
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.accountService.UpdateAccount(userID, c.Param("id"), services.AccountUpdateFields{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// DeactivateAccount soft-disables an account.
// @Summary     Deactivate account
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     204 "Deactivated"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /accounts/{id} [delete]
func (h *AccountHandler) DeactivateAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID := c.Param("id")
	if err := h.accountService.DeactivateAccount(userID, accountID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "account.deactivate", "account", accountID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// Reconcile compares the stored balance against a transaction replay.
// @Summary     Reconcile account
// @Description Replay the account's transaction history and report any drift from the stored balance
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} services.ReconcileResult "Reconciliation result"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /accounts/{id}/reconcile [get]
func (h *AccountHandler) Reconcile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.accountService.Reconcile(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RepairDrift resets the stored balance to the replayed figure.
// @Summary     Repair balance drift
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} services.ReconcileResult "Post-repair state"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /accounts/{id}/reconcile [post]
func (h *AccountHandler) RepairDrift(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID := c.Param("id")
	result, err := h.accountService.RepairDrift(userID, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "account.repair_drift", "account", accountID, c.ClientIP(),
		map[string]interface{}{"replayed": result.Replayed})

	c.JSON(http.StatusOK, result)
}
