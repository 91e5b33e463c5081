package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "finsight/internal/errors"
	"finsight/internal/export"
	"finsight/internal/models"
	"finsight/internal/pagination"
	"finsight/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the transaction creation payload.
type CreateTransactionRequest struct {
	AccountID         string  `json:"account_id" binding:"required"`
	BusinessID        *string `json:"business_id"`
	Type              string  `json:"type" binding:"required,transaction_type"`
	Amount            float64 `json:"amount" binding:"min=0"`
	Currency          string  `json:"currency" binding:"omitempty,currency_code"`
	Date              string  `json:"date" binding:"omitempty,iso_date"`
	Category          string  `json:"category" binding:"max=255"`
	Merchant          string  `json:"merchant" binding:"max=255"`
	Notes             string  `json:"notes" binding:"max=2000"`
	IsRecurring       bool    `json:"is_recurring"`
	RecurringInterval string  `json:"recurring_interval" binding:"max=50"`
}

// UpdateTransactionRequest represents the transaction update payload.
type UpdateTransactionRequest struct {
	Type       *string  `json:"type" binding:"omitempty,transaction_type"`
	Amount     *float64 `json:"amount" binding:"omitempty,min=0"`
	Date       *string  `json:"date" binding:"omitempty,iso_date"`
	Category   *string  `json:"category" binding:"omitempty,max=255"`
	Merchant   *string  `json:"merchant" binding:"omitempty,max=255"`
	Notes      *string  `json:"notes" binding:"omitempty,max=2000"`
	BusinessID *string  `json:"business_id"`
}

// transactionFilterQuery binds the list/export filter query parameters.
type transactionFilterQuery struct {
	From       *string  `form:"from" binding:"omitempty,iso_date"`
	To         *string  `form:"to" binding:"omitempty,iso_date"`
	Type       *string  `form:"type" binding:"omitempty,transaction_type"`
	Category   *string  `form:"category"`
	AccountID  *string  `form:"account_id"`
	BusinessID *string  `form:"business_id"`
	MinAmount  *float64 `form:"min_amount"`
	MaxAmount  *float64 `form:"max_amount"`
}

func (q *transactionFilterQuery) toFilter() services.TransactionFilter {
	filter := services.TransactionFilter{
		FromDate:   q.From,
		ToDate:     q.To,
		Category:   q.Category,
		AccountID:  q.AccountID,
		BusinessID: q.BusinessID,
		MinAmount:  q.MinAmount,
		MaxAmount:  q.MaxAmount,
	}
	if q.Type != nil {
		t := models.TransactionType(*q.Type)
		filter.Type = &t
	}
	return filter
}

// CreateTransaction records a new transaction.
// @Summary     Create a transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.transactionService.CreateTransaction(userID, services.TransactionInput{
		AccountID:         req.AccountID,
		BusinessID:        req.BusinessID,
		Type:              models.TransactionType(req.Type),
		Amount:            req.Amount,
		Currency:          req.Currency,
		Date:              req.Date,
		Category:          req.Category,
		Merchant:          req.Merchant,
		Notes:             req.Notes,
		IsRecurring:       req.IsRecurring,
		RecurringInterval: req.RecurringInterval,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// GetUserTransactions lists the user's transactions with optional filters.
// @Summary     List transactions
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       from query string false "Inclusive start date (YYYY-MM-DD)"
// @Param       to query string false "Inclusive end date (YYYY-MM-DD)"
// @Param       type query string false "credit or debit"
// @Param       category query string false "Exact category"
// @Param       account_id query string false "Account filter"
// @Param       business_id query string false "Business filter"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Transactions"
// @Router      /transactions [get]
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
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

	var query transactionFilterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.transactionService.GetUserTransactions(userID, page, query.toFilter())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAccountTransactions lists transactions for a single account.
// @Summary     List account transactions
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Transactions"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/{id}/transactions [get]
func (h *TransactionHandler) GetAccountTransactions(c *gin.Context) {
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

	var query transactionFilterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.transactionService.GetAccountTransactions(userID, c.Param("id"), page, query.toFilter())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTransactionByID returns a single transaction.
// @Summary     Get transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransaction updates a transaction's fields.
// @Summary     Update transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	update := services.TransactionUpdate{
		Amount:     req.Amount,
		Date:       req.Date,
		Category:   req.Category,
		Merchant:   req.Merchant,
		Notes:      req.Notes,
		BusinessID: req.BusinessID,
	}
	if req.Type != nil {
		t := models.TransactionType(*req.Type)
		update.Type = &t
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, c.Param("id"), update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction removes a transaction and reverses its balance effect.
// @Summary     Delete transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID := c.Param("id")
	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "transaction.delete", "transaction", transactionID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// ExportTransactions streams the user's transactions as CSV.
// @Summary     Export transactions as CSV
// @Tags        transactions
// @Produce     text/csv
// @Security    BearerAuth
// @Param       from query string false "Inclusive start date (YYYY-MM-DD)"
// @Param       to query string false "Inclusive end date (YYYY-MM-DD)"
// @Success     200 {string} string "CSV file"
// @Router      /transactions/export [get]
func (h *TransactionHandler) ExportTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query transactionFilterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transactions, accountNames, err := h.transactionService.ListForExport(userID, query.toFilter())
	if err != nil {
		respondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("transactions-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := export.WriteTransactionsCSV(c.Writer, transactions, accountNames); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
}
