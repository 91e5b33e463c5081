// Package errors provides custom error types for the finsight API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Account & transaction errors.
var (
	ErrAccountNotFound        = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
	ErrTransactionNotFound    = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidTransactionType = &AppError{Code: "INVALID_TRANSACTION_TYPE", Message: "Unsupported transaction type", StatusCode: http.StatusBadRequest}
	ErrNegativeAmount         = &AppError{Code: "NEGATIVE_AMOUNT", Message: "Transaction amounts must be non-negative magnitudes", StatusCode: http.StatusBadRequest}
)

// Budget errors.
var (
	ErrBudgetNotFound  = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
	ErrMappingNotFound = &AppError{Code: "MAPPING_NOT_FOUND", Message: "Category mapping not found", StatusCode: http.StatusNotFound}
)

// Business errors.
var (
	ErrBusinessNotFound   = &AppError{Code: "BUSINESS_NOT_FOUND", Message: "Business entity not found", StatusCode: http.StatusNotFound}
	ErrMetricNotFound     = &AppError{Code: "METRIC_NOT_FOUND", Message: "Business metric not found", StatusCode: http.StatusNotFound}
	ErrSelfParentBusiness = &AppError{Code: "SELF_PARENT_BUSINESS", Message: "A business entity cannot be its own parent", StatusCode: http.StatusBadRequest}
)

// Investment errors.
var (
	ErrInvestmentNotFound = &AppError{Code: "INVESTMENT_NOT_FOUND", Message: "Investment not found", StatusCode: http.StatusNotFound}
)

// Currency & rate errors.
var (
	ErrUnknownCurrency  = &AppError{Code: "UNKNOWN_CURRENCY", Message: "No exchange rate for currency", StatusCode: http.StatusUnprocessableEntity}
	ErrRatesUnavailable = &AppError{Code: "RATES_UNAVAILABLE", Message: "Exchange rates are currently unavailable", StatusCode: http.StatusServiceUnavailable}
)

// Report errors.
var (
	ErrInvalidReportRange = &AppError{Code: "INVALID_REPORT_RANGE", Message: "Invalid report period or date range", StatusCode: http.StatusBadRequest}
)
