// Package errors provides custom error types for the finance dashboard.
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

// Is matches AppErrors by code, so wrapped copies still compare equal to
// their sentinel under errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && e.Code == t.Code
}

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

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Account errors.
var (
	ErrAccountNotFound  = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
	ErrAccountNotManual = &AppError{Code: "ACCOUNT_NOT_MANUAL", Message: "Only manual accounts can be modified", StatusCode: http.StatusForbidden}
)

// Transaction errors.
var (
	ErrTransactionNotFound    = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrTransactionNotManual   = &AppError{Code: "TRANSACTION_NOT_MANUAL", Message: "Only manual transactions can be deleted", StatusCode: http.StatusForbidden}
	ErrInvalidTransactionType = &AppError{Code: "INVALID_TRANSACTION_TYPE", Message: "Transaction type must be CREDIT or DEBIT", StatusCode: http.StatusBadRequest}
)

// Category errors.
var (
	ErrCategoryNotFound  = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCategory = &AppError{Code: "DUPLICATE_CATEGORY", Message: "A category with this name, subcategory and type already exists", StatusCode: http.StatusConflict}
	ErrMappingNotFound   = &AppError{Code: "MAPPING_NOT_FOUND", Message: "Category mapping not found", StatusCode: http.StatusNotFound}
)

// Split errors.
var (
	ErrInvalidSplit = &AppError{Code: "INVALID_SPLIT", Message: "Split percentages must sum to 100", StatusCode: http.StatusBadRequest}
)

// Sync errors.
var (
	ErrSyncFailed            = &AppError{Code: "SYNC_FAILED", Message: "Synchronization failed", StatusCode: http.StatusBadGateway}
	ErrConnectionNotFound    = &AppError{Code: "CONNECTION_NOT_FOUND", Message: "Connection not found", StatusCode: http.StatusNotFound}
	ErrConnectionInactive    = &AppError{Code: "CONNECTION_INACTIVE", Message: "Connection is not in a syncable state", StatusCode: http.StatusConflict}
	ErrAggregatorUnavailable = &AppError{Code: "AGGREGATOR_UNAVAILABLE", Message: "Aggregator API is unreachable", StatusCode: http.StatusBadGateway}
)

// Environment errors.
var (
	ErrUnknownEnvironment = &AppError{Code: "UNKNOWN_ENVIRONMENT", Message: "Environment must be prod or dev", StatusCode: http.StatusBadRequest}
)

// Backup errors.
var (
	ErrBackupSkipped = &AppError{Code: "BACKUP_SKIPPED", Message: "A recent backup already exists", StatusCode: http.StatusConflict}
	ErrBackupFailed  = &AppError{Code: "BACKUP_FAILED", Message: "Backup failed", StatusCode: http.StatusInternalServerError}
)
