package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an application error independently of its HTTP status
type Kind string

const (
	KindNotFound           Kind = "NOT_FOUND"
	KindInsufficientStock  Kind = "INSUFFICIENT_STOCK"
	KindInsufficientCredit Kind = "INSUFFICIENT_CREDIT"
	KindInvalidAmount      Kind = "INVALID_AMOUNT"
	KindInvalidDeposit     Kind = "INVALID_DEPOSIT"
	KindStoreCommitFailure Kind = "STORE_COMMIT_FAILURE"
	KindBadRequest         Kind = "BAD_REQUEST"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindForbidden          Kind = "FORBIDDEN"
	KindConflict           Kind = "CONFLICT"
	KindValidation         Kind = "VALIDATION"
	KindInternal           Kind = "INTERNAL"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Kind    Kind         `json:"kind"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`

	cause error
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Is matches any AppError of the same kind, so sentinel values below work with errors.Is.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind != "" && t.Kind == e.Kind
}

// Common errors
var (
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Kind: KindNotFound, Message: "Resource not found"}
	ErrInsufficientStock  = &AppError{Code: http.StatusConflict, Kind: KindInsufficientStock, Message: "Insufficient stock"}
	ErrInsufficientCredit = &AppError{Code: http.StatusConflict, Kind: KindInsufficientCredit, Message: "Insufficient customer credit"}
	ErrInvalidAmount      = &AppError{Code: http.StatusUnprocessableEntity, Kind: KindInvalidAmount, Message: "Invalid amount"}
	ErrInvalidDeposit     = &AppError{Code: http.StatusUnprocessableEntity, Kind: KindInvalidDeposit, Message: "Invalid deposit amount"}
	ErrStoreCommitFailure = &AppError{Code: http.StatusServiceUnavailable, Kind: KindStoreCommitFailure, Message: "Ledger commit failed"}
	ErrUnauthorized       = &AppError{Code: http.StatusUnauthorized, Kind: KindUnauthorized, Message: "Unauthorized"}
	ErrForbidden          = &AppError{Code: http.StatusForbidden, Kind: KindForbidden, Message: "Forbidden"}
	ErrBadRequest         = &AppError{Code: http.StatusBadRequest, Kind: KindBadRequest, Message: "Bad request"}
	ErrInternalServer     = &AppError{Code: http.StatusInternalServerError, Kind: KindInternal, Message: "Internal server error"}
	ErrConflict           = &AppError{Code: http.StatusConflict, Kind: KindConflict, Message: "Resource already exists"}
	ErrTokenExpired       = &AppError{Code: http.StatusUnauthorized, Kind: KindUnauthorized, Message: "Token has expired"}
	ErrInvalidToken       = &AppError{Code: http.StatusUnauthorized, Kind: KindUnauthorized, Message: "Invalid token"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kindForStatus(code),
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindValidation,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindBadRequest,
		Message: message,
	}
}

func NewInsufficientStockError(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Kind: KindInsufficientStock, Message: message}
}

func NewInsufficientCreditError(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Kind: KindInsufficientCredit, Message: message}
}

func NewInvalidAmountError(message string) *AppError {
	return &AppError{Code: http.StatusUnprocessableEntity, Kind: KindInvalidAmount, Message: message}
}

func NewInvalidDepositError(message string) *AppError {
	return &AppError{Code: http.StatusUnprocessableEntity, Kind: KindInvalidDeposit, Message: message}
}

// NewStoreCommitFailure wraps the error that prevented a batch from committing.
func NewStoreCommitFailure(cause error) *AppError {
	return &AppError{
		Code:    http.StatusServiceUnavailable,
		Kind:    KindStoreCommitFailure,
		Message: "Ledger commit failed",
		cause:   cause,
	}
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: "Internal server error",
		cause:   err,
	}
}

func kindForStatus(code int) Kind {
	switch code {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusConflict:
		return KindConflict
	case http.StatusBadRequest:
		return KindBadRequest
	case http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusServiceUnavailable:
		return KindStoreCommitFailure
	default:
		return KindInternal
	}
}
