package service

import (
	"fmt"
	"strings"

	"trkart/internal/validation"
)

// ServiceError represents a business logic error with a code. Business
// denials (validation, feasibility, ownership) travel as values of
// this type so callers are forced to handle them; only genuinely
// unexpected failures carry ErrCodeInternalError.
type ServiceError struct {
	Err     error
	Message string
	Code    string
	Fields  []validation.FieldError
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Error codes surfaced to API clients
const (
	ErrCodeValidation        = "INPUT_VALIDATION_ERROR"
	ErrCodeTransactionDenied = "TRANSACTION_DENIED"
	ErrCodeCardNotFound      = "CARD_NOT_FOUND"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeEmailTaken        = "EMAIL_TAKEN"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// newValidationError aggregates every field violation into a single
// error so the caller sees the full list, not just the first failure.
func newValidationError(errs []validation.FieldError) *ServiceError {
	parts := make([]string, len(errs))
	for i, fe := range errs {
		parts[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Reason)
	}

	return &ServiceError{
		Code:    ErrCodeValidation,
		Message: "Input validation failed: " + strings.Join(parts, "; "),
		Fields:  errs,
	}
}

// errForbiddenCard is returned whenever a card-scoped operation is
// attempted by a customer who does not own the card.
func errForbiddenCard() *ServiceError {
	return &ServiceError{
		Code:    ErrCodeForbidden,
		Message: "Access denied. Card does not belong to authenticated user.",
	}
}
