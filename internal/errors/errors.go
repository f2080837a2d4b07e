package errors

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	CustomerNotFound  ErrorCode = "customer_not_found"
	DuplicateCustomer ErrorCode = "duplicate_customer"
	InsufficientFunds ErrorCode = "insufficient_funds"
	InvalidInput      ErrorCode = "invalid_input"
	InvalidAmount     ErrorCode = "invalid_amount"
	InvalidDate       ErrorCode = "invalid_date"
	InternalError     ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HTTPStatus maps the error code to the response status.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CustomerNotFound:
		return http.StatusNotFound
	case DuplicateCustomer:
		return http.StatusConflict
	case InsufficientFunds, InvalidInput, InvalidAmount, InvalidDate:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithDetails returns a copy so the predefined errors below stay untouched.
func (e *AppError) WithDetails(details string) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// Is reports whether target carries the same code, so errors.Is works on
// copies produced by WithDetails.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Predefined errors for common cases
var (
	ErrCustomerNotFound  = NewAppError(CustomerNotFound, "Customer not found")
	ErrDuplicateCustomer = NewAppError(DuplicateCustomer, "Customer already exists(cpf already in use)")
	ErrInsufficientFunds = NewAppError(InsufficientFunds, "Insufficient funds!")
	ErrInvalidAmount     = NewAppError(InvalidAmount, "amount must be a positive number")
	ErrInvalidDate       = NewAppError(InvalidDate, "date must use the YYYY-MM-DD format")

	ErrCannotBeginTransaction = NewAppError(InternalError, "cannot begin a transaction inside another one")
)
