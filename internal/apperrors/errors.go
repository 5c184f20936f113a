package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the requesting user is not allowed to perform the operation.
var ErrForbidden = errors.New("forbidden")

// ErrConflict indicates the operation conflicts with the current state of the resource.
var ErrConflict = errors.New("conflict with current resource state")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// ErrInsufficientFunds indicates the source account cannot cover amount plus fee.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrLimitExceeded indicates a daily/weekly/monthly transfer or withdrawal limit would be breached.
var ErrLimitExceeded = errors.New("limit exceeded")

// ErrAccountInactive indicates one of the accounts involved is not active.
var ErrAccountInactive = errors.New("account is inactive")

// ErrSameAccount indicates source and destination accounts are identical.
var ErrSameAccount = errors.New("source and destination accounts must differ")

// ErrNotReversible indicates the transaction is not in a status that allows reversal.
var ErrNotReversible = errors.New("can only reverse completed transactions")

// ErrAlreadyReversed indicates the transaction has already been reversed.
var ErrAlreadyReversed = errors.New("transaction already reversed")

// ErrStorage indicates the atomic storage unit could not commit; no partial state was applied.
var ErrStorage = errors.New("storage failure")

// AppError wraps a lower-level error with a code and message. Repositories use it
// for failures that have no dedicated sentinel.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches ErrNotFound via errors.Is.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
