package apperrors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates the resource is in a state that forbids the requested operation.
var ErrConflict = errors.New("conflicting resource state")

// ErrPostingFailed indicates a storage-layer failure inside the atomic posting
// unit. The unit was rolled back completely, so retrying the whole call is safe.
var ErrPostingFailed = errors.New("posting failed")

// ErrInconsistentState indicates a posting succeeded but a dependent write did
// not, leaving the ledger and the source document disagreeing. This cannot be
// auto-healed and must never be swallowed.
var ErrInconsistentState = errors.New("ledger and document state inconsistent")

// ErrInternal is a generic fallback for unexpected failures.
var ErrInternal = errors.New("internal error")

// AppError wraps a lower-level error with an HTTP-ish status code and message.
// Used by the repository layer where a sentinel alone is not descriptive enough.
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

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that unwraps to ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// UnknownAccountError reports account codes that could not be resolved.
// An incomplete resolution is fatal for the posting attempt, never partial.
type UnknownAccountError struct {
	MissingCodes []string
}

func (e *UnknownAccountError) Error() string {
	return fmt.Sprintf("unknown account code(s): %s", strings.Join(e.MissingCodes, ", "))
}

func (e *UnknownAccountError) Unwrap() error {
	return ErrValidation
}

// NewUnknownAccountError creates an UnknownAccountError for the given codes.
func NewUnknownAccountError(missingCodes []string) *UnknownAccountError {
	return &UnknownAccountError{MissingCodes: missingCodes}
}

// UnbalancedEntryError reports a debit/credit total mismatch. The comparison is
// exact; there is no epsilon tolerance. Retrying with the same input cannot
// succeed, the caller's line set is wrong.
type UnbalancedEntryError struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("entry does not balance: total debit %s, total credit %s",
		e.TotalDebit.String(), e.TotalCredit.String())
}

func (e *UnbalancedEntryError) Unwrap() error {
	return ErrValidation
}

// InvalidLineError reports a line that books both sides, or neither.
type InvalidLineError struct {
	Index  int
	Reason string
}

func (e *InvalidLineError) Error() string {
	return fmt.Sprintf("invalid journal line at index %d: %s", e.Index, e.Reason)
}

func (e *InvalidLineError) Unwrap() error {
	return ErrValidation
}
