package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error so callers can branch on it instead of on concrete types.
type Kind string

const (
	KindValidation          Kind = "VALIDATION"
	KindUnauthorized        Kind = "UNAUTHORIZED"
	KindForbidden           Kind = "FORBIDDEN"
	KindNotFound            Kind = "NOT_FOUND"
	KindInsufficientFunds   Kind = "INSUFFICIENT_FUNDS"
	KindBalanceMustBeZero   Kind = "BALANCE_MUST_BE_ZERO"
	KindIdempotencyConflict Kind = "IDEMPOTENCY_CONFLICT"
	KindTechnical           Kind = "TECHNICAL_FAILURE"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden operation")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrBalanceMustBeZero   = errors.New("balance must be zero")
	ErrIdempotencyConflict = errors.New("idempotency key reused with a different request")
	ErrTechnical           = errors.New("technical failure")
)

var sentinelByKind = map[Kind]error{
	KindValidation:          ErrValidation,
	KindUnauthorized:        ErrUnauthorized,
	KindForbidden:           ErrForbidden,
	KindNotFound:            ErrNotFound,
	KindInsufficientFunds:   ErrInsufficientFunds,
	KindBalanceMustBeZero:   ErrBalanceMustBeZero,
	KindIdempotencyConflict: ErrIdempotencyConflict,
	KindTechnical:           ErrTechnical,
}

// AppError carries a Kind, a caller-facing message and an optional cause.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrForbidden) and friends match on the kind.
func (e *AppError) Is(target error) bool {
	return sentinelByKind[e.Kind] == target
}

// NewAppError builds an AppError of the given kind.
func NewAppError(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func Validationf(format string, args ...any) error {
	return NewAppError(KindValidation, fmt.Sprintf(format, args...), nil)
}

func Forbiddenf(format string, args ...any) error {
	return NewAppError(KindForbidden, fmt.Sprintf(format, args...), nil)
}

func NotFoundf(format string, args ...any) error {
	return NewAppError(KindNotFound, fmt.Sprintf(format, args...), nil)
}

func InsufficientFundsf(format string, args ...any) error {
	return NewAppError(KindInsufficientFunds, fmt.Sprintf(format, args...), nil)
}

func BalanceMustBeZerof(format string, args ...any) error {
	return NewAppError(KindBalanceMustBeZero, fmt.Sprintf(format, args...), nil)
}

func IdempotencyConflictf(format string, args ...any) error {
	return NewAppError(KindIdempotencyConflict, fmt.Sprintf(format, args...), nil)
}

// Technical wraps an infrastructure failure. These are safe to retry with the same idempotency key.
func Technical(message string, err error) error {
	return NewAppError(KindTechnical, message, err)
}

// KindOf reports the Kind of err. Errors that carry no kind are technical.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	for kind, sentinel := range sentinelByKind {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	if errors.Is(err, ErrDuplicate) {
		return KindValidation
	}
	return KindTechnical
}

// PublicMessage returns a message safe to show to callers. Technical details are never leaked.
func PublicMessage(err error) string {
	if KindOf(err) == KindTechnical {
		return "internal error, please retry"
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
