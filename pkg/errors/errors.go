package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
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

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrValidation
	ErrUnauthorized
	ErrConflict
	ErrInternal
	ErrNoRecurrence
	ErrInvalidSchedule
	ErrTransportTransient
	ErrTransportPermanent
)

// StatusCode maps error codes to HTTP statuses for the error middleware.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrValidation, ErrNoRecurrence, ErrInvalidSchedule:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Error constructors
func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func Validation(message string, err error) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
		Err:     err,
	}
}

func Conflict(message string, err error) *AppError {
	return &AppError{
		Code:    ErrConflict,
		Message: message,
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// NoRecurrence is returned when a non-recurring rule is asked to advance.
func NoRecurrence() *AppError {
	return &AppError{
		Code:    ErrNoRecurrence,
		Message: "reminder has no recurrence rule",
	}
}

func InvalidSchedule(message string, err error) *AppError {
	return &AppError{
		Code:    ErrInvalidSchedule,
		Message: message,
		Err:     err,
	}
}

// TransportTransient marks a dispatch failure that may be retried with backoff.
func TransportTransient(err error) *AppError {
	return &AppError{
		Code:    ErrTransportTransient,
		Message: "transient transport failure",
		Err:     err,
	}
}

// TransportPermanent marks a dispatch failure that must not be retried for
// this instant. Future offsets for the same reminder are still attempted.
func TransportPermanent(err error) *AppError {
	return &AppError{
		Code:    ErrTransportPermanent,
		Message: "permanent transport failure",
		Err:     err,
	}
}

func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func IsNotFound(err error) bool { return Is(err, ErrNotFound) }

func IsValidation(err error) bool { return Is(err, ErrValidation) }
