package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrValidation
	ErrForbidden
	ErrBusyDoctor
	ErrConflict
	ErrStore
)

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

// StatusCode maps the error kind to an HTTP status. Consumed by the
// error middleware.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrValidation:
		return http.StatusBadRequest
	case ErrForbidden:
		return http.StatusForbidden
	case ErrBusyDoctor, ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
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

func Forbidden(message string) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: message,
	}
}

func BusyDoctor(doctorName string) *AppError {
	return &AppError{
		Code:    ErrBusyDoctor,
		Message: fmt.Sprintf("%s is currently busy, please select another doctor", doctorName),
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:    ErrConflict,
		Message: message,
	}
}

func Store(err error) *AppError {
	return &AppError{
		Code:    ErrStore,
		Message: "storage operation failed, please try again",
		Err:     err,
	}
}

// IsKind reports whether err is an AppError with the given code.
func IsKind(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func IsNotFound(err error) bool   { return IsKind(err, ErrNotFound) }
func IsValidation(err error) bool { return IsKind(err, ErrValidation) }
func IsForbidden(err error) bool  { return IsKind(err, ErrForbidden) }
func IsBusyDoctor(err error) bool { return IsKind(err, ErrBusyDoctor) }
func IsConflict(err error) bool   { return IsKind(err, ErrConflict) }
