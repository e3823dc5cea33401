package errors

import (
	"errors"
	"fmt"
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
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	ErrInvalidTransition
	ErrScheduleConflict
	ErrAlreadyTaken
	ErrAuthenticationFailure
)

// Error constructors
func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
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

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: message,
	}
}

// InvalidTransition signals a status change that is illegal from the
// entity's current state.
func InvalidTransition(message string) *AppError {
	return &AppError{
		Code:    ErrInvalidTransition,
		Message: message,
	}
}

// ScheduleConflict signals a date that falls outside every active
// schedule window of the target doctor.
func ScheduleConflict(message string) *AppError {
	return &AppError{
		Code:    ErrScheduleConflict,
		Message: message,
	}
}

// AlreadyTaken signals a username uniqueness violation.
func AlreadyTaken(message string) *AppError {
	return &AppError{
		Code:    ErrAlreadyTaken,
		Message: message,
	}
}

// AuthenticationFailure signals a credential mismatch during login.
func AuthenticationFailure(message string) *AppError {
	return &AppError{
		Code:    ErrAuthenticationFailure,
		Message: message,
	}
}

// CodeOf returns the error code carried by err, or ErrInternal for
// errors that did not originate in the domain layer.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
