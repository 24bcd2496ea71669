// Package errors defines common error types for the simulator.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for heap operations and infrastructure.
const (
	CodeUnknown            = "UNKNOWN_ERROR"
	CodeUnknownObject      = "UNKNOWN_OBJECT"
	CodeDuplicateID        = "DUPLICATE_ID"
	CodeSelfReference      = "SELF_REFERENCE"
	CodeDuplicateRoot      = "DUPLICATE_ROOT_TOGGLE"
	CodeInvariantViolation = "INVARIANT_VIOLATION"
	CodeHeapExhausted      = "HEAP_EXHAUSTED"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeParseError         = "PARSE_ERROR"
	CodeConfigError        = "CONFIG_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeDatabaseError      = "DATABASE_ERROR"
	CodeUploadError        = "UPLOAD_ERROR"
	CodeUnavailable        = "UNAVAILABLE"
)

// AppError represents an application error with a code and message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target carries the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with a formatted message.
func Newf(code string, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Sentinels usable with errors.Is.
var (
	ErrUnknownObject      = New(CodeUnknownObject, "unknown object")
	ErrDuplicateID        = New(CodeDuplicateID, "duplicate object id")
	ErrSelfReference      = New(CodeSelfReference, "self reference")
	ErrDuplicateRoot      = New(CodeDuplicateRoot, "redundant root toggle")
	ErrInvariantViolation = New(CodeInvariantViolation, "invariant violation")
	ErrHeapExhausted      = New(CodeHeapExhausted, "heap exhausted")
	ErrInvalidInput       = New(CodeInvalidInput, "invalid input")
	ErrParseError         = New(CodeParseError, "parse error")
	ErrConfigError        = New(CodeConfigError, "configuration error")
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrDatabaseError      = New(CodeDatabaseError, "database error")
	ErrUploadError        = New(CodeUploadError, "upload error")
	ErrUnavailable        = New(CodeUnavailable, "component not configured")
)

// IsUnknownObject checks if the error references a non-live object.
func IsUnknownObject(err error) bool {
	return errors.Is(err, ErrUnknownObject)
}

// IsDuplicateID checks if the error is a duplicate id error.
func IsDuplicateID(err error) bool {
	return errors.Is(err, ErrDuplicateID)
}

// IsSelfReference checks if the error is a self reference error.
func IsSelfReference(err error) bool {
	return errors.Is(err, ErrSelfReference)
}

// IsDuplicateRoot checks if the error is a redundant root toggle.
func IsDuplicateRoot(err error) bool {
	return errors.Is(err, ErrDuplicateRoot)
}

// IsInvariantViolation checks if the error is an invariant violation.
func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrInvariantViolation)
}

// IsHeapExhausted checks if the error is a heap budget error.
func IsHeapExhausted(err error) bool {
	return errors.Is(err, ErrHeapExhausted)
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetErrorMessage extracts the error message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
