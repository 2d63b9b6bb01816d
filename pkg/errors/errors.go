package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrStudentNotFound    = errors.New("student not found")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrInvalidWindow      = errors.New("invalid window kind")
	ErrInvalidForm        = errors.New("invalid form data")
	ErrUnexpectedEnvelope = errors.New("unexpected response envelope")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrDigestNotFound     = errors.New("due-fee digest not found")
	ErrLoadSuperseded     = errors.New("dashboard load superseded")
	ErrConflict           = errors.New("record already exists")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeStudentNotFound    = "STUDENT_NOT_FOUND"
	ErrCodeDepartmentNotFound = "DEPARTMENT_NOT_FOUND"
	ErrCodeInvalidWindow      = "INVALID_WINDOW"
	ErrCodeValidation         = "VALIDATION_FAILED"
	ErrCodeBackendError       = "BACKEND_ERROR"
	ErrCodeDatabaseError      = "DATABASE_ERROR"
	ErrCodeCacheError         = "CACHE_ERROR"
	ErrCodeDigestNotFound     = "DIGEST_NOT_FOUND"
	ErrCodeSuperseded         = "LOAD_SUPERSEDED"
	ErrCodeConflict           = "CONFLICT"
)

// Code extracts the business error code from err, or "" if err is not a BusinessError
func Code(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

func WrapStudentNotFound(studentID string) *BusinessError {
	return NewBusinessError(
		ErrCodeStudentNotFound,
		fmt.Sprintf("Student with ID %s not found", studentID),
		ErrStudentNotFound,
	)
}

func WrapDepartmentNotFound(departmentID string) *BusinessError {
	return NewBusinessError(
		ErrCodeDepartmentNotFound,
		fmt.Sprintf("Department with ID %s not found", departmentID),
		ErrDepartmentNotFound,
	)
}

func WrapInvalidWindow(kind string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidWindow,
		fmt.Sprintf("window must be one of today, week, month, year; got %q", kind),
		ErrInvalidWindow,
	)
}

// WrapValidation carries the translated field messages of a rejected form
func WrapValidation(message string) *BusinessError {
	return NewBusinessError(ErrCodeValidation, message, ErrInvalidForm)
}

func WrapBackendError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeBackendError,
		"backend request failed",
		err,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}

func WrapDigestNotFound() *BusinessError {
	return NewBusinessError(
		ErrCodeDigestNotFound,
		"no due-fee digest has been computed yet",
		ErrDigestNotFound,
	)
}

// WrapSuperseded reports a dashboard load replaced by a newer window selection
func WrapSuperseded() *BusinessError {
	return NewBusinessError(
		ErrCodeSuperseded,
		"a newer dashboard selection replaced this load",
		ErrLoadSuperseded,
	)
}

// WrapConflict reports a write rejected because a unique field is already taken
func WrapConflict(message string) *BusinessError {
	return NewBusinessError(ErrCodeConflict, message, ErrConflict)
}
