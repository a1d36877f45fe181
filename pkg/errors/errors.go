package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown    ErrorCode = "UNKNOWN"
	ErrInternal   ErrorCode = "INTERNAL"
	ErrFileAccess ErrorCode = "FILE_ACCESS"

	// Declaration errors
	ErrParse         ErrorCode = "PARSE"
	ErrMissingSource ErrorCode = "MISSING_SOURCE"

	// Filesystem errors
	ErrLinkConflict ErrorCode = "LINK_CONFLICT"
	ErrPermission   ErrorCode = "PERMISSION"

	// Configuration errors
	ErrConfig ErrorCode = "CONFIG"

	// External command errors
	ErrSubprocess ErrorCode = "SUBPROCESS"
)

// FreshError represents a structured error with code and details
type FreshError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *FreshError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *FreshError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *FreshError) Is(target error) bool {
	var targetErr *FreshError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new FreshError with the given code and message
func New(code ErrorCode, message string) *FreshError {
	return &FreshError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new FreshError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *FreshError {
	return &FreshError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a FreshError
func Wrap(err error, code ErrorCode, message string) *FreshError {
	if err == nil {
		return nil
	}
	return &FreshError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *FreshError {
	if err == nil {
		return nil
	}
	return &FreshError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *FreshError) WithDetail(key string, value interface{}) *FreshError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDeclaration records the originating declaration's file, line and
// literal source text so failures point the user at the line to fix.
func (e *FreshError) WithDeclaration(file string, line int, text string) *FreshError {
	return e.WithDetail("file", file).WithDetail("line", line).WithDetail("text", text)
}

// Declaration returns the originating declaration context, if recorded.
func (e *FreshError) Declaration() (file string, line int, text string, ok bool) {
	if e.Details == nil {
		return "", 0, "", false
	}
	file, okFile := e.Details["file"].(string)
	line, okLine := e.Details["line"].(int)
	text, _ = e.Details["text"].(string)
	return file, line, text, okFile && okLine
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var freshErr *FreshError
	if errors.As(err, &freshErr) {
		return freshErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a FreshError
func GetErrorCode(err error) ErrorCode {
	var freshErr *FreshError
	if errors.As(err, &freshErr) {
		return freshErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a FreshError
func GetErrorDetails(err error) map[string]interface{} {
	var freshErr *FreshError
	if errors.As(err, &freshErr) {
		return freshErr.Details
	}
	return nil
}
