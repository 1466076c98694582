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
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Configuration errors
	ErrConfigLoad    ErrorCode = "CONFIG_LOAD"
	ErrConfigParse   ErrorCode = "CONFIG_PARSE"
	ErrConfigInvalid ErrorCode = "CONFIG_INVALID"
	ErrConfigEmpty   ErrorCode = "CONFIG_EMPTY"
	ErrConfigLoop    ErrorCode = "CONFIG_LOOP"

	// Feature errors
	ErrFeatureNotFound ErrorCode = "FEATURE_NOT_FOUND"
	ErrFeatureInvalid  ErrorCode = "FEATURE_INVALID"
	ErrUnknownStage    ErrorCode = "UNKNOWN_STAGE"
	ErrFeatureLoad     ErrorCode = "FEATURE_LOAD"
	ErrDependency      ErrorCode = "DEPENDENCY"

	// Service errors
	ErrDuplicateService ErrorCode = "DUPLICATE_SERVICE"

	// Container lifecycle errors
	ErrLifecycle ErrorCode = "LIFECYCLE"
	ErrCleanup   ErrorCode = "CLEANUP"
)

// GenxError represents a structured error with code and details
type GenxError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *GenxError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *GenxError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *GenxError) Is(target error) bool {
	var targetErr *GenxError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new GenxError with the given code and message
func New(code ErrorCode, message string) *GenxError {
	return &GenxError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new GenxError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *GenxError {
	return &GenxError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a GenxError
func Wrap(err error, code ErrorCode, message string) *GenxError {
	if err == nil {
		return nil
	}
	return &GenxError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *GenxError {
	if err == nil {
		return nil
	}
	return &GenxError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *GenxError) WithDetail(key string, value interface{}) *GenxError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *GenxError) WithDetails(details map[string]interface{}) *GenxError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error, or any error it wraps, carries a specific code.
// A load failure wrapping a duplicate registration matches both codes.
func IsErrorCode(err error, code ErrorCode) bool {
	for err != nil {
		if genxErr, ok := err.(*GenxError); ok && genxErr.Code == code {
			return true
		}
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				if IsErrorCode(inner, code) {
					return true
				}
			}
			return false
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetErrorCode returns the outermost error code, or ErrUnknown if not a GenxError
func GetErrorCode(err error) ErrorCode {
	var genxErr *GenxError
	if errors.As(err, &genxErr) {
		return genxErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a GenxError
func GetErrorDetails(err error) map[string]interface{} {
	var genxErr *GenxError
	if errors.As(err, &genxErr) {
		return genxErr.Details
	}
	return nil
}
