package errors

import (
	"fmt"
)

// CaseError is the structured error type for caselens.
// It provides rich context for error handling, logging, and user presentation.
type CaseError struct {
	// Code is the unique error code (e.g., "ERR_103_EMPTY_CORPUS").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Backend, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool
}

// Error implements the error interface.
func (e *CaseError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *CaseError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with CaseError.
func (e *CaseError) Is(target error) bool {
	if t, ok := target.(*CaseError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *CaseError) WithDetail(key, value string) *CaseError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new CaseError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *CaseError {
	return &CaseError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a CaseError from an existing error.
// The error's message becomes the CaseError message.
func Wrap(code string, err error) *CaseError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration fault.
func ConfigError(message string, cause error) *CaseError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// EmptyCorpusError creates the fault for an index build over zero chunks.
func EmptyCorpusError(message string) *CaseError {
	return New(ErrCodeEmptyCorpus, message, nil)
}

// BackendError creates a transient backend fault (timeout or unavailability).
func BackendError(message string, cause error) *CaseError {
	return New(ErrCodeBackendUnavailable, message, cause)
}

// TimeoutError creates a transient backend timeout fault.
func TimeoutError(message string, cause error) *CaseError {
	return New(ErrCodeBackendTimeout, message, cause)
}

// ValidationError creates an input validation error.
func ValidationError(message string, cause error) *CaseError {
	return New(ErrCodeInvalidInput, message, cause)
}

// ConsistencyError creates the fatal fault for index/registry drift.
func ConsistencyError(message string) *CaseError {
	return New(ErrCodeConsistency, message, nil)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *CaseError {
	return New(ErrCodeInternal, message, cause)
}

// IsTransient checks if an error is a recoverable backend fault.
// Returns true if the error is a CaseError with the Retryable flag set.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if ce, ok := err.(*CaseError); ok {
		return ce.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if ce, ok := err.(*CaseError); ok {
		return ce.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a CaseError.
// Returns empty string if not a CaseError.
func GetCode(err error) string {
	if ce, ok := err.(*CaseError); ok {
		return ce.Code
	}
	return ""
}

// GetCategory extracts the category from a CaseError.
// Returns empty string if not a CaseError.
func GetCategory(err error) Category {
	if ce, ok := err.(*CaseError); ok {
		return ce.Category
	}
	return ""
}
