package errors

import (
	"fmt"
)

// ListError is the structured error type for bigpick.
// It provides rich context for error handling, logging, and user presentation.
type ListError struct {
	// Code is the unique error code (e.g., "ERR_402_INDEX_OUT_OF_RANGE").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Validation, Worker, etc.).
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
func (e *ListError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ListError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with ListError.
func (e *ListError) Is(target error) bool {
	if t, ok := target.(*ListError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *ListError) WithDetail(key, value string) *ListError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new ListError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *ListError {
	return &ListError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a ListError from an existing error.
// The error's message becomes the ListError message.
func Wrap(code string, err error) *ListError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// InvalidSize creates a dataset-size contract violation error.
func InvalidSize(message string) *ListError {
	return New(ErrCodeInvalidSize, message, nil)
}

// IndexOutOfRange creates an out-of-range index error.
// The offending index and the valid bound are attached as details.
func IndexOutOfRange(index, bound int) *ListError {
	return New(ErrCodeIndexOutOfRange,
		fmt.Sprintf("index %d out of range [0,%d)", index, bound), nil).
		WithDetail("index", fmt.Sprintf("%d", index)).
		WithDetail("bound", fmt.Sprintf("%d", bound))
}

// PoolExhausted creates a pool-capacity error.
func PoolExhausted(capacity int) *ListError {
	return New(ErrCodePoolExhausted,
		fmt.Sprintf("all %d pool slots bound, nothing releasable", capacity), nil)
}

// WorkerUnavailable creates a background-evaluation failure error.
// Callers recover this via the synchronous fallback path.
func WorkerUnavailable(message string, cause error) *ListError {
	return New(ErrCodeWorkerUnavailable, message, cause)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *ListError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *ListError {
	return New(ErrCodeInternal, message, cause)
}

// IsRetryable checks if an error is retryable.
// Returns true if the error is a ListError with Retryable flag set.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if le, ok := err.(*ListError); ok {
		return le.Retryable
	}
	return false
}

// GetCode extracts the error code from a ListError.
// Returns empty string if not a ListError.
func GetCode(err error) string {
	if le, ok := err.(*ListError); ok {
		return le.Code
	}
	return ""
}

// GetCategory extracts the category from a ListError.
// Returns empty string if not a ListError.
func GetCategory(err error) Category {
	if le, ok := err.(*ListError); ok {
		return le.Category
	}
	return ""
}
