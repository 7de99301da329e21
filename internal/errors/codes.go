// Package errors provides structured error handling for bigpick.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 4XX: Validation errors (contract violations by the caller)
//   - 5XX: Worker and internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryValidation indicates caller contract violations (bad sizes,
	// out-of-range indices). These are programming errors, never recovered.
	CategoryValidation Category = "VALIDATION"
	// CategoryState indicates the widget was driven into an impossible
	// state (e.g. binding into an exhausted pool).
	CategoryState Category = "STATE"
	// CategoryWorker indicates background evaluation failures. Recovered
	// locally via the synchronous fallback path.
	CategoryWorker Category = "WORKER"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Validation errors (400-499)
	ErrCodeInvalidSize     = "ERR_401_INVALID_SIZE"
	ErrCodeIndexOutOfRange = "ERR_402_INDEX_OUT_OF_RANGE"
	ErrCodePoolExhausted   = "ERR_403_POOL_EXHAUSTED"
	ErrCodeInvalidAlign    = "ERR_404_INVALID_ALIGN"

	// Worker / internal errors (500-599)
	ErrCodeWorkerUnavailable = "ERR_501_WORKER_UNAVAILABLE"
	ErrCodeInternal          = "ERR_502_INTERNAL"
)

// categoryFromCode derives the category from an error code prefix.
func categoryFromCode(code string) Category {
	switch {
	case len(code) < 5:
		return CategoryInternal
	case code[4] == '1':
		return CategoryConfig
	case code[4] == '4':
		if code == ErrCodePoolExhausted {
			return CategoryState
		}
		return CategoryValidation
	case code == ErrCodeWorkerUnavailable:
		return CategoryWorker
	default:
		return CategoryInternal
	}
}

// severityFromCode derives the severity from an error code.
// Worker failures are warnings because the scheduler recovers them.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeWorkerUnavailable:
		return SeverityWarning
	case ErrCodeInternal:
		return SeverityFatal
	default:
		return SeverityError
	}
}

// isRetryableCode reports whether an operation failing with this code may
// be retried. Only the worker path qualifies; validation errors never do.
func isRetryableCode(code string) bool {
	return code == ErrCodeWorkerUnavailable
}
