package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesCategoryAndSeverity(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		category Category
		severity Severity
		retry    bool
	}{
		{"config", ErrCodeConfigInvalid, CategoryConfig, SeverityError, false},
		{"invalid size", ErrCodeInvalidSize, CategoryValidation, SeverityError, false},
		{"out of range", ErrCodeIndexOutOfRange, CategoryValidation, SeverityError, false},
		{"pool exhausted", ErrCodePoolExhausted, CategoryState, SeverityError, false},
		{"worker", ErrCodeWorkerUnavailable, CategoryWorker, SeverityWarning, true},
		{"internal", ErrCodeInternal, CategoryInternal, SeverityFatal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, "boom", nil)
			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.severity, err.Severity)
			assert.Equal(t, tt.retry, err.Retryable)
		})
	}
}

func TestListError_ErrorFormat(t *testing.T) {
	err := New(ErrCodeInvalidSize, "dataset size -1", nil)
	assert.Equal(t, "[ERR_401_INVALID_SIZE] dataset size -1", err.Error())
}

func TestListError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := Wrap(ErrCodeInternal, cause)

	require.NotNil(t, err)
	assert.Equal(t, cause, stderrors.Unwrap(err))
	assert.True(t, stderrors.Is(err, cause))
}

func TestListError_IsMatchesByCode(t *testing.T) {
	a := IndexOutOfRange(7, 5)
	b := IndexOutOfRange(99, 10)

	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, InvalidSize("nope")))
}

func TestIndexOutOfRange_CarriesDetails(t *testing.T) {
	err := IndexOutOfRange(1042, 100)

	assert.Equal(t, "1042", err.Details["index"])
	assert.Equal(t, "100", err.Details["bound"])
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(WorkerUnavailable("worker gone", nil)))
	assert.False(t, IsRetryable(InvalidSize("bad")))
	assert.False(t, IsRetryable(stderrors.New("plain")))
	assert.False(t, IsRetryable(nil))
}

func TestGetCodeAndCategory(t *testing.T) {
	err := PoolExhausted(8)

	assert.Equal(t, ErrCodePoolExhausted, GetCode(err))
	assert.Equal(t, CategoryState, GetCategory(err))
	assert.Equal(t, "", GetCode(stderrors.New("plain")))
}
