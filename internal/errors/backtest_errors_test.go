package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNewValidationError_MatchesSentinel tests errors.Is against the wrapped sentinel
func TestNewValidationError_MatchesSentinel(t *testing.T) {
	err := NewValidationError("backtest", "Run", ErrLengthMismatch, "price has %d rows, signal has %d", 3, 2)

	assert.True(t, stderrors.Is(err, ErrLengthMismatch))
	assert.False(t, stderrors.Is(err, ErrIndexMismatch))
	assert.True(t, err.IsFatal())
	assert.False(t, err.IsRetryable())
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "price has 3 rows, signal has 2")
}

// TestIsValidation_Wrapped tests detection through fmt wrapping
func TestIsValidation_Wrapped(t *testing.T) {
	inner := NewValidationError("backtest", "Run", ErrTooShort, "one row")
	wrapped := fmt.Errorf("train partition: %w", inner)

	assert.True(t, IsValidation(wrapped))
	assert.False(t, IsValidation(stderrors.New("plain")))
}

// TestCategorizeError tests the string heuristics used by the data source
func TestCategorizeError(t *testing.T) {
	tests := []struct {
		msg       string
		category  ErrorCategory
		retryable bool
	}{
		{"dial tcp: connection refused", ErrorCategoryNetwork, true},
		{"context deadline exceeded", ErrorCategoryTimeout, true},
		{"429 Too Many Requests", ErrorCategoryRateLimit, true},
		{"API error: invalid symbol (code: 10001)", ErrorCategoryExchange, false},
		{"something odd", ErrorCategoryTemporary, true},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			be := CategorizeError(stderrors.New(tt.msg), "bybit", "GetKlines")
			assert.Equal(t, tt.category, be.Category)
			assert.Equal(t, tt.retryable, be.IsRetryable())
		})
	}

	assert.Nil(t, CategorizeError(nil, "bybit", "GetKlines"))
}

// TestCategorizeError_KeepsExisting tests that categorized errors pass through
func TestCategorizeError_KeepsExisting(t *testing.T) {
	orig := NewConfigurationError("config", "Validate", "fee_bps must be >= 0")
	assert.Same(t, orig, CategorizeError(orig, "x", "y"))
	assert.True(t, stderrors.Is(orig, ErrInvalidConfig))
}

// TestWithContext tests context attachment
func TestWithContext(t *testing.T) {
	err := NewBacktestError(ErrorCategoryData, "data", "Load", "bad row").WithContext("line", 7)
	assert.Equal(t, 7, err.Context["line"])
	assert.Nil(t, WrapError(nil, ErrorCategoryData, "data", "Load"))
}
