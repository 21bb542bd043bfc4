package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCategory represents the kind of failure
type ErrorCategory string

const (
	// Fatal categories: the run must stop
	ErrorCategoryValidation    ErrorCategory = "VALIDATION"
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"
	ErrorCategoryData          ErrorCategory = "DATA"
	ErrorCategoryExchange      ErrorCategory = "EXCHANGE"

	// Transient categories raised by the data source
	ErrorCategoryNetwork   ErrorCategory = "NETWORK"
	ErrorCategoryTimeout   ErrorCategory = "TIMEOUT"
	ErrorCategoryRateLimit ErrorCategory = "RATE_LIMIT"
	ErrorCategoryTemporary ErrorCategory = "TEMPORARY"
)

// Input-contract sentinels. Match them with errors.Is.
var (
	ErrLengthMismatch   = stderrors.New("series lengths differ")
	ErrIndexMismatch    = stderrors.New("series indices differ")
	ErrUnorderedIndex   = stderrors.New("timestamps must be strictly increasing")
	ErrMissingValue     = stderrors.New("series contains a missing value")
	ErrNonFinite        = stderrors.New("series contains a non-finite value")
	ErrNonPositivePrice = stderrors.New("price must be positive")
	ErrTooShort         = stderrors.New("series needs at least two observations")
	ErrInvalidConfig    = stderrors.New("invalid configuration")
)

// BacktestError is a categorized error with the component and operation
// where it was raised.
type BacktestError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Underlying error
	Context    map[string]interface{}
	Retryable  bool
}

// Error implements the error interface
func (e *BacktestError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *BacktestError) Unwrap() error {
	return e.Underlying
}

// IsRetryable returns whether the operation may be attempted again
func (e *BacktestError) IsRetryable() bool {
	return e.Retryable
}

// IsFatal returns whether this error must abort the run
func (e *BacktestError) IsFatal() bool {
	switch e.Category {
	case ErrorCategoryValidation, ErrorCategoryConfiguration, ErrorCategoryData, ErrorCategoryExchange:
		return true
	}
	return false
}

// WithContext adds context information to the error
func (e *BacktestError) WithContext(key string, value interface{}) *BacktestError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithRetryable sets the retryable flag
func (e *BacktestError) WithRetryable(retryable bool) *BacktestError {
	e.Retryable = retryable
	return e
}

// NewBacktestError creates a new categorized error
func NewBacktestError(category ErrorCategory, component, operation, message string) *BacktestError {
	return &BacktestError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
		Context:   make(map[string]interface{}),
		Retryable: isRetryableCategory(category),
	}
}

// WrapError wraps an existing error with category context
func WrapError(err error, category ErrorCategory, component, operation string) *BacktestError {
	if err == nil {
		return nil
	}
	return &BacktestError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
		Context:    make(map[string]interface{}),
		Retryable:  isRetryableCategory(category),
	}
}

func isRetryableCategory(category ErrorCategory) bool {
	switch category {
	case ErrorCategoryNetwork, ErrorCategoryTimeout, ErrorCategoryTemporary, ErrorCategoryRateLimit:
		return true
	default:
		return false
	}
}

// CategorizeError attempts to categorize a generic error from the data source
func CategorizeError(err error, component, operation string) *BacktestError {
	if err == nil {
		return nil
	}

	var be *BacktestError
	if stderrors.As(err, &be) {
		return be
	}

	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "timeout") || strings.Contains(msg, "context deadline exceeded") {
		return WrapError(err, ErrorCategoryTimeout, component, operation)
	}
	if strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests") {
		return WrapError(err, ErrorCategoryRateLimit, component, operation)
	}
	if strings.Contains(msg, "connection") || strings.Contains(msg, "network") ||
		strings.Contains(msg, "dns") || strings.Contains(msg, "dial") || strings.Contains(msg, "eof") {
		return WrapError(err, ErrorCategoryNetwork, component, operation)
	}
	if strings.Contains(msg, "api error") || strings.Contains(msg, "invalid") {
		return WrapError(err, ErrorCategoryExchange, component, operation)
	}

	return WrapError(err, ErrorCategoryTemporary, component, operation)
}

// NewValidationError reports an input-contract violation. sentinel is one of
// the Err* values above so callers can match it with errors.Is.
func NewValidationError(component, operation string, sentinel error, format string, args ...interface{}) *BacktestError {
	e := WrapError(sentinel, ErrorCategoryValidation, component, operation)
	e.Message = fmt.Sprintf(format, args...)
	return e
}

func NewConfigurationError(component, operation, message string) *BacktestError {
	e := WrapError(ErrInvalidConfig, ErrorCategoryConfiguration, component, operation)
	e.Message = message
	return e
}

func NewDataError(component, operation string, err error) *BacktestError {
	return WrapError(err, ErrorCategoryData, component, operation)
}

func NewNetworkError(component, operation string, err error) *BacktestError {
	return WrapError(err, ErrorCategoryNetwork, component, operation)
}

// IsValidation reports whether err is an input-contract violation
func IsValidation(err error) bool {
	var be *BacktestError
	return stderrors.As(err, &be) && be.Category == ErrorCategoryValidation
}
