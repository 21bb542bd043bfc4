package bybit

import (
	"errors"
	"fmt"
	"net/http"
)

// BybitError represents a Bybit API error with additional context
type BybitError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *BybitError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("Bybit API error %d: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("Bybit API error %d: %s", e.Code, e.Message)
}

// Bybit error codes seen on public market endpoints
const (
	ErrCodeParamsError       = 10001
	ErrCodeInvalidAPIKey     = 10003
	ErrCodeInvalidSignature  = 10004
	ErrCodeRateLimitExceeded = 10006
	ErrCodeServerBusy        = 10016
	ErrCodeSymbolNotFound    = 110009
)

// IsRetryableError reports whether a Bybit error code is worth retrying
func IsRetryableError(err error) bool {
	var bybitErr *BybitError
	if !errors.As(err, &bybitErr) {
		return false
	}
	switch bybitErr.Code {
	case ErrCodeRateLimitExceeded, ErrCodeServerBusy,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// IsRateLimitError checks if the error is due to rate limiting
func IsRateLimitError(err error) bool {
	var bybitErr *BybitError
	return errors.As(err, &bybitErr) && bybitErr.Code == ErrCodeRateLimitExceeded
}

// NewBybitError creates a new BybitError
func NewBybitError(code int, message string, details ...string) *BybitError {
	err := &BybitError{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

// ParseAPIError extracts error information from the API response
func ParseAPIError(retCode int, retMsg string) error {
	if retCode == 0 {
		return nil
	}
	return NewBybitError(retCode, retMsg, GetErrorDescription(retCode))
}

// ErrorCodes maps common error codes to human-readable messages
var ErrorCodes = map[int]string{
	ErrCodeParamsError:       "Invalid request parameters",
	ErrCodeInvalidAPIKey:     "Invalid API key",
	ErrCodeInvalidSignature:  "Invalid signature",
	ErrCodeRateLimitExceeded: "Rate limit exceeded",
	ErrCodeServerBusy:        "Server busy",
	ErrCodeSymbolNotFound:    "Symbol not found",
}

// GetErrorDescription returns a human-readable description for an error code
func GetErrorDescription(code int) string {
	if desc, exists := ErrorCodes[code]; exists {
		return desc
	}
	return fmt.Sprintf("Unknown error code: %d", code)
}
