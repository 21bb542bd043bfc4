package bybit

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	bterrors "github.com/ducminhle1904/crypto-momentum-backtest/internal/errors"
	"go.uber.org/zap"
)

// RetryConfig holds configuration for retry mechanisms
type RetryConfig struct {
	MaxRetries      uint64        `json:"maxRetries"`
	InitialInterval time.Duration `json:"initialInterval"`
	MaxInterval     time.Duration `json:"maxInterval"`
	MaxElapsedTime  time.Duration `json:"maxElapsedTime"`
	Multiplier      float64       `json:"multiplier"`
}

// DefaultRetryConfig returns a default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialInterval: time.Second,
		MaxInterval:     30 * time.Second,
		MaxElapsedTime:  2 * time.Minute,
		Multiplier:      2.0,
	}
}

func (r RetryConfig) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.InitialInterval
	b.MaxInterval = r.MaxInterval
	b.MaxElapsedTime = r.MaxElapsedTime
	if r.Multiplier > 0 {
		b.Multiplier = r.Multiplier
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, r.MaxRetries), ctx)
}

// Retry runs fn under the rate limiter, retrying transient failures with
// exponential backoff. Non-retryable errors are returned immediately.
func (c *Client) Retry(ctx context.Context, operation string, fn func() error) error {
	attempt := func() error {
		if err := c.wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		err := fn()
		if err == nil {
			return nil
		}
		if !isRetryable(err, operation) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, next time.Duration) {
		c.logger.Warn("retrying bybit request",
			zap.String("operation", operation),
			zap.Duration("backoff", next),
			zap.Error(err))
	}

	err := backoff.RetryNotify(attempt, c.retry.backOff(ctx), notify)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		return ctxErr
	}
	return categorize(err, operation)
}

// categorize maps Bybit error codes before falling back to message heuristics
func categorize(err error, operation string) *bterrors.BacktestError {
	var bybitErr *BybitError
	if errors.As(err, &bybitErr) {
		switch {
		case IsRateLimitError(bybitErr):
			return bterrors.WrapError(err, bterrors.ErrorCategoryRateLimit, "bybit", operation)
		case IsRetryableError(bybitErr):
			return bterrors.WrapError(err, bterrors.ErrorCategoryTemporary, "bybit", operation)
		default:
			return bterrors.WrapError(err, bterrors.ErrorCategoryExchange, "bybit", operation)
		}
	}
	return bterrors.CategorizeError(err, "bybit", operation)
}

func isRetryable(err error, operation string) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return categorize(err, operation).IsRetryable()
}
