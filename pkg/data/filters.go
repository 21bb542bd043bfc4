package data

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/types"
)

// DefaultDataFilter implements DataFilter for common filtering operations
type DefaultDataFilter struct{}

// NewDefaultDataFilter creates a new default data filter
func NewDefaultDataFilter() *DefaultDataFilter {
	return &DefaultDataFilter{}
}

// FilterByPeriod keeps the rows within period of the latest timestamp
func (f *DefaultDataFilter) FilterByPeriod(data []types.OHLCV, period time.Duration) []types.OHLCV {
	if period <= 0 || len(data) == 0 {
		return data
	}

	cutoffTime := data[len(data)-1].Timestamp.Add(-period)
	startIdx := len(data) - 1
	for i, candle := range data {
		if !candle.Timestamp.Before(cutoffTime) {
			startIdx = i
			break
		}
	}

	return data[startIdx:]
}

// FilterByDateRange keeps rows in [start, end]. A zero bound is open.
func (f *DefaultDataFilter) FilterByDateRange(data []types.OHLCV, start, end time.Time) []types.OHLCV {
	var filtered []types.OHLCV
	for _, candle := range data {
		if !start.IsZero() && candle.Timestamp.Before(start) {
			continue
		}
		if !end.IsZero() && candle.Timestamp.After(end) {
			continue
		}
		filtered = append(filtered, candle)
	}
	return filtered
}

// ValidateTimeSequence ensures data is in strictly chronological order
func (f *DefaultDataFilter) ValidateTimeSequence(data []types.OHLCV) error {
	for i := 1; i < len(data); i++ {
		if data[i].Timestamp.Before(data[i-1].Timestamp) {
			return fmt.Errorf("data not in chronological order at index %d: %s comes after %s",
				i, data[i].Timestamp.Format(time.RFC3339), data[i-1].Timestamp.Format(time.RFC3339))
		}
		if data[i].Timestamp.Equal(data[i-1].Timestamp) {
			return fmt.Errorf("duplicate timestamp at index %d: %s",
				i, data[i].Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}

// ParseTrailingPeriod parses period strings like "7d", "365d", "180days" or a Go duration
func ParseTrailingPeriod(s string) (time.Duration, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasSuffix(s, "days") {
		s = strings.TrimSuffix(s, "days") + "d"
	}
	if strings.HasSuffix(s, "d") {
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || n <= 0 {
			return 0, false
		}
		return time.Duration(n) * 24 * time.Hour, true
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d, true
	}
	return 0, false
}
