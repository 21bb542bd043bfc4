package data

import (
	"math"
	"sort"
	"time"

	bterrors "github.com/ducminhle1904/crypto-momentum-backtest/internal/errors"
	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/types"
	"github.com/moznion/go-optional"
)

// DefaultOutlierThreshold flags daily moves larger than 100%
const DefaultOutlierThreshold = 1.0

// QualityReport describes what the cleaning pipeline changed or noticed
type QualityReport struct {
	Rows         int
	Duplicates   int
	FilledDays   int
	DroppedRows  int
	OutlierDates []time.Time
}

// CleanTable converts timestamps to UTC, sorts ascending and removes
// duplicate timestamps. The last row for a timestamp wins.
func CleanTable(rows []types.OHLCV) []types.OHLCV {
	cleaned := make([]types.OHLCV, len(rows))
	for i, r := range rows {
		r.Timestamp = r.Timestamp.UTC()
		cleaned[i] = r
	}
	sort.SliceStable(cleaned, func(i, j int) bool {
		return cleaned[i].Timestamp.Before(cleaned[j].Timestamp)
	})

	out := cleaned[:0]
	for _, r := range cleaned {
		if n := len(out); n > 0 && out[n-1].Timestamp.Equal(r.Timestamp) {
			out[n-1] = r
			continue
		}
		out = append(out, r)
	}
	return out
}

// ValidateQuality checks the table the engine relies on: non-empty, UTC,
// strictly increasing timestamps and a positive finite close on every row.
func ValidateQuality(rows []types.OHLCV) error {
	const op = "ValidateQuality"

	if len(rows) == 0 {
		return dataError(op, bterrors.ErrTooShort, "no data provided")
	}
	for i, r := range rows {
		if r.Timestamp.Location() != time.UTC {
			return dataError(op, bterrors.ErrUnorderedIndex, "row %d timestamp %s is not UTC", i, r.Timestamp)
		}
		if i > 0 && !r.Timestamp.After(rows[i-1].Timestamp) {
			return dataError(op, bterrors.ErrUnorderedIndex, "row %d at %s is not after the previous row", i, r.Timestamp.Format(time.RFC3339))
		}
		switch {
		case math.IsNaN(r.Close):
			return dataError(op, bterrors.ErrMissingValue, "close is missing at %s", r.Timestamp.Format(time.RFC3339))
		case math.IsInf(r.Close, 0):
			return dataError(op, bterrors.ErrNonFinite, "close is infinite at %s", r.Timestamp.Format(time.RFC3339))
		case r.Close <= 0:
			return dataError(op, bterrors.ErrNonPositivePrice, "close %v at %s", r.Close, r.Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}

// EnsureContinuousDaily reindexes rows to one row per calendar day from the
// first timestamp to the last, carrying the previous row forward into gaps.
// Rows off the daily grid are dropped. It returns the new table, the number
// of filled days and the number of dropped rows.
func EnsureContinuousDaily(rows []types.OHLCV) ([]types.OHLCV, int, int) {
	if len(rows) == 0 {
		return nil, 0, 0
	}

	byTime := make(map[int64]types.OHLCV, len(rows))
	for _, r := range rows {
		byTime[r.Timestamp.UnixMilli()] = r
	}

	start, end := rows[0].Timestamp, rows[len(rows)-1].Timestamp
	out := make([]types.OHLCV, 0, len(rows))
	filled := 0
	for ts := start; !ts.After(end); ts = ts.AddDate(0, 0, 1) {
		if r, ok := byTime[ts.UnixMilli()]; ok {
			out = append(out, r)
			continue
		}
		prev := out[len(out)-1]
		prev.Timestamp = ts
		out = append(out, prev)
		filled++
	}

	dropped := len(rows) - (len(out) - filled)
	return out, filled, dropped
}

// FlagOutlierReturns marks rows whose close-to-close return exceeds threshold
// in absolute value. The first row has no return and is never flagged.
func FlagOutlierReturns(rows []types.OHLCV, threshold float64) types.Mask {
	mask := types.Mask{
		Index:  make([]time.Time, len(rows)),
		Values: make([]optional.Option[bool], len(rows)),
	}
	for i, r := range rows {
		mask.Index[i] = r.Timestamp
		if i == 0 {
			mask.Values[i] = optional.Some(false)
			continue
		}
		ret := r.Close/rows[i-1].Close - 1
		mask.Values[i] = optional.Some(math.Abs(ret) > threshold)
	}
	return mask
}

// ToPriceSeries extracts the close column
func ToPriceSeries(rows []types.OHLCV) types.Series {
	index := make([]time.Time, len(rows))
	values := make([]float64, len(rows))
	for i, r := range rows {
		index[i] = r.Timestamp
		values[i] = r.Close
	}
	return types.Series{Index: index, Values: values}
}
