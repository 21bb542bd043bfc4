package validation

import (
	stderrors "errors"
	"testing"
	"time"

	bterrors "github.com/ducminhle1904/crypto-momentum-backtest/internal/errors"
	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var splitStart = time.Date(2023, 12, 29, 0, 0, 0, 0, time.UTC)

func dailyIndexFrom(start time.Time, n int) []time.Time {
	index := make([]time.Time, n)
	for i := range index {
		index[i] = start.AddDate(0, 0, i)
	}
	return index
}

func pricePair(n int) (types.Series, types.Series) {
	index := dailyIndexFrom(splitStart, n)
	price := make([]float64, n)
	signal := make([]float64, n)
	for i := range price {
		price[i] = 100 + float64(i)
		signal[i] = float64(i % 2)
	}
	return types.NewSeries(index, price), types.NewSeries(index, signal)
}

// TestSplitAtDate_Inclusive tests that the cutoff row lands in both partitions
func TestSplitAtDate_Inclusive(t *testing.T) {
	price, signal := pricePair(6)
	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	split, err := SplitAtDate(price, signal, cutoff, true)
	require.NoError(t, err)

	assert.Equal(t, 4, split.Train.Price.Len())
	assert.Equal(t, 3, split.Test.Price.Len())
	assert.True(t, split.Train.End().Equal(cutoff))
	assert.True(t, split.Test.Start().Equal(cutoff))
	assert.Equal(t, []float64{0, 1, 0, 1}, split.Train.Signal.Values)
	assert.True(t, types.IndexEqual(split.Test.Price.Index, split.Test.Signal.Index))
}

// TestSplitAtDate_Exclusive tests that the cutoff row goes to test only
func TestSplitAtDate_Exclusive(t *testing.T) {
	price, signal := pricePair(6)
	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	split, err := NewDefaultDataSplitter(false).SplitAtDate(price, signal, cutoff)
	require.NoError(t, err)

	assert.Equal(t, 3, split.Train.Price.Len())
	assert.Equal(t, 3, split.Test.Price.Len())
	assert.True(t, split.Train.End().Before(cutoff))
	assert.True(t, split.Test.Start().Equal(cutoff))
}

// TestSplitAtDate_CutoffBetweenRows tests a cutoff that matches no row
func TestSplitAtDate_CutoffBetweenRows(t *testing.T) {
	price, signal := pricePair(6)
	cutoff := time.Date(2023, 12, 31, 12, 0, 0, 0, time.UTC)

	split, err := SplitAtDate(price, signal, cutoff, true)
	require.NoError(t, err)
	assert.Equal(t, 3, split.Train.Price.Len())
	assert.Equal(t, 3, split.Test.Price.Len())
}

// TestSplitAtDate_TooShort tests that a partition under two rows is rejected
func TestSplitAtDate_TooShort(t *testing.T) {
	price, signal := pricePair(6)

	_, err := SplitAtDate(price, signal, splitStart, true)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, bterrors.ErrTooShort))

	_, err = SplitAtDate(price, signal, splitStart.AddDate(0, 0, 5), false)
	require.Error(t, err)
	assert.True(t, bterrors.IsValidation(err))
}

// TestSplitAtDate_Misaligned tests that misaligned inputs are rejected
func TestSplitAtDate_Misaligned(t *testing.T) {
	price, _ := pricePair(6)
	other := types.NewSeries(dailyIndexFrom(splitStart.AddDate(0, 0, 1), 6), make([]float64, 6))

	_, err := SplitAtDate(price, other, splitStart.AddDate(0, 0, 3), true)
	assert.True(t, stderrors.Is(err, bterrors.ErrIndexMismatch))

	short := types.NewSeries(dailyIndexFrom(splitStart, 5), make([]float64, 5))
	_, err = SplitAtDate(price, short, splitStart.AddDate(0, 0, 3), true)
	assert.True(t, stderrors.Is(err, bterrors.ErrLengthMismatch))
}

// TestSplitByRatio tests ratio-based splitting
func TestSplitByRatio(t *testing.T) {
	price, signal := pricePair(10)
	splitter := NewDefaultDataSplitter(true)

	split, err := splitter.SplitByRatio(price, signal, 0.7)
	require.NoError(t, err)
	assert.Equal(t, 7, split.Train.Price.Len())
	assert.Equal(t, 3, split.Test.Price.Len())
	assert.True(t, split.Test.Start().After(split.Train.End()))

	_, err = splitter.SplitByRatio(price, signal, 1)
	assert.True(t, stderrors.Is(err, bterrors.ErrInvalidConfig))

	_, err = splitter.SplitByRatio(price, signal, 0.05)
	assert.True(t, stderrors.Is(err, bterrors.ErrTooShort))
}

// TestSplitAtDate_DoesNotAlias tests that partitions are copies
func TestSplitAtDate_DoesNotAlias(t *testing.T) {
	price, signal := pricePair(6)
	split, err := SplitAtDate(price, signal, splitStart.AddDate(0, 0, 3), true)
	require.NoError(t, err)

	split.Train.Price.Values[0] = -1
	assert.Equal(t, 100.0, price.Values[0])
}
