package regime

import (
	"testing"
	"time"

	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/types"
	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func priceSeries(values ...float64) types.Series {
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	index := make([]time.Time, len(values))
	for i := range index {
		index[i] = start.AddDate(0, 0, i)
	}
	return types.NewSeries(index, values)
}

// TestMovingAverageDetector_Detect tests bull/bear labels and warm-up rows
func TestMovingAverageDetector_Detect(t *testing.T) {
	d, err := NewMovingAverageDetector(RegimeConfig{MAWindow: 3})
	require.NoError(t, err)

	// SMA(3): -, -, 2, 3, 3.333
	mask, err := d.Detect(priceSeries(1, 2, 3, 4, 3))
	require.NoError(t, err)

	require.Equal(t, 5, mask.Len())
	assert.True(t, mask.Values[0].IsNone())
	assert.True(t, mask.Values[1].IsNone())
	assert.True(t, mask.Values[2].Unwrap())
	assert.True(t, mask.Values[3].Unwrap())
	assert.False(t, mask.Values[4].Unwrap())
	assert.True(t, mask.Values[4].IsSome())
}

// TestMovingAverageDetector_UndefinedAsBear tests the fill option
func TestMovingAverageDetector_UndefinedAsBear(t *testing.T) {
	d, err := NewMovingAverageDetector(RegimeConfig{MAWindow: 3, UndefinedAsBear: true})
	require.NoError(t, err)

	mask, err := d.Detect(priceSeries(1, 2, 3))
	require.NoError(t, err)

	assert.True(t, mask.Values[0].IsSome())
	assert.False(t, mask.Values[0].Unwrap())
	assert.True(t, mask.Values[2].Unwrap())
}

// TestMovingAverageDetector_EqualToAverageIsBear tests the strict comparison
func TestMovingAverageDetector_EqualToAverageIsBear(t *testing.T) {
	d, err := NewMovingAverageDetector(RegimeConfig{MAWindow: 2})
	require.NoError(t, err)

	mask, err := d.Detect(priceSeries(5, 5, 5))
	require.NoError(t, err)
	assert.False(t, mask.Values[1].Unwrap())
	assert.False(t, mask.Values[2].Unwrap())
}

// TestNewMovingAverageDetector_InvalidWindow tests config validation
func TestNewMovingAverageDetector_InvalidWindow(t *testing.T) {
	_, err := NewMovingAverageDetector(RegimeConfig{MAWindow: 0})
	assert.Error(t, err)
	assert.Equal(t, 200, DefaultRegimeConfig().MAWindow)
}

// TestClassify tests mask value conversion
func TestClassify(t *testing.T) {
	r, ok := Classify(optional.Some(true))
	assert.True(t, ok)
	assert.Equal(t, RegimeBull, r)

	r, ok = Classify(optional.Some(false))
	assert.True(t, ok)
	assert.Equal(t, "BEAR", r.String())

	_, ok = Classify(optional.None[bool]())
	assert.False(t, ok)
}
