package strategy

import (
	"math"
	"testing"
	"time"

	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func priceSeries(values ...float64) types.Series {
	start := time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)
	index := make([]time.Time, len(values))
	for i := range index {
		index[i] = start.AddDate(0, 0, i)
	}
	return types.NewSeries(index, values)
}

// TestMomentumVolatility_Generate tests the reference policy on a hand checked path
func TestMomentumVolatility_Generate(t *testing.T) {
	s, err := NewMomentumVolatilityStrategy(1, 2)
	require.NoError(t, err)

	signal, err := s.Generate(priceSeries(100, 101, 103, 102, 106, 107))
	require.NoError(t, err)

	// vol median is ~0.02096; only t=2 has positive momentum and below-median vol
	assert.Equal(t, []float64{0, 0, 1, 0, 0, 0}, signal.Values)
}

// TestMomentumVolatility_MissingFeaturesAreFlat tests that warm-up rows are 0, never missing
func TestMomentumVolatility_MissingFeaturesAreFlat(t *testing.T) {
	s, err := NewMomentumVolatilityStrategy(10, 10)
	require.NoError(t, err)

	price := priceSeries(1, 2, 3, 4, 5)
	signal, err := s.Generate(price)
	require.NoError(t, err)

	require.Equal(t, price.Len(), signal.Len())
	assert.True(t, types.IndexEqual(price.Index, signal.Index))
	for _, v := range signal.Values {
		assert.False(t, math.IsNaN(v))
		assert.Equal(t, 0.0, v)
	}
}

// TestMomentumVolatility_BinaryOutput tests that positions stay in {0, 1}
func TestMomentumVolatility_BinaryOutput(t *testing.T) {
	s, err := NewMomentumVolatilityStrategy(3, 4)
	require.NoError(t, err)

	values := make([]float64, 120)
	for i := range values {
		values[i] = 100 + 10*math.Sin(float64(i)/5) + float64(i)*0.1
	}
	signal, err := s.Generate(priceSeries(values...))
	require.NoError(t, err)

	longs := 0
	for _, v := range signal.Values {
		assert.Contains(t, []float64{0, 1}, v)
		if v == 1 {
			longs++
		}
	}
	assert.Greater(t, longs, 0)
	assert.Less(t, longs, len(values))
}

// TestNewMomentumVolatilityStrategy_InvalidWindows tests window validation
func TestNewMomentumVolatilityStrategy_InvalidWindows(t *testing.T) {
	_, err := NewMomentumVolatilityStrategy(0, 10)
	assert.Error(t, err)
	_, err = NewMomentumVolatilityStrategy(10, 1)
	assert.Error(t, err)
}

// TestBuyAndHold_Generate tests the constant baseline
func TestBuyAndHold_Generate(t *testing.T) {
	s := NewBuyAndHoldStrategy()
	signal, err := s.Generate(priceSeries(5, 6, 7))
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 1, 1}, signal.Values)
	assert.Equal(t, "Buy & Hold", s.GetName())
	assert.Equal(t, "Constant(0.50)", NewConstantPositionStrategy(0.5).GetName())
}

// TestSignalFunc tests the function adapter
func TestSignalFunc(t *testing.T) {
	var g SignalGenerator = SignalFunc(func(price types.Series) (types.Series, error) {
		return types.ConstantSeries(price.Index, 0), nil
	})
	signal, err := g.Generate(priceSeries(1, 2))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, signal.Values)
	assert.Equal(t, "custom", g.GetName())
}

// TestMedian tests odd and even lengths
func TestMedian(t *testing.T) {
	assert.Equal(t, 2.0, median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, median([]float64{4, 1, 3, 2}))
}
