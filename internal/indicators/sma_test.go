package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMA(t *testing.T) {
	sma := NewSMA(20)

	assert.NotNil(t, sma)
	assert.Equal(t, 20, sma.GetRequiredPeriods())
	assert.Equal(t, "SMA(20)", sma.GetName())
}

func TestSMA_Calculate_WarmUp(t *testing.T) {
	out, err := NewSMA(3).Calculate(priceSeries(1, 2, 3, 4, 5))
	require.NoError(t, err)

	assert.True(t, out.Values[0].IsNone())
	assert.True(t, out.Values[1].IsNone())
	assert.InDelta(t, 2.0, out.Values[2].Unwrap(), 1e-12)
	assert.InDelta(t, 3.0, out.Values[3].Unwrap(), 1e-12)
	assert.InDelta(t, 4.0, out.Values[4].Unwrap(), 1e-12)
}

func TestSMA_Calculate_InsufficientData(t *testing.T) {
	out, err := NewSMA(10).Calculate(priceSeries(1, 2, 3))
	require.NoError(t, err)
	assert.Empty(t, out.DefinedValues())
}

func TestSMA_Calculate_InvalidPeriod(t *testing.T) {
	_, err := NewSMA(0).Calculate(priceSeries(1, 2, 3))
	assert.Error(t, err)
}
