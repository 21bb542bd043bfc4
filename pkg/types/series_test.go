package types

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/assert"
)

func testIndex(n int) []time.Time {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	index := make([]time.Time, n)
	for i := range index {
		index[i] = start.AddDate(0, 0, i)
	}
	return index
}

// TestNewSeries_CopiesInput tests that the series does not alias caller slices
func TestNewSeries_CopiesInput(t *testing.T) {
	values := []float64{1, 2, 3}
	s := NewSeries(testIndex(3), values)
	values[0] = 99

	assert.Equal(t, 1.0, s.Values[0])
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 3.0, s.Last())
}

// TestConstantSeries tests constant series construction
func TestConstantSeries(t *testing.T) {
	s := ConstantSeries(testIndex(4), 1.0)
	assert.Equal(t, []float64{1, 1, 1, 1}, s.Values)
}

// TestSeries_Slice tests half-open slicing
func TestSeries_Slice(t *testing.T) {
	s := NewSeries(testIndex(5), []float64{1, 2, 3, 4, 5})
	sub := s.Slice(1, 3)

	assert.Equal(t, []float64{2, 3}, sub.Values)
	assert.True(t, sub.Index[0].Equal(s.Index[1]))
}

// TestOptionalSeries_FillNone tests that missing values stay distinct until filled
func TestOptionalSeries_FillNone(t *testing.T) {
	s := OptionalSeries{
		Index:  testIndex(3),
		Values: []optional.Option[float64]{optional.None[float64](), optional.Some(0.5), optional.Some(0.0)},
	}

	assert.False(t, s.Defined(0))
	assert.True(t, s.Defined(2))
	assert.Equal(t, []float64{0.5, 0.0}, s.DefinedValues())
	assert.Equal(t, []float64{-1, 0.5, 0}, s.FillNone(-1).Values)
}

// TestMask_FillNone tests that undefined mask rows get the fill value
func TestMask_FillNone(t *testing.T) {
	m := Mask{
		Index:  testIndex(2),
		Values: []optional.Option[bool]{optional.None[bool](), optional.Some(true)},
	}
	filled := m.FillNone(false)

	assert.True(t, m.Values[0].IsNone())
	assert.False(t, filled.Values[0].Unwrap())
	assert.True(t, filled.Values[1].Unwrap())
}

// TestIndexEqual tests index comparison
func TestIndexEqual(t *testing.T) {
	a := testIndex(3)
	b := testIndex(3)
	assert.True(t, IndexEqual(a, b))

	b[2] = b[2].Add(time.Hour)
	assert.False(t, IndexEqual(a, b))
	assert.False(t, IndexEqual(a, a[:2]))
}
