package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// Series is a timestamp-indexed sequence of real values. Index and Values
// always have the same length. A Series is treated as immutable: every
// helper that narrows or transforms it returns a fresh copy.
type Series struct {
	Index  []time.Time
	Values []float64
}

// NewSeries copies index and values into a new Series.
func NewSeries(index []time.Time, values []float64) Series {
	s := Series{
		Index:  make([]time.Time, len(index)),
		Values: make([]float64, len(values)),
	}
	copy(s.Index, index)
	copy(s.Values, values)
	return s
}

// ConstantSeries returns a series holding value at every timestamp of index.
func ConstantSeries(index []time.Time, value float64) Series {
	values := make([]float64, len(index))
	for i := range values {
		values[i] = value
	}
	return NewSeries(index, values)
}

// Len returns the number of observations
func (s Series) Len() int {
	return len(s.Values)
}

// Last returns the final value, or 0 for an empty series.
func (s Series) Last() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return s.Values[len(s.Values)-1]
}

// Slice returns a copy of the rows in [start, end).
func (s Series) Slice(start, end int) Series {
	return NewSeries(s.Index[start:end], s.Values[start:end])
}

// OptionalSeries is a Series whose values may be missing. Feature primitives
// produce it so that "not yet defined" never gets confused with zero.
type OptionalSeries struct {
	Index  []time.Time
	Values []optional.Option[float64]
}

// Len returns the number of observations
func (s OptionalSeries) Len() int {
	return len(s.Values)
}

// Defined reports whether the value at i is present.
func (s OptionalSeries) Defined(i int) bool {
	return s.Values[i].IsSome()
}

// DefinedValues returns the present values in order, skipping missing ones.
func (s OptionalSeries) DefinedValues() []float64 {
	out := make([]float64, 0, len(s.Values))
	for _, v := range s.Values {
		if v.IsSome() {
			out = append(out, v.Unwrap())
		}
	}
	return out
}

// FillNone materialises the series, replacing missing values with fill.
func (s OptionalSeries) FillNone(fill float64) Series {
	values := make([]float64, len(s.Values))
	for i, v := range s.Values {
		values[i] = v.TakeOr(fill)
	}
	return NewSeries(s.Index, values)
}

// Mask is a timestamp-indexed boolean series with possibly undefined rows.
type Mask struct {
	Index  []time.Time
	Values []optional.Option[bool]
}

// Len returns the number of observations
func (m Mask) Len() int {
	return len(m.Values)
}

// FillNone replaces undefined rows with fill.
func (m Mask) FillNone(fill bool) Mask {
	out := Mask{
		Index:  make([]time.Time, len(m.Index)),
		Values: make([]optional.Option[bool], len(m.Values)),
	}
	copy(out.Index, m.Index)
	for i, v := range m.Values {
		out.Values[i] = optional.Some(v.TakeOr(fill))
	}
	return out
}

// IndexEqual reports whether two indices hold the same timestamps in the same order.
func IndexEqual(a, b []time.Time) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
