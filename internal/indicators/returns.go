package indicators

import (
	"fmt"
	"time"

	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/types"
	"github.com/moznion/go-optional"
)

// Returns computes simple returns: ret[t] = price[t]/price[t-1] - 1.
// The first element is missing, never zero.
func Returns(price types.Series) types.OptionalSeries {
	return pctChange(price, 1)
}

// Momentum computes the percentage change over window periods:
// mom[t] = price[t]/price[t-window] - 1, missing for t < window.
func Momentum(price types.Series, window int) (types.OptionalSeries, error) {
	if window < 1 {
		return types.OptionalSeries{}, fmt.Errorf("momentum window must be >= 1, got %d", window)
	}
	return pctChange(price, window), nil
}

func pctChange(price types.Series, lag int) types.OptionalSeries {
	out := newOptionalSeries(price.Index)
	for t := lag; t < price.Len(); t++ {
		out.Values[t] = optional.Some(price.Values[t]/price.Values[t-lag] - 1)
	}
	return out
}

// newOptionalSeries allocates an all-missing series on index.
func newOptionalSeries(index []time.Time) types.OptionalSeries {
	out := types.OptionalSeries{
		Index:  make([]time.Time, len(index)),
		Values: make([]optional.Option[float64], len(index)),
	}
	copy(out.Index, index)
	for i := range out.Values {
		out.Values[i] = optional.None[float64]()
	}
	return out
}
