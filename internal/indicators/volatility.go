package indicators

import (
	"fmt"

	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/types"
	"github.com/moznion/go-optional"
	"gonum.org/v1/gonum/stat"
)

// Volatility computes the rolling sample standard deviation (ddof=1) of the
// trailing window returns ending at t. A row is missing until window defined
// observations are available; any missing value inside the window makes the
// row missing too.
func Volatility(returns types.OptionalSeries, window int) (types.OptionalSeries, error) {
	if window < 2 {
		return types.OptionalSeries{}, fmt.Errorf("volatility window must be >= 2, got %d", window)
	}

	out := newOptionalSeries(returns.Index)
	buf := make([]float64, window)

	for t := window - 1; t < returns.Len(); t++ {
		complete := true
		for k := 0; k < window; k++ {
			v := returns.Values[t-window+1+k]
			if v.IsNone() {
				complete = false
				break
			}
			buf[k] = v.Unwrap()
		}
		if complete {
			out.Values[t] = optional.Some(stat.StdDev(buf, nil))
		}
	}

	return out, nil
}
