package indicators

import (
	"fmt"

	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/types"
	"github.com/moznion/go-optional"
)

// SMA represents the Simple Moving Average over a price series
type SMA struct {
	period int
}

// NewSMA creates a new SMA indicator
func NewSMA(period int) *SMA {
	return &SMA{
		period: period,
	}
}

// Calculate returns the rolling mean of price, missing for the first period-1 rows
func (s *SMA) Calculate(price types.Series) (types.OptionalSeries, error) {
	if s.period < 1 {
		return types.OptionalSeries{}, fmt.Errorf("SMA period must be >= 1, got %d", s.period)
	}

	out := newOptionalSeries(price.Index)
	sum := 0.0
	for t, p := range price.Values {
		sum += p
		if t >= s.period {
			sum -= price.Values[t-s.period]
		}
		if t >= s.period-1 {
			out.Values[t] = optional.Some(sum / float64(s.period))
		}
	}

	return out, nil
}

// GetName returns the indicator name
func (s *SMA) GetName() string {
	return fmt.Sprintf("SMA(%d)", s.period)
}

// GetRequiredPeriods returns the minimum number of periods needed
func (s *SMA) GetRequiredPeriods() int {
	return s.period
}
