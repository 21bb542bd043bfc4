package strategy

import (
	"fmt"
	"sort"

	"github.com/ducminhle1904/crypto-momentum-backtest/internal/indicators"
	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/types"
)

// MomentumVolatilityStrategy goes long (1) when momentum is positive and
// rolling volatility is below its median over the series, flat (0) otherwise.
// A missing feature value always means flat.
type MomentumVolatilityStrategy struct {
	momentumWindow   int
	volatilityWindow int
}

// NewMomentumVolatilityStrategy creates the reference momentum/volatility policy
func NewMomentumVolatilityStrategy(momentumWindow, volatilityWindow int) (*MomentumVolatilityStrategy, error) {
	if momentumWindow < 1 {
		return nil, fmt.Errorf("momentum window must be >= 1, got %d", momentumWindow)
	}
	if volatilityWindow < 2 {
		return nil, fmt.Errorf("volatility window must be >= 2, got %d", volatilityWindow)
	}
	return &MomentumVolatilityStrategy{
		momentumWindow:   momentumWindow,
		volatilityWindow: volatilityWindow,
	}, nil
}

// GetName returns the name of the strategy
func (s *MomentumVolatilityStrategy) GetName() string {
	return fmt.Sprintf("Momentum(%d)+Volatility(%d)", s.momentumWindow, s.volatilityWindow)
}

// Generate derives the 0/1 position series
func (s *MomentumVolatilityStrategy) Generate(price types.Series) (types.Series, error) {
	mom, err := indicators.Momentum(price, s.momentumWindow)
	if err != nil {
		return types.Series{}, err
	}
	vol, err := indicators.Volatility(indicators.Returns(price), s.volatilityWindow)
	if err != nil {
		return types.Series{}, err
	}

	positions := make([]float64, price.Len())

	defined := vol.DefinedValues()
	if len(defined) == 0 {
		return types.NewSeries(price.Index, positions), nil
	}
	threshold := median(defined)

	for t := range positions {
		if mom.Values[t].IsNone() || vol.Values[t].IsNone() {
			continue
		}
		if mom.Values[t].Unwrap() > 0 && vol.Values[t].Unwrap() < threshold {
			positions[t] = 1
		}
	}

	return types.NewSeries(price.Index, positions), nil
}

// median of a non-empty slice; the two middle values are averaged for even lengths
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
