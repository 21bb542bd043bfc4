package strategy

import (
	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/types"
)

// SignalGenerator turns a price series into a position series on the same
// index. Positions are the desired exposure at each timestamp, decided with
// information available at or before it. Implementations must not return
// missing values.
type SignalGenerator interface {
	// Generate derives the position series from price
	Generate(price types.Series) (types.Series, error)

	// GetName returns the name of the signal policy
	GetName() string
}

// SignalFunc adapts a plain function to SignalGenerator
type SignalFunc func(price types.Series) (types.Series, error)

// Generate calls f
func (f SignalFunc) Generate(price types.Series) (types.Series, error) {
	return f(price)
}

// GetName returns a generic name
func (f SignalFunc) GetName() string {
	return "custom"
}
