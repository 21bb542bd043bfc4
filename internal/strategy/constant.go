package strategy

import (
	"fmt"

	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/types"
)

// ConstantPositionStrategy holds the same exposure every day. With a
// position of 1 it is the buy-and-hold baseline.
type ConstantPositionStrategy struct {
	position float64
}

// NewBuyAndHoldStrategy creates a fully invested constant strategy
func NewBuyAndHoldStrategy() *ConstantPositionStrategy {
	return &ConstantPositionStrategy{position: 1}
}

// NewConstantPositionStrategy creates a constant strategy at position
func NewConstantPositionStrategy(position float64) *ConstantPositionStrategy {
	return &ConstantPositionStrategy{position: position}
}

// GetName returns the name of the strategy
func (s *ConstantPositionStrategy) GetName() string {
	if s.position == 1 {
		return "Buy & Hold"
	}
	return fmt.Sprintf("Constant(%.2f)", s.position)
}

// Generate returns the constant position on the price index
func (s *ConstantPositionStrategy) Generate(price types.Series) (types.Series, error) {
	return types.ConstantSeries(price.Index, s.position), nil
}
