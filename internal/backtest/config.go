package backtest

import (
	"fmt"
	"math"

	bterrors "github.com/ducminhle1904/crypto-momentum-backtest/internal/errors"
)

// DefaultAnnualization is the number of trading days per year for an asset
// that trades every calendar day.
const DefaultAnnualization = 365.0

// Config holds the cost and annualization parameters of a backtest run
type Config struct {
	FeeBps        float64 `json:"fee_bps" yaml:"fee_bps"`
	SlipBps       float64 `json:"slip_bps" yaml:"slip_bps"`
	RiskFreeRate  float64 `json:"risk_free_rate" yaml:"risk_free_rate"`
	Annualization float64 `json:"annualization" yaml:"annualization"`
}

// Option mutates a Config
type Option func(*Config)

// DefaultConfig returns a no-cost configuration on a 365-day basis
func DefaultConfig() Config {
	return Config{
		Annualization: DefaultAnnualization,
	}
}

// NewConfig builds a Config from the defaults and the given options
func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithFees sets the fee and slippage rates in basis points
func WithFees(feeBps, slipBps float64) Option {
	return func(c *Config) {
		c.FeeBps = feeBps
		c.SlipBps = slipBps
	}
}

// WithRiskFreeRate sets the annual risk-free rate used by the Sharpe ratio
func WithRiskFreeRate(rate float64) Option {
	return func(c *Config) {
		c.RiskFreeRate = rate
	}
}

// WithAnnualization sets the periods-per-year basis
func WithAnnualization(periods float64) Option {
	return func(c *Config) {
		c.Annualization = periods
	}
}

// CostRate is the combined per-unit-turnover cost: (fee + slippage) / 10000
func (c Config) CostRate() float64 {
	return (c.FeeBps + c.SlipBps) / 10000.0
}

// Validate checks the configuration parameters
func (c Config) Validate() error {
	if c.FeeBps < 0 || math.IsNaN(c.FeeBps) || math.IsInf(c.FeeBps, 0) {
		return bterrors.NewConfigurationError("backtest", "Validate", fmt.Sprintf("fee_bps must be a non-negative number, got %v", c.FeeBps))
	}
	if c.SlipBps < 0 || math.IsNaN(c.SlipBps) || math.IsInf(c.SlipBps, 0) {
		return bterrors.NewConfigurationError("backtest", "Validate", fmt.Sprintf("slip_bps must be a non-negative number, got %v", c.SlipBps))
	}
	if math.IsNaN(c.RiskFreeRate) || math.IsInf(c.RiskFreeRate, 0) {
		return bterrors.NewConfigurationError("backtest", "Validate", fmt.Sprintf("risk_free_rate must be finite, got %v", c.RiskFreeRate))
	}
	if !(c.Annualization > 0) || math.IsInf(c.Annualization, 0) {
		return bterrors.NewConfigurationError("backtest", "Validate", fmt.Sprintf("annualization must be positive, got %v", c.Annualization))
	}
	return nil
}
