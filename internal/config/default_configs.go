package config

import (
	"github.com/ducminhle1904/crypto-momentum-backtest/internal/backtest"
	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/data"
)

// DefaultEvaluationConfig returns the reference evaluation: BTCUSDT daily,
// 10 bps fee + 5 bps slippage, momentum/volatility windows of 10, split at
// 2024-01-01 with the cutoff row in both partitions and a 200-day MA regime.
func DefaultEvaluationConfig() *EvaluationConfig {
	return &EvaluationConfig{
		Symbol:           "BTCUSDT",
		Interval:         "D",
		DataRoot:         "data",
		OutlierThreshold: data.DefaultOutlierThreshold,

		SplitDate:      "2024-01-01",
		SplitInclusive: true,

		Backtest: BacktestSection{
			FeeBps:        10,
			SlipBps:       5,
			RiskFreeRate:  0,
			Annualization: backtest.DefaultAnnualization,
		},
		Signal: SignalSection{
			MomentumWindow:   10,
			VolatilityWindow: 10,
		},
		Regime: RegimeSection{
			MAWindow: 200,
		},
		Exchange: ExchangeSection{
			Name:              "bybit",
			Category:          "spot",
			RequestsPerSecond: 2,
		},
		Report: ReportSection{
			Console: true,
			JSON:    true,
		},
		Log: LogSection{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// NoCostEvaluationConfig is the default evaluation without fees or slippage
func NoCostEvaluationConfig() *EvaluationConfig {
	c := DefaultEvaluationConfig()
	c.Backtest.FeeBps = 0
	c.Backtest.SlipBps = 0
	return c
}
