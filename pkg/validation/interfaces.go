package validation

import (
	"time"

	"github.com/ducminhle1904/crypto-momentum-backtest/internal/backtest"
	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/types"
)

// Package validation evaluates a signal out of sample and across market regimes

// DataSplitter defines the interface for splitting aligned price/signal pairs into train/test sets
type DataSplitter interface {
	SplitAtDate(price, signal types.Series, cutoff time.Time) (*TrainTestSplit, error)
	SplitByRatio(price, signal types.Series, ratio float64) (*TrainTestSplit, error)
}

// Partition is one contiguous, index-aligned slice of price and signal
type Partition struct {
	Price  types.Series
	Signal types.Series
}

// Start returns the first timestamp of the partition
func (p Partition) Start() time.Time {
	if len(p.Price.Index) == 0 {
		return time.Time{}
	}
	return p.Price.Index[0]
}

// End returns the last timestamp of the partition
func (p Partition) End() time.Time {
	if len(p.Price.Index) == 0 {
		return time.Time{}
	}
	return p.Price.Index[len(p.Price.Index)-1]
}

// TrainTestSplit holds both sides of a split
type TrainTestSplit struct {
	Train Partition
	Test  Partition
}

// RegimeMetrics summarises net returns restricted to one regime
type RegimeMetrics struct {
	Regime      string  `json:"regime"`
	Days        int     `json:"days"`
	TotalReturn float64 `json:"total_return"`
	Sharpe      float64 `json:"sharpe"`
	MaxDrawdown float64 `json:"max_drawdown"`
}

// RegimeBreakdown is the bull/bear decomposition of a net return series
type RegimeBreakdown struct {
	Bull          RegimeMetrics `json:"bull"`
	Bear          RegimeMetrics `json:"bear"`
	UndefinedDays int           `json:"undefined_days"`
}

// RunResult names one engine run of the evaluation
type RunResult struct {
	Name    string
	Start   time.Time
	End     time.Time
	Results *backtest.BacktestResults
}

// EvaluationReport is everything one evaluation produces
type EvaluationReport struct {
	Strategy       string
	Config         backtest.Config
	Cutoff         time.Time
	SplitInclusive bool

	// Full-history inputs the runs were computed from
	Price    types.Series
	Signal   types.Series
	BullMask types.Mask

	StrategyTrain RunResult
	StrategyTest  RunResult
	BaselineTrain RunResult
	BaselineTest  RunResult
	StrategyFull  RunResult
	BaselineFull  RunResult

	Regimes RegimeBreakdown
}

// Runs returns the runs in presentation order
func (r *EvaluationReport) Runs() []RunResult {
	return []RunResult{
		r.StrategyTrain,
		r.StrategyTest,
		r.BaselineTrain,
		r.BaselineTest,
		r.StrategyFull,
		r.BaselineFull,
	}
}
