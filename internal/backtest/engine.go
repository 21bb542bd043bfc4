package backtest

import (
	"math"

	bterrors "github.com/ducminhle1904/crypto-momentum-backtest/internal/errors"
	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/types"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// BacktestEngine turns a price series and a position series into return,
// cost and equity series. It holds only its configuration, so one engine can
// serve concurrent runs over different slices.
type BacktestEngine struct {
	config Config
}

// BacktestResults is the complete outcome of one engine run
type BacktestResults struct {
	GrossReturns    types.Series
	NetReturns      types.Series
	Turnover        types.Series
	Costs           types.Series
	GrossCumulative types.Series
	NetCumulative   types.Series
	GrossEquity     types.Series
	NetEquity       types.Series

	TotalReturnGross float64
	TotalReturnNet   float64
	SharpeNet        float64
	MaxDrawdownNet   float64
	AvgTurnover      float64
	TradeCount       int
	TotalCost        float64
	EndEquityNet     float64
	MeanNetReturn    float64
	Days             int
}

// NewBacktestEngine creates an engine after validating cfg
func NewBacktestEngine(cfg Config) (*BacktestEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &BacktestEngine{config: cfg}, nil
}

// Config returns the engine configuration
func (b *BacktestEngine) Config() Config {
	return b.config
}

// Run simulates holding yesterday's position through today's return:
//
//	asset_ret[t] = price[t]/price[t-1] - 1          (asset_ret[0] = 0)
//	gross[t]     = signal[t-1] * asset_ret[t]       (signal[-1] = 0)
//	turnover[t]  = |signal[t] - signal[t-1]|
//	net[t]       = gross[t] - turnover[t] * cost_rate
//
// Input-contract violations return a VALIDATION error and no results.
func (b *BacktestEngine) Run(price, signal types.Series) (*BacktestResults, error) {
	if err := validateInputs(price, signal); err != nil {
		return nil, err
	}

	n := price.Len()
	costRate := b.config.CostRate()

	gross := make([]float64, n)
	net := make([]float64, n)
	turnover := make([]float64, n)
	costs := make([]float64, n)

	prevSignal := 0.0
	for t := 0; t < n; t++ {
		if t > 0 {
			assetRet := price.Values[t]/price.Values[t-1] - 1
			gross[t] = prevSignal * assetRet
		}
		turnover[t] = math.Abs(signal.Values[t] - prevSignal)
		costs[t] = turnover[t] * costRate
		net[t] = gross[t] - costs[t]
		prevSignal = signal.Values[t]
	}

	grossCum := CumulativeReturns(gross)
	netCum := CumulativeReturns(net)
	netEquity := EquityCurve(net)

	trades := 0
	for _, v := range turnover {
		if v > 0 {
			trades++
		}
	}

	idx := price.Index
	return &BacktestResults{
		GrossReturns:    types.NewSeries(idx, gross),
		NetReturns:      types.NewSeries(idx, net),
		Turnover:        types.NewSeries(idx, turnover),
		Costs:           types.NewSeries(idx, costs),
		GrossCumulative: types.NewSeries(idx, grossCum),
		NetCumulative:   types.NewSeries(idx, netCum),
		GrossEquity:     types.NewSeries(idx, EquityCurve(gross)),
		NetEquity:       types.NewSeries(idx, netEquity),

		TotalReturnGross: grossCum[n-1],
		TotalReturnNet:   netCum[n-1],
		SharpeNet:        SharpeRatio(net, b.config.RiskFreeRate, b.config.Annualization),
		MaxDrawdownNet:   MaxDrawdown(netEquity),
		AvgTurnover:      stat.Mean(turnover, nil),
		TradeCount:       trades,
		TotalCost:        floats.Sum(costs),
		EndEquityNet:     netEquity[n-1],
		MeanNetReturn:    stat.Mean(net, nil),
		Days:             n,
	}, nil
}

// Run executes a single backtest with cfg
func Run(price, signal types.Series, cfg Config) (*BacktestResults, error) {
	engine, err := NewBacktestEngine(cfg)
	if err != nil {
		return nil, err
	}
	return engine.Run(price, signal)
}

func validateInputs(price, signal types.Series) error {
	const component, op = "backtest", "Run"

	if len(price.Values) != len(price.Index) || len(signal.Values) != len(signal.Index) {
		return bterrors.NewValidationError(component, op, bterrors.ErrLengthMismatch, "series index and values lengths differ")
	}
	if price.Len() != signal.Len() {
		return bterrors.NewValidationError(component, op, bterrors.ErrLengthMismatch,
			"price has %d rows, signal has %d", price.Len(), signal.Len())
	}
	if price.Len() < 2 {
		return bterrors.NewValidationError(component, op, bterrors.ErrTooShort, "got %d rows", price.Len())
	}
	if !types.IndexEqual(price.Index, signal.Index) {
		return bterrors.NewValidationError(component, op, bterrors.ErrIndexMismatch, "price and signal timestamps are not aligned")
	}
	for i := 1; i < len(price.Index); i++ {
		if !price.Index[i].After(price.Index[i-1]) {
			return bterrors.NewValidationError(component, op, bterrors.ErrUnorderedIndex, "row %d at %s", i, price.Index[i].Format("2006-01-02"))
		}
	}

	for i, p := range price.Values {
		if math.IsNaN(p) {
			return bterrors.NewValidationError(component, op, bterrors.ErrMissingValue, "price is missing at %s", price.Index[i].Format("2006-01-02"))
		}
		if math.IsInf(p, 0) {
			return bterrors.NewValidationError(component, op, bterrors.ErrNonFinite, "price is infinite at %s", price.Index[i].Format("2006-01-02"))
		}
		if p <= 0 {
			return bterrors.NewValidationError(component, op, bterrors.ErrNonPositivePrice, "price %v at %s", p, price.Index[i].Format("2006-01-02"))
		}
	}
	for i, s := range signal.Values {
		if math.IsNaN(s) {
			return bterrors.NewValidationError(component, op, bterrors.ErrMissingValue, "signal is missing at %s", signal.Index[i].Format("2006-01-02"))
		}
		if math.IsInf(s, 0) {
			return bterrors.NewValidationError(component, op, bterrors.ErrNonFinite, "signal is infinite at %s", signal.Index[i].Format("2006-01-02"))
		}
	}

	return nil
}
