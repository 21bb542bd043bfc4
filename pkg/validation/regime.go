package validation

import (
	"math"

	"github.com/ducminhle1904/crypto-momentum-backtest/internal/backtest"
	bterrors "github.com/ducminhle1904/crypto-momentum-backtest/internal/errors"
	"github.com/ducminhle1904/crypto-momentum-backtest/internal/regime"
	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/types"
)

// ComputeRegimeBreakdown splits netReturns by the bull mask and measures each
// side on its own. Rows with an undefined mask are dropped from both sides.
// An empty side reports zero for every metric.
func ComputeRegimeBreakdown(netReturns types.Series, bull types.Mask, riskFree, annualization float64) (*RegimeBreakdown, error) {
	const op = "ComputeRegimeBreakdown"

	if bull.Len() != netReturns.Len() || len(bull.Index) != bull.Len() {
		return nil, bterrors.NewValidationError("validation", op, bterrors.ErrLengthMismatch,
			"returns have %d rows, mask has %d", netReturns.Len(), bull.Len())
	}
	if !types.IndexEqual(netReturns.Index, bull.Index) {
		return nil, bterrors.NewValidationError("validation", op, bterrors.ErrIndexMismatch,
			"returns and mask timestamps are not aligned")
	}

	var bullReturns, bearReturns []float64
	undefined := 0
	for t, m := range bull.Values {
		side, ok := regime.Classify(m)
		if !ok {
			undefined++
			continue
		}
		if side == regime.RegimeBull {
			bullReturns = append(bullReturns, netReturns.Values[t])
		} else {
			bearReturns = append(bearReturns, netReturns.Values[t])
		}
	}

	return &RegimeBreakdown{
		Bull:          subsetMetrics(regime.RegimeBull, bullReturns, riskFree, annualization),
		Bear:          subsetMetrics(regime.RegimeBear, bearReturns, riskFree, annualization),
		UndefinedDays: undefined,
	}, nil
}

func subsetMetrics(r regime.RegimeType, returns []float64, riskFree, annualization float64) RegimeMetrics {
	metrics := RegimeMetrics{Regime: r.String(), Days: len(returns)}
	if len(returns) == 0 {
		return metrics
	}

	// missing returns compound as flat days
	filled := make([]float64, len(returns))
	for i, v := range returns {
		if !math.IsNaN(v) {
			filled[i] = v
		}
	}

	equity := backtest.EquityCurve(filled)
	metrics.TotalReturn = equity[len(equity)-1] - 1
	metrics.Sharpe = backtest.SharpeRatio(filled, riskFree, annualization)
	metrics.MaxDrawdown = backtest.MaxDrawdown(equity)
	return metrics
}
