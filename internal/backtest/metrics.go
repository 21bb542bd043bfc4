package backtest

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// CumulativeReturns compounds a return series: cum[t] = prod(1+r[i], i<=t) - 1
func CumulativeReturns(returns []float64) []float64 {
	cum := make([]float64, len(returns))
	growth := 1.0
	for i, r := range returns {
		growth *= 1 + r
		cum[i] = growth - 1
	}
	return cum
}

// EquityCurve returns normalized capital 1 + cum[t]. A -100% return pins the
// curve at zero for the rest of the series.
func EquityCurve(returns []float64) []float64 {
	equity := make([]float64, len(returns))
	growth := 1.0
	for i, r := range returns {
		growth *= 1 + r
		equity[i] = growth
	}
	return equity
}

// SharpeRatio computes mean(excess)/std(excess, ddof=1) * sqrt(annualization)
// with excess = r - riskFree/annualization. It returns 0 when the standard
// deviation is zero or undefined (fewer than two points, identical values).
func SharpeRatio(returns []float64, riskFree, annualization float64) float64 {
	if len(returns) < 2 || !(annualization > 0) {
		return 0
	}

	rfPerPeriod := riskFree / annualization
	excess := make([]float64, len(returns))
	identical := true
	for i, r := range returns {
		excess[i] = r - rfPerPeriod
		if excess[i] != excess[0] {
			identical = false
		}
	}
	if identical {
		return 0
	}

	mean, std := stat.MeanStdDev(excess, nil)
	if std == 0 || math.IsNaN(std) || math.IsInf(std, 0) {
		return 0
	}

	sharpe := mean / std * math.Sqrt(annualization)
	if math.IsNaN(sharpe) || math.IsInf(sharpe, 0) {
		return 0
	}
	return sharpe
}

// MaxDrawdown returns min(E[t]/max(E[0..t]) - 1), bounded to [-1, 0]. An empty
// curve has no drawdown.
func MaxDrawdown(equity []float64) float64 {
	if len(equity) == 0 {
		return 0
	}

	peak := math.Inf(-1)
	worst := 0.0
	for _, e := range equity {
		if e > peak {
			peak = e
		}
		var dd float64
		if peak > 0 {
			dd = e/peak - 1
		} else {
			// never above zero: all capital is gone
			dd = -1
		}
		if dd < worst {
			worst = dd
		}
	}

	if worst < -1 {
		return -1
	}
	return worst
}
