package monitoring

import (
	"net/http"
	"time"

	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "momentum_backtest"

// Recorder exports evaluation results as Prometheus metrics. Each recorder
// owns its registry so several evaluations in one process never collide.
type Recorder struct {
	registry *prometheus.Registry
	symbol   string

	// Run metrics, labelled by strategy and run name
	totalReturnGross *prometheus.GaugeVec
	totalReturnNet   *prometheus.GaugeVec
	sharpeNet        *prometheus.GaugeVec
	maxDrawdownNet   *prometheus.GaugeVec
	avgTurnover      *prometheus.GaugeVec
	tradeCount       *prometheus.GaugeVec
	totalCost        *prometheus.GaugeVec
	endEquityNet     *prometheus.GaugeVec
	runDays          *prometheus.GaugeVec

	// Regime metrics
	regimeDays        *prometheus.GaugeVec
	regimeTotalReturn *prometheus.GaugeVec
	regimeSharpe      *prometheus.GaugeVec
	regimeMaxDrawdown *prometheus.GaugeVec

	// Process metrics
	evaluationsTotal   prometheus.Counter
	errorsTotal        *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
}

// NewRecorder creates a recorder whose metrics carry the given symbol
func NewRecorder(symbol string) *Recorder {
	runLabels := []string{"symbol", "strategy", "run"}
	regimeLabels := []string{"symbol", "strategy", "regime"}

	gauge := func(name, help string, labels []string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	}

	r := &Recorder{
		registry: prometheus.NewRegistry(),
		symbol:   symbol,

		totalReturnGross: gauge("total_return_gross", "Compounded gross return of a run", runLabels),
		totalReturnNet:   gauge("total_return_net", "Compounded net return of a run", runLabels),
		sharpeNet:        gauge("sharpe_net", "Annualized Sharpe ratio of net returns", runLabels),
		maxDrawdownNet:   gauge("max_drawdown_net", "Maximum drawdown of the net equity curve", runLabels),
		avgTurnover:      gauge("avg_turnover", "Mean daily turnover", runLabels),
		tradeCount:       gauge("trade_count", "Number of days with non-zero turnover", runLabels),
		totalCost:        gauge("total_cost", "Sum of daily transaction costs", runLabels),
		endEquityNet:     gauge("end_equity_net", "Final value of the net equity curve", runLabels),
		runDays:          gauge("run_days", "Number of observations in a run", runLabels),

		regimeDays:        gauge("regime_days", "Days classified into a regime", regimeLabels),
		regimeTotalReturn: gauge("regime_total_return", "Compounded net return within a regime", regimeLabels),
		regimeSharpe:      gauge("regime_sharpe", "Sharpe ratio of net returns within a regime", regimeLabels),
		regimeMaxDrawdown: gauge("regime_max_drawdown", "Maximum drawdown of the regime-restricted equity curve", regimeLabels),

		evaluationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Total number of completed evaluations",
		}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total number of errors by category",
		}, []string{"category"}),
		evaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evaluation_duration_seconds",
			Help:      "Wall time of one evaluation",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	r.registry.MustRegister(
		r.totalReturnGross, r.totalReturnNet, r.sharpeNet, r.maxDrawdownNet,
		r.avgTurnover, r.tradeCount, r.totalCost, r.endEquityNet, r.runDays,
		r.regimeDays, r.regimeTotalReturn, r.regimeSharpe, r.regimeMaxDrawdown,
		r.evaluationsTotal, r.errorsTotal, r.evaluationDuration,
	)
	return r
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordReport sets every run and regime gauge from report
func (r *Recorder) RecordReport(report *validation.EvaluationReport) {
	for _, run := range report.Runs() {
		res := run.Results
		if res == nil {
			continue
		}
		labels := prometheus.Labels{"symbol": r.symbol, "strategy": report.Strategy, "run": run.Name}
		r.totalReturnGross.With(labels).Set(res.TotalReturnGross)
		r.totalReturnNet.With(labels).Set(res.TotalReturnNet)
		r.sharpeNet.With(labels).Set(res.SharpeNet)
		r.maxDrawdownNet.With(labels).Set(res.MaxDrawdownNet)
		r.avgTurnover.With(labels).Set(res.AvgTurnover)
		r.tradeCount.With(labels).Set(float64(res.TradeCount))
		r.totalCost.With(labels).Set(res.TotalCost)
		r.endEquityNet.With(labels).Set(res.EndEquityNet)
		r.runDays.With(labels).Set(float64(res.Days))
	}

	for _, m := range []validation.RegimeMetrics{report.Regimes.Bull, report.Regimes.Bear} {
		labels := prometheus.Labels{"symbol": r.symbol, "strategy": report.Strategy, "regime": m.Regime}
		r.regimeDays.With(labels).Set(float64(m.Days))
		r.regimeTotalReturn.With(labels).Set(m.TotalReturn)
		r.regimeSharpe.With(labels).Set(m.Sharpe)
		r.regimeMaxDrawdown.With(labels).Set(m.MaxDrawdown)
	}

	r.evaluationsTotal.Inc()
}

// ObserveDuration records the wall time of one evaluation
func (r *Recorder) ObserveDuration(d time.Duration) {
	r.evaluationDuration.Observe(d.Seconds())
}

// RecordError counts an error under its category
func (r *Recorder) RecordError(category string) {
	r.errorsTotal.WithLabelValues(category).Inc()
}

// WriteTextfile writes the registry in the node-exporter textfile format
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// Handler serves the registry on a /metrics endpoint
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
