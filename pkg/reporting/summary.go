package reporting

import (
	"time"

	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/validation"
)

const dateLayout = "2006-01-02"

// RunSummary is the flat scalar view of one run
type RunSummary struct {
	Name             string  `json:"name"`
	Start            string  `json:"start"`
	End              string  `json:"end"`
	Days             int     `json:"days"`
	TotalReturnGross float64 `json:"total_return_gross"`
	TotalReturnNet   float64 `json:"total_return_net"`
	SharpeNet        float64 `json:"sharpe_net"`
	MaxDrawdownNet   float64 `json:"max_drawdown_net"`
	AvgTurnover      float64 `json:"avg_turnover"`
	TradeCount       int     `json:"trade_count"`
	TotalCost        float64 `json:"total_cost"`
	EndEquityNet     float64 `json:"end_equity_net"`
	MeanNetReturn    float64 `json:"mean_daily_net_return"`
}

// ConfigSummary echoes the cost and annualization settings
type ConfigSummary struct {
	FeeBps        float64 `json:"fee_bps"`
	SlipBps       float64 `json:"slip_bps"`
	RiskFreeRate  float64 `json:"risk_free_rate"`
	Annualization float64 `json:"annualization"`
}

// SummaryDocument is what gets printed and serialised for one evaluation
type SummaryDocument struct {
	Strategy       string                     `json:"strategy"`
	Symbol         string                     `json:"symbol,omitempty"`
	Interval       string                     `json:"interval,omitempty"`
	Source         string                     `json:"source,omitempty"`
	Cutoff         string                     `json:"split_date"`
	SplitInclusive bool                       `json:"split_inclusive"`
	Config         ConfigSummary              `json:"config"`
	Runs           []RunSummary               `json:"runs"`
	Regimes        validation.RegimeBreakdown `json:"regimes"`
}

// NewRunSummary flattens run. A run without results yields only its name.
func NewRunSummary(run validation.RunResult) RunSummary {
	s := RunSummary{
		Name:  run.Name,
		Start: formatDate(run.Start),
		End:   formatDate(run.End),
	}
	r := run.Results
	if r == nil {
		return s
	}
	s.Days = r.Days
	s.TotalReturnGross = r.TotalReturnGross
	s.TotalReturnNet = r.TotalReturnNet
	s.SharpeNet = r.SharpeNet
	s.MaxDrawdownNet = r.MaxDrawdownNet
	s.AvgTurnover = r.AvgTurnover
	s.TradeCount = r.TradeCount
	s.TotalCost = r.TotalCost
	s.EndEquityNet = r.EndEquityNet
	s.MeanNetReturn = r.MeanNetReturn
	return s
}

// BuildSummary assembles the summary document of report
func BuildSummary(report *validation.EvaluationReport, meta ReportMeta) SummaryDocument {
	doc := SummaryDocument{
		Strategy:       report.Strategy,
		Symbol:         meta.Symbol,
		Interval:       meta.Interval,
		Source:         meta.Source,
		Cutoff:         formatDate(report.Cutoff),
		SplitInclusive: report.SplitInclusive,
		Config: ConfigSummary{
			FeeBps:        report.Config.FeeBps,
			SlipBps:       report.Config.SlipBps,
			RiskFreeRate:  report.Config.RiskFreeRate,
			Annualization: report.Config.Annualization,
		},
		Regimes: report.Regimes,
	}
	for _, run := range report.Runs() {
		doc.Runs = append(doc.Runs, NewRunSummary(run))
	}
	return doc
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}
