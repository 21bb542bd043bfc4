package reporting

import (
	"fmt"
	"io"
	"os"

	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/validation"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// DefaultConsoleReporter implements console output functionality
type DefaultConsoleReporter struct {
	out io.Writer
}

// NewDefaultConsoleReporter creates a console reporter writing to stdout
func NewDefaultConsoleReporter() *DefaultConsoleReporter {
	return NewConsoleReporterTo(os.Stdout)
}

// NewConsoleReporterTo creates a console reporter writing to w
func NewConsoleReporterTo(w io.Writer) *DefaultConsoleReporter {
	return &DefaultConsoleReporter{out: w}
}

// OutputReport prints the header, the run table and the regime table
func (r *DefaultConsoleReporter) OutputReport(report *validation.EvaluationReport, meta ReportMeta) {
	doc := BuildSummary(report, meta)
	r.PrintHeader(doc)
	r.PrintRuns(doc.Runs)
	r.PrintRegimes(doc.Regimes)
}

// PrintHeader prints what was evaluated and under which costs
func (r *DefaultConsoleReporter) PrintHeader(doc SummaryDocument) {
	t := r.newTable("EVALUATION")
	if doc.Symbol != "" {
		t.AppendRow(table.Row{"Symbol", fmt.Sprintf("%s (%s)", doc.Symbol, doc.Interval)})
	}
	if doc.Source != "" {
		t.AppendRow(table.Row{"Data", doc.Source})
	}
	split := "cutoff in both partitions"
	if !doc.SplitInclusive {
		split = "cutoff in test only"
	}
	t.AppendRows([]table.Row{
		{"Strategy", doc.Strategy},
		{"Split Date", fmt.Sprintf("%s (%s)", doc.Cutoff, split)},
		{"Fee / Slippage", fmt.Sprintf("%.1f / %.1f bps", doc.Config.FeeBps, doc.Config.SlipBps)},
		{"Risk-free Rate", formatPercent(doc.Config.RiskFreeRate)},
		{"Annualization", fmt.Sprintf("%.0f", doc.Config.Annualization)},
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 15, WidthMax: 15, Align: text.AlignLeft},
	})
	t.Render()
}

// PrintRuns prints one row per run
func (r *DefaultConsoleReporter) PrintRuns(runs []RunSummary) {
	t := r.newTable("RESULTS")
	t.AppendHeader(table.Row{"Run", "Period", "Days", "Return Gross", "Return Net", "Sharpe", "Max DD", "Avg Turnover", "Trades", "Total Cost"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			run.Name,
			fmt.Sprintf("%s → %s", run.Start, run.End),
			run.Days,
			formatPercent(run.TotalReturnGross),
			formatPercent(run.TotalReturnNet),
			fmt.Sprintf("%.2f", run.SharpeNet),
			formatPercent(run.MaxDrawdownNet),
			fmt.Sprintf("%.4f", run.AvgTurnover),
			run.TradeCount,
			fmt.Sprintf("%.4f", run.TotalCost),
		})
	}
	t.SetColumnConfigs(numericColumns(3, 10))
	t.Render()
}

// PrintRegimes prints the bull/bear decomposition of the strategy's full-history net returns
func (r *DefaultConsoleReporter) PrintRegimes(breakdown validation.RegimeBreakdown) {
	t := r.newTable("REGIMES")
	t.AppendHeader(table.Row{"Regime", "Days", "Total Return", "Sharpe", "Max DD"})
	for _, m := range []validation.RegimeMetrics{breakdown.Bull, breakdown.Bear} {
		t.AppendRow(table.Row{
			m.Regime,
			m.Days,
			formatPercent(m.TotalReturn),
			fmt.Sprintf("%.2f", m.Sharpe),
			formatPercent(m.MaxDrawdown),
		})
	}
	if breakdown.UndefinedDays > 0 {
		t.AppendSeparator()
		t.AppendRow(table.Row{"Undefined", breakdown.UndefinedDays, "", "", ""})
	}
	t.SetColumnConfigs(numericColumns(2, 5))
	t.Render()
}

func (r *DefaultConsoleReporter) newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	return t
}

// numericColumns right-aligns columns from..to (1-based, inclusive)
func numericColumns(from, to int) []table.ColumnConfig {
	configs := make([]table.ColumnConfig, 0, to-from+1)
	for n := from; n <= to; n++ {
		configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight})
	}
	return configs
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}
