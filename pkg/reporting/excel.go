package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/validation"
	"github.com/xuri/excelize/v2"
)

// Workbook sheet names. None contains spaces so chart ranges need no quoting.
const (
	summarySheet   = "Summary"
	regimesSheet   = "Regimes"
	seriesSheet    = "Series"
	testSheet      = "TestPeriod"
	chartsSheet    = "Charts"
	chartRowHeight = 22
)

// DefaultExcelReporter implements Excel output functionality
type DefaultExcelReporter struct{}

// NewDefaultExcelReporter creates a new Excel reporter
func NewDefaultExcelReporter() *DefaultExcelReporter {
	return &DefaultExcelReporter{}
}

// WriteReportXLSX writes the run summary, regime table, full-history series,
// test-period equity and two net equity charts to one workbook.
func (r *DefaultExcelReporter) WriteReportXLSX(report *validation.EvaluationReport, meta ReportMeta, path string) error {
	records, err := BuildSeriesRecords(report)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	if err := fx.SetSheetName(fx.GetSheetName(0), summarySheet); err != nil {
		return err
	}
	for _, name := range []string{regimesSheet, seriesSheet, testSheet, chartsSheet} {
		if _, err := fx.NewSheet(name); err != nil {
			return err
		}
	}

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}

	doc := BuildSummary(report, meta)
	if err := r.writeSummarySheet(fx, doc, styles); err != nil {
		return err
	}
	if err := r.writeRegimesSheet(fx, doc.Regimes, styles); err != nil {
		return err
	}
	if err := r.writeSeriesSheet(fx, records, styles); err != nil {
		return err
	}
	testRows, err := r.writeTestSheet(fx, report, styles)
	if err != nil {
		return err
	}
	if err := r.addCharts(fx, len(records), testRows); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

func (r *DefaultExcelReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	cellBorder := []excelize.Border{
		{Type: "left", Color: "E0E0E0", Style: 1},
		{Type: "right", Color: "E0E0E0", Style: 1},
		{Type: "bottom", Color: "E0E0E0", Style: 1},
	}

	// Header style - dark slate background with white text
	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"2F4F4F"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	styles.PercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    10, // 0.00%
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    cellBorder,
	})
	if err != nil {
		return styles, err
	}

	styles.RedPercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    10,
		Font:      &excelize.Font{Color: "C00000"},
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    cellBorder,
	})
	if err != nil {
		return styles, err
	}

	styles.GreenPercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    10,
		Font:      &excelize.Font{Color: "008000"},
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    cellBorder,
	})
	if err != nil {
		return styles, err
	}

	styles.RatioStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    4, // #,##0.00
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    cellBorder,
	})
	if err != nil {
		return styles, err
	}

	styles.DateStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    14, // m/d/yy
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    cellBorder,
	})
	if err != nil {
		return styles, err
	}

	styles.BaseStyle, err = fx.NewStyle(&excelize.Style{
		Border: cellBorder,
	})
	if err != nil {
		return styles, err
	}

	styles.LabelStyle, err = fx.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: cellBorder,
	})
	return styles, err
}

func (r *DefaultExcelReporter) writeSummarySheet(fx *excelize.File, doc SummaryDocument, styles ExcelStyles) error {
	headers := []interface{}{"Run", "Start", "End", "Days", "Return Gross", "Return Net", "Sharpe", "Max Drawdown", "Avg Turnover", "Trades", "Total Cost", "End Equity", "Mean Daily Net"}
	if err := writeHeader(fx, summarySheet, headers, styles); err != nil {
		return err
	}

	for i, run := range doc.Runs {
		row := i + 2
		values := []interface{}{
			run.Name, run.Start, run.End, run.Days,
			run.TotalReturnGross, run.TotalReturnNet, run.SharpeNet, run.MaxDrawdownNet,
			run.AvgTurnover, run.TradeCount, run.TotalCost, run.EndEquityNet, run.MeanNetReturn,
		}
		if err := setRow(fx, summarySheet, row, values); err != nil {
			return err
		}
		if err := styleRange(fx, summarySheet, 1, 4, row, styles.BaseStyle); err != nil {
			return err
		}
		for col, v := range map[int]float64{5: run.TotalReturnGross, 6: run.TotalReturnNet, 8: run.MaxDrawdownNet, 13: run.MeanNetReturn} {
			if err := styleRange(fx, summarySheet, col, col, row, signedPercentStyle(v, styles)); err != nil {
				return err
			}
		}
		for _, col := range []int{7, 9, 11, 12} {
			if err := styleRange(fx, summarySheet, col, col, row, styles.RatioStyle); err != nil {
				return err
			}
		}
		if err := styleRange(fx, summarySheet, 10, 10, row, styles.BaseStyle); err != nil {
			return err
		}
	}

	// Settings block below the run table
	row := len(doc.Runs) + 3
	settings := [][]interface{}{
		{"Strategy", doc.Strategy},
		{"Symbol", doc.Symbol},
		{"Interval", doc.Interval},
		{"Data", doc.Source},
		{"Split Date", doc.Cutoff},
		{"Split Inclusive", doc.SplitInclusive},
		{"Fee (bps)", doc.Config.FeeBps},
		{"Slippage (bps)", doc.Config.SlipBps},
		{"Risk-free Rate", doc.Config.RiskFreeRate},
		{"Annualization", doc.Config.Annualization},
	}
	for _, kv := range settings {
		if err := setRow(fx, summarySheet, row, kv); err != nil {
			return err
		}
		if err := styleRange(fx, summarySheet, 1, 1, row, styles.LabelStyle); err != nil {
			return err
		}
		if err := styleRange(fx, summarySheet, 2, 2, row, styles.BaseStyle); err != nil {
			return err
		}
		row++
	}

	if err := fx.SetColWidth(summarySheet, "A", "A", 18); err != nil {
		return err
	}
	if err := fx.SetColWidth(summarySheet, "B", "C", 12); err != nil {
		return err
	}
	return fx.SetColWidth(summarySheet, "D", "M", 14)
}

func (r *DefaultExcelReporter) writeRegimesSheet(fx *excelize.File, breakdown validation.RegimeBreakdown, styles ExcelStyles) error {
	if err := writeHeader(fx, regimesSheet, []interface{}{"Regime", "Days", "Total Return", "Sharpe", "Max Drawdown"}, styles); err != nil {
		return err
	}
	for i, m := range []validation.RegimeMetrics{breakdown.Bull, breakdown.Bear} {
		row := i + 2
		if err := setRow(fx, regimesSheet, row, []interface{}{m.Regime, m.Days, m.TotalReturn, m.Sharpe, m.MaxDrawdown}); err != nil {
			return err
		}
		if err := styleRange(fx, regimesSheet, 1, 2, row, styles.BaseStyle); err != nil {
			return err
		}
		if err := styleRange(fx, regimesSheet, 3, 3, row, signedPercentStyle(m.TotalReturn, styles)); err != nil {
			return err
		}
		if err := styleRange(fx, regimesSheet, 4, 4, row, styles.RatioStyle); err != nil {
			return err
		}
		if err := styleRange(fx, regimesSheet, 5, 5, row, styles.PercentStyle); err != nil {
			return err
		}
	}
	if err := setRow(fx, regimesSheet, 4, []interface{}{"Undefined", breakdown.UndefinedDays}); err != nil {
		return err
	}
	if err := styleRange(fx, regimesSheet, 1, 2, 4, styles.LabelStyle); err != nil {
		return err
	}
	return fx.SetColWidth(regimesSheet, "A", "E", 14)
}

func (r *DefaultExcelReporter) writeSeriesSheet(fx *excelize.File, records []SeriesRecord, styles ExcelStyles) error {
	headers := make([]interface{}, len(seriesHeader))
	for i, h := range seriesHeader {
		headers[i] = h
	}
	if err := writeHeader(fx, seriesSheet, headers, styles); err != nil {
		return err
	}

	for i, rec := range records {
		var bull interface{}
		if rec.Bull != nil {
			bull = *rec.Bull
		}
		values := []interface{}{
			rec.Time(), rec.Split, rec.Price, rec.Signal, bull,
			rec.GrossReturn, rec.NetReturn, rec.Turnover, rec.Cost,
			rec.GrossEquity, rec.NetEquity, rec.BaselineNetEquity,
		}
		if err := setRow(fx, seriesSheet, i+2, values); err != nil {
			return err
		}
	}

	if n := len(records); n > 0 {
		last := n + 1
		if err := styleColumn(fx, seriesSheet, 1, last, styles.DateStyle); err != nil {
			return err
		}
		for _, col := range []int{6, 7} {
			if err := styleColumn(fx, seriesSheet, col, last, styles.PercentStyle); err != nil {
				return err
			}
		}
		for _, col := range []int{8, 9, 10, 11, 12} {
			if err := styleColumn(fx, seriesSheet, col, last, styles.RatioStyle); err != nil {
				return err
			}
		}
	}
	if err := fx.SetColWidth(seriesSheet, "A", "A", 12); err != nil {
		return err
	}
	if err := fx.SetColWidth(seriesSheet, "B", "L", 14); err != nil {
		return err
	}
	return fx.SetPanes(seriesSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// writeTestSheet writes the test-period net equity of strategy and baseline
// and returns the number of data rows.
func (r *DefaultExcelReporter) writeTestSheet(fx *excelize.File, report *validation.EvaluationReport, styles ExcelStyles) (int, error) {
	if err := writeHeader(fx, testSheet, []interface{}{"date", "strategy_net_equity", "baseline_net_equity"}, styles); err != nil {
		return 0, err
	}
	strategy := report.StrategyTest.Results
	baseline := report.BaselineTest.Results
	if strategy == nil || baseline == nil {
		return 0, nil
	}
	n := strategy.NetEquity.Len()
	if baseline.NetEquity.Len() != n {
		return 0, fmt.Errorf("test-period equity lengths differ: strategy %d, baseline %d", n, baseline.NetEquity.Len())
	}
	for i := 0; i < n; i++ {
		values := []interface{}{strategy.NetEquity.Index[i], strategy.NetEquity.Values[i], baseline.NetEquity.Values[i]}
		if err := setRow(fx, testSheet, i+2, values); err != nil {
			return 0, err
		}
	}
	if n > 0 {
		if err := styleColumn(fx, testSheet, 1, n+1, styles.DateStyle); err != nil {
			return 0, err
		}
		for _, col := range []int{2, 3} {
			if err := styleColumn(fx, testSheet, col, n+1, styles.RatioStyle); err != nil {
				return 0, err
			}
		}
	}
	return n, fx.SetColWidth(testSheet, "A", "C", 20)
}

// addCharts plots net equity of strategy vs baseline over the full history and the test period
func (r *DefaultExcelReporter) addCharts(fx *excelize.File, fullRows, testRows int) error {
	if fullRows > 0 {
		last := fullRows + 1
		chart := equityChart("Net Equity: Strategy vs Buy & Hold", []excelize.ChartSeries{
			lineSeries(seriesSheet, "K", last),
			lineSeries(seriesSheet, "L", last),
		})
		if err := fx.AddChart(chartsSheet, "A1", chart); err != nil {
			return fmt.Errorf("failed to add full-history chart: %w", err)
		}
	}
	if testRows > 0 {
		last := testRows + 1
		chart := equityChart("Test Period Net Equity", []excelize.ChartSeries{
			lineSeries(testSheet, "B", last),
			lineSeries(testSheet, "C", last),
		})
		if err := fx.AddChart(chartsSheet, fmt.Sprintf("A%d", chartRowHeight+2), chart); err != nil {
			return fmt.Errorf("failed to add test-period chart: %w", err)
		}
	}
	return nil
}

func equityChart(title string, series []excelize.ChartSeries) *excelize.Chart {
	return &excelize.Chart{
		Type:      excelize.Line,
		Series:    series,
		Title:     []excelize.RichTextRun{{Text: title}},
		Legend:    excelize.ChartLegend{Position: "bottom"},
		Dimension: excelize.ChartDimension{Width: 960, Height: 420},
		YAxis:     excelize.ChartAxis{MajorGridLines: true},
	}
}

// lineSeries plots column col of sheet against its date column A
func lineSeries(sheet, col string, lastRow int) excelize.ChartSeries {
	return excelize.ChartSeries{
		Name:       fmt.Sprintf("%s!$%s$1", sheet, col),
		Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheet, lastRow),
		Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", sheet, col, col, lastRow),
		Marker:     excelize.ChartMarker{Symbol: "none"},
	}
}

func writeHeader(fx *excelize.File, sheet string, headers []interface{}, styles ExcelStyles) error {
	if err := setRow(fx, sheet, 1, headers); err != nil {
		return err
	}
	return styleRange(fx, sheet, 1, len(headers), 1, styles.HeaderStyle)
}

func setRow(fx *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return fx.SetSheetRow(sheet, cell, &values)
}

// styleRange styles columns fromCol..toCol of one row
func styleRange(fx *excelize.File, sheet string, fromCol, toCol, row, style int) error {
	start, err := excelize.CoordinatesToCellName(fromCol, row)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(toCol, row)
	if err != nil {
		return err
	}
	return fx.SetCellStyle(sheet, start, end, style)
}

// styleColumn styles rows 2..lastRow of one column
func styleColumn(fx *excelize.File, sheet string, col, lastRow, style int) error {
	start, err := excelize.CoordinatesToCellName(col, 2)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(col, lastRow)
	if err != nil {
		return err
	}
	return fx.SetCellStyle(sheet, start, end, style)
}

func signedPercentStyle(v float64, styles ExcelStyles) int {
	switch {
	case v > 0:
		return styles.GreenPercentStyle
	case v < 0:
		return styles.RedPercentStyle
	default:
		return styles.PercentStyle
	}
}
