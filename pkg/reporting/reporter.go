package reporting

import (
	"path/filepath"

	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/validation"
)

// DefaultReporter implements the complete Reporter interface
type DefaultReporter struct {
	console *DefaultConsoleReporter
	csv     *DefaultCSVReporter
	parquet *DefaultParquetReporter
	excel   *DefaultExcelReporter
	json    *DefaultJSONFormatter
	paths   *DefaultPathManager
}

// NewDefaultReporter creates a new default reporter with all functionality
func NewDefaultReporter() *DefaultReporter {
	return NewReporterWithConsole(NewDefaultConsoleReporter())
}

// NewReporterWithConsole uses console for the console tables
func NewReporterWithConsole(console *DefaultConsoleReporter) *DefaultReporter {
	return &DefaultReporter{
		console: console,
		csv:     NewDefaultCSVReporter(),
		parquet: NewDefaultParquetReporter(),
		excel:   NewDefaultExcelReporter(),
		json:    NewDefaultJSONFormatter(),
		paths:   NewDefaultPathManager(),
	}
}

// Console output methods
func (r *DefaultReporter) OutputReport(report *validation.EvaluationReport, meta ReportMeta) {
	r.console.OutputReport(report, meta)
}

func (r *DefaultReporter) PrintHeader(doc SummaryDocument) {
	r.console.PrintHeader(doc)
}

func (r *DefaultReporter) PrintRuns(runs []RunSummary) {
	r.console.PrintRuns(runs)
}

func (r *DefaultReporter) PrintRegimes(breakdown validation.RegimeBreakdown) {
	r.console.PrintRegimes(breakdown)
}

// File output methods
func (r *DefaultReporter) WriteSeriesCSV(report *validation.EvaluationReport, path string) error {
	return r.csv.WriteSeriesCSV(report, path)
}

func (r *DefaultReporter) WriteSeriesParquet(report *validation.EvaluationReport, path string) error {
	return r.parquet.WriteSeriesParquet(report, path)
}

func (r *DefaultReporter) WriteReportXLSX(report *validation.EvaluationReport, meta ReportMeta, path string) error {
	return r.excel.WriteReportXLSX(report, meta, path)
}

func (r *DefaultReporter) WriteSummaryJSON(report *validation.EvaluationReport, meta ReportMeta, path string) error {
	return r.json.WriteSummaryJSON(report, meta, path)
}

// Path management methods
func (r *DefaultReporter) GetDefaultOutputDir(symbol, interval string) string {
	return r.paths.GetDefaultOutputDir(symbol, interval)
}

func (r *DefaultReporter) EnsureDirectoryExists(path string) error {
	return r.paths.EnsureDirectoryExists(path)
}

// ReportingManager provides a high-level interface for all reporting needs
type ReportingManager struct {
	reporter Reporter
	config   ReportingConfig
}

// NewReportingManager creates a new reporting manager
func NewReportingManager(reporter Reporter, config ReportingConfig) *ReportingManager {
	return &ReportingManager{
		reporter: reporter,
		config:   config,
	}
}

// Generate prints and writes every enabled output and returns the written file paths
func (rm *ReportingManager) Generate(report *validation.EvaluationReport, meta ReportMeta) ([]string, error) {
	if rm.config.EnableConsole {
		rm.reporter.OutputReport(report, meta)
	}

	dir := rm.OutputDirectory(meta)

	var written []string
	outputs := []struct {
		enabled bool
		file    string
		write   func(path string) error
	}{
		{rm.config.JSONEnabled, SummaryJSONFile, func(p string) error { return rm.reporter.WriteSummaryJSON(report, meta, p) }},
		{rm.config.CSVEnabled, SeriesCSVFile, func(p string) error { return rm.reporter.WriteSeriesCSV(report, p) }},
		{rm.config.ParquetEnabled, SeriesParquetFile, func(p string) error { return rm.reporter.WriteSeriesParquet(report, p) }},
		{rm.config.ExcelEnabled, ReportXLSXFile, func(p string) error { return rm.reporter.WriteReportXLSX(report, meta, p) }},
	}
	for _, out := range outputs {
		if !out.enabled {
			continue
		}
		path := filepath.Join(dir, out.file)
		if err := rm.reporter.EnsureDirectoryExists(path); err != nil {
			return written, err
		}
		if err := out.write(path); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// OutputDirectory resolves the directory Generate writes to
func (rm *ReportingManager) OutputDirectory(meta ReportMeta) string {
	if rm.config.OutputDirectory != "" {
		return rm.config.OutputDirectory
	}
	return rm.reporter.GetDefaultOutputDir(meta.Symbol, meta.Interval)
}
