package reporting

import (
	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/validation"
)

// Package reporting renders an evaluation report to the console and to files

// ConsoleReporter defines interface for console output
type ConsoleReporter interface {
	OutputReport(report *validation.EvaluationReport, meta ReportMeta)
	PrintHeader(doc SummaryDocument)
	PrintRuns(runs []RunSummary)
	PrintRegimes(breakdown validation.RegimeBreakdown)
}

// FileReporter defines interface for file output
type FileReporter interface {
	WriteSeriesCSV(report *validation.EvaluationReport, path string) error
	WriteSeriesParquet(report *validation.EvaluationReport, path string) error
	WriteReportXLSX(report *validation.EvaluationReport, meta ReportMeta, path string) error
	WriteSummaryJSON(report *validation.EvaluationReport, meta ReportMeta, path string) error
}

// PathManager defines interface for output path management
type PathManager interface {
	GetDefaultOutputDir(symbol, interval string) string
	EnsureDirectoryExists(path string) error
}

// Reporter combines all reporting interfaces
type Reporter interface {
	ConsoleReporter
	FileReporter
	PathManager
}

// ExcelStyles holds Excel formatting styles
type ExcelStyles struct {
	HeaderStyle       int
	PercentStyle      int
	RatioStyle        int
	BaseStyle         int
	DateStyle         int
	RedPercentStyle   int
	GreenPercentStyle int
	LabelStyle        int
}

// ReportingConfig selects which outputs Generate writes
type ReportingConfig struct {
	EnableConsole   bool
	OutputDirectory string
	ExcelEnabled    bool
	CSVEnabled      bool
	ParquetEnabled  bool
	JSONEnabled     bool
}

// ReportMeta carries context that is not part of the evaluation itself
type ReportMeta struct {
	Symbol   string
	Interval string
	Source   string
}
