package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Output file names inside the output directory
const (
	SummaryJSONFile   = "summary.json"
	SeriesCSVFile     = "series.csv"
	SeriesParquetFile = "series.parquet"
	ReportXLSXFile    = "report.xlsx"
	MetricsFile       = "metrics.prom"
)

// DefaultPathManager implements path management functionality
type DefaultPathManager struct{}

// NewDefaultPathManager creates a new path manager
func NewDefaultPathManager() *DefaultPathManager {
	return &DefaultPathManager{}
}

// GetDefaultOutputDir returns results/<SYMBOL>_<interval>
func (p *DefaultPathManager) GetDefaultOutputDir(symbol, interval string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	i := strings.ToLower(strings.TrimSpace(interval))
	if s == "" {
		s = "UNKNOWN"
	}
	if i == "" {
		i = "unknown"
	}

	return filepath.Join("results", fmt.Sprintf("%s_%s", s, i))
}

// EnsureDirectoryExists creates the parent directory of path if it doesn't exist
func (p *DefaultPathManager) EnsureDirectoryExists(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// DefaultOutputDir is the package-level form of GetDefaultOutputDir
func DefaultOutputDir(symbol, interval string) string {
	return NewDefaultPathManager().GetDefaultOutputDir(symbol, interval)
}
