package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/validation"
	"github.com/parquet-go/parquet-go"
)

// DefaultParquetReporter writes the full-history series as a parquet file
type DefaultParquetReporter struct{}

// NewDefaultParquetReporter creates a new parquet reporter
func NewDefaultParquetReporter() *DefaultParquetReporter {
	return &DefaultParquetReporter{}
}

// WriteSeriesParquet writes one SeriesRecord per day
func (r *DefaultParquetReporter) WriteSeriesParquet(report *validation.EvaluationReport, path string) error {
	records, err := BuildSeriesRecords(report)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := parquet.WriteFile(path, records); err != nil {
		return fmt.Errorf("failed to write parquet series %s: %w", path, err)
	}
	return nil
}

// ReadSeriesParquet loads a file written by WriteSeriesParquet
func ReadSeriesParquet(path string) ([]SeriesRecord, error) {
	records, err := parquet.ReadFile[SeriesRecord](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet series %s: %w", path, err)
	}
	return records, nil
}
