package data

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	bterrors "github.com/ducminhle1904/crypto-momentum-backtest/internal/errors"
	"github.com/ducminhle1904/crypto-momentum-backtest/internal/logger"
	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/types"
	"go.uber.org/zap"
)

// LoadOptions narrows and cleans a table before it becomes a price series
type LoadOptions struct {
	Start            time.Time
	End              time.Time
	Period           time.Duration
	OutlierThreshold float64
}

// DataManager combines all data operations in a convenient interface
type DataManager struct {
	csv     *CachedProvider
	parquet *CachedProvider
	filter  DataFilter
	locator FileLocator
	logger  *logger.Logger
}

// NewDataManager creates a new data manager with default components
func NewDataManager(log *logger.Logger) *DataManager {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.Named("data")
	return &DataManager{
		csv:     NewCachedProvider(NewCSVProvider(), log),
		parquet: NewCachedProvider(NewParquetProvider(), log),
		filter:  NewDefaultDataFilter(),
		locator: NewDefaultFileLocator(),
		logger:  log,
	}
}

// ProviderFor picks a provider by file extension
func (dm *DataManager) ProviderFor(path string) (DataProvider, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return dm.csv, nil
	case ".parquet", ".pq":
		return dm.parquet, nil
	default:
		return nil, bterrors.NewConfigurationError("data", "ProviderFor", fmt.Sprintf("unsupported data file %q", path))
	}
}

// WriterFor picks a writer by file extension
func (dm *DataManager) WriterFor(path string) (DataWriter, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return NewCSVProvider(), nil
	case ".parquet", ".pq":
		return NewParquetProvider(), nil
	default:
		return nil, bterrors.NewConfigurationError("data", "WriterFor", fmt.Sprintf("unsupported data file %q", path))
	}
}

// LoadTable loads path and runs the cleaning pipeline: UTC and dedupe,
// date filters, quality checks, daily forward-fill and outlier flagging.
func (dm *DataManager) LoadTable(path string, opts LoadOptions) ([]types.OHLCV, *QualityReport, error) {
	provider, err := dm.ProviderFor(path)
	if err != nil {
		return nil, nil, err
	}
	raw, err := provider.LoadData(path)
	if err != nil {
		return nil, nil, err
	}

	rows := CleanTable(raw)
	report := &QualityReport{Duplicates: len(raw) - len(rows)}

	if !opts.Start.IsZero() || !opts.End.IsZero() {
		rows = dm.filter.FilterByDateRange(rows, opts.Start, opts.End)
	}
	if opts.Period > 0 {
		rows = dm.filter.FilterByPeriod(rows, opts.Period)
	}

	if err := provider.ValidateData(rows); err != nil {
		return nil, nil, err
	}

	rows, report.FilledDays, report.DroppedRows = EnsureContinuousDaily(rows)
	report.Rows = len(rows)

	threshold := opts.OutlierThreshold
	if threshold <= 0 {
		threshold = DefaultOutlierThreshold
	}
	outliers := FlagOutlierReturns(rows, threshold)
	for i, flagged := range outliers.Values {
		if flagged.TakeOr(false) {
			report.OutlierDates = append(report.OutlierDates, outliers.Index[i])
		}
	}

	dm.logger.Info("price table ready",
		zap.String("file", filepath.Base(path)),
		zap.Int("rows", report.Rows),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("filled_days", report.FilledDays),
		zap.Int("dropped_rows", report.DroppedRows),
		zap.Int("outliers", len(report.OutlierDates)))
	for _, ts := range report.OutlierDates {
		dm.logger.Warn("suspect daily return", zap.Time("date", ts))
	}

	return rows, report, nil
}

// LoadPriceSeries loads path through LoadTable and returns the close series
func (dm *DataManager) LoadPriceSeries(path string, opts LoadOptions) (types.Series, *QualityReport, error) {
	rows, report, err := dm.LoadTable(path, opts)
	if err != nil {
		return types.Series{}, nil, err
	}
	return ToPriceSeries(rows), report, nil
}

// SaveTable writes rows to path in the format its extension names
func (dm *DataManager) SaveTable(path string, rows []types.OHLCV) error {
	writer, err := dm.WriterFor(path)
	if err != nil {
		return err
	}
	return writer.WriteData(path, rows)
}

// FindDataFile locates a table under dataRoot
func (dm *DataManager) FindDataFile(dataRoot, exchange, symbol, interval string) string {
	return dm.locator.FindDataFile(dataRoot, exchange, symbol, interval)
}

// DataFilePath returns the conventional location of a table
func (dm *DataManager) DataFilePath(dataRoot, exchange, category, symbol, interval, ext string) string {
	return dm.locator.DataFilePath(dataRoot, exchange, category, symbol, interval, ext)
}
