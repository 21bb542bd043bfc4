package data

import (
	"time"

	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/types"
)

// DataProvider interface for loading historical data from various sources
type DataProvider interface {
	// LoadData loads historical data from the specified source
	LoadData(source string) ([]types.OHLCV, error)

	// ValidateData validates the integrity of the loaded data
	ValidateData(data []types.OHLCV) error

	// GetName returns the name of the data provider
	GetName() string
}

// DataWriter persists a price table
type DataWriter interface {
	WriteData(dest string, data []types.OHLCV) error
}

// DataCache interface for caching loaded data
type DataCache interface {
	// Get retrieves data from cache if available
	Get(key string) ([]types.OHLCV, bool)

	// Set stores data in cache
	Set(key string, data []types.OHLCV)

	// Clear removes all cached data
	Clear()

	// Size returns the number of cached entries
	Size() int
}

// DataFilter interface for filtering and transforming data
type DataFilter interface {
	// FilterByPeriod filters data to the last N period
	FilterByPeriod(data []types.OHLCV, period time.Duration) []types.OHLCV

	// FilterByDateRange filters data to a specific date range
	FilterByDateRange(data []types.OHLCV, start, end time.Time) []types.OHLCV

	// ValidateTimeSequence ensures data is in chronological order
	ValidateTimeSequence(data []types.OHLCV) error
}

// CSVColumnMapping names the header columns of a price table. Only the
// timestamp and close columns are required.
type CSVColumnMapping struct {
	TimestampCols []string
	OpenCol       string
	HighCol       string
	LowCol        string
	CloseCol      string
	VolumeCol     string
}

// DefaultCSVFormat reads files written by this module and by pandas, whose
// index column is either unnamed or called open_time.
var DefaultCSVFormat = CSVColumnMapping{
	TimestampCols: []string{"timestamp", "open_time", "date", ""},
	OpenCol:       "open",
	HighCol:       "high",
	LowCol:        "low",
	CloseCol:      "close",
	VolumeCol:     "volume",
}

// timestampLayouts are tried in order when parsing CSV timestamps
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}
