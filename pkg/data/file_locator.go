package data

import (
	"os"
	"path/filepath"
	"strings"
)

// FileLocator finds price tables on disk
type FileLocator interface {
	// FindDataFile returns the first existing table for symbol, or ""
	FindDataFile(dataRoot, exchange, symbol, interval string) string

	// DataFilePath returns where a table for symbol should live
	DataFilePath(dataRoot, exchange, category, symbol, interval, ext string) string
}

// DefaultFileLocator implements FileLocator for the layout
// {root}/{exchange}/{category}/{SYMBOL}/{interval}/candles.{csv,parquet}
type DefaultFileLocator struct{}

// NewDefaultFileLocator creates a new default file locator
func NewDefaultFileLocator() *DefaultFileLocator {
	return &DefaultFileLocator{}
}

// NormalizeInterval maps daily interval spellings to the exchange form "D"
func NormalizeInterval(interval string) string {
	switch strings.ToLower(strings.TrimSpace(interval)) {
	case "d", "1d", "day", "daily", "1440":
		return "D"
	default:
		return interval
	}
}

// DataFilePath returns where a table for symbol should live
func (f *DefaultFileLocator) DataFilePath(dataRoot, exchange, category, symbol, interval, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	return filepath.Join(dataRoot, strings.ToLower(exchange), category, strings.ToUpper(symbol),
		NormalizeInterval(interval), "candles."+ext)
}

// FindDataFile checks each category and format for an existing table
func (f *DefaultFileLocator) FindDataFile(dataRoot, exchange, symbol, interval string) string {
	var categories []string
	switch strings.ToLower(exchange) {
	case "bybit":
		categories = []string{"spot", "linear", "inverse"}
	case "binance":
		categories = []string{"spot", "futures"}
	default:
		categories = []string{"spot", "futures", "linear", "inverse"}
	}

	for _, category := range categories {
		for _, ext := range []string{"parquet", "csv"} {
			path := f.DataFilePath(dataRoot, exchange, category, symbol, interval, ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}
