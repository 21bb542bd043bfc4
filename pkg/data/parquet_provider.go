package data

import (
	"os"
	"path/filepath"
	"time"

	bterrors "github.com/ducminhle1904/crypto-momentum-backtest/internal/errors"
	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/types"
	"github.com/parquet-go/parquet-go"
)

// PriceRecord is the Parquet schema for daily price tables
type PriceRecord struct {
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    float64 `parquet:"volume"`
}

// ParquetProvider implements DataProvider and DataWriter for Parquet files
type ParquetProvider struct{}

// NewParquetProvider creates a new Parquet data provider
func NewParquetProvider() *ParquetProvider {
	return &ParquetProvider{}
}

// GetName returns the name of the data provider
func (p *ParquetProvider) GetName() string {
	return "Parquet Provider"
}

// LoadData reads a price table from a Parquet file
func (p *ParquetProvider) LoadData(source string) ([]types.OHLCV, error) {
	rows, err := parquet.ReadFile[PriceRecord](source)
	if err != nil {
		return nil, bterrors.NewDataError("data", "LoadData", err)
	}

	data := make([]types.OHLCV, len(rows))
	for i, r := range rows {
		data[i] = types.OHLCV{
			Timestamp: time.UnixMilli(r.Timestamp).UTC(),
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    r.Volume,
		}
	}
	return data, nil
}

// WriteData writes data to a Parquet file, creating parent directories
func (p *ParquetProvider) WriteData(dest string, data []types.OHLCV) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	records := make([]PriceRecord, len(data))
	for i, c := range data {
		records[i] = PriceRecord{
			Timestamp: c.Timestamp.UnixMilli(),
			Open:      c.Open,
			High:      c.High,
			Low:       c.Low,
			Close:     c.Close,
			Volume:    c.Volume,
		}
	}
	return parquet.WriteFile(dest, records)
}

// ValidateData validates the integrity of loaded data
func (p *ParquetProvider) ValidateData(data []types.OHLCV) error {
	return ValidateQuality(data)
}
