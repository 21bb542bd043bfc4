package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	bterrors "github.com/ducminhle1904/crypto-momentum-backtest/internal/errors"
	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/types"
)

// CSVProvider implements DataProvider and DataWriter for CSV files
type CSVProvider struct {
	format CSVColumnMapping
}

// NewCSVProvider creates a new CSV data provider with default format
func NewCSVProvider() *CSVProvider {
	return &CSVProvider{
		format: DefaultCSVFormat,
	}
}

// NewCSVProviderWithFormat creates a new CSV data provider with custom format
func NewCSVProviderWithFormat(format CSVColumnMapping) *CSVProvider {
	return &CSVProvider{
		format: format,
	}
}

// GetName returns the name of the data provider
func (p *CSVProvider) GetName() string {
	return "CSV Provider"
}

// LoadData loads historical data from a CSV file
func (p *CSVProvider) LoadData(source string) ([]types.OHLCV, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, bterrors.NewDataError("data", "LoadData", err)
	}
	defer file.Close()

	return p.Read(file)
}

// Read parses a CSV price table. Malformed rows fail the whole read.
func (p *CSVProvider) Read(r io.Reader) ([]types.OHLCV, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, dataError("Read", err, "failed to read CSV header")
	}
	cols, err := p.resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var data []types.OHLCV
	lineNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNum++
		if err != nil {
			return nil, dataError("Read", err, "error reading CSV at line %d", lineNum)
		}

		candle, err := cols.parse(record)
		if err != nil {
			return nil, dataError("Read", err, "invalid row at line %d", lineNum)
		}
		data = append(data, candle)
	}

	return data, nil
}

// WriteData writes data as CSV with an RFC3339 timestamp column
func (p *CSVProvider) WriteData(dest string, data []types.OHLCV) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"timestamp", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, c := range data {
		record := []string{
			c.Timestamp.UTC().Format(time.RFC3339),
			strconv.FormatFloat(c.Open, 'f', -1, 64),
			strconv.FormatFloat(c.High, 'f', -1, 64),
			strconv.FormatFloat(c.Low, 'f', -1, 64),
			strconv.FormatFloat(c.Close, 'f', -1, 64),
			strconv.FormatFloat(c.Volume, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ValidateData validates the integrity of loaded data
func (p *CSVProvider) ValidateData(data []types.OHLCV) error {
	return ValidateQuality(data)
}

type csvColumns struct {
	timestamp, open, high, low, close, volume int
}

func (p *CSVProvider) resolveColumns(header []string) (*csvColumns, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}
	lookup := func(name string) int {
		if i, ok := positions[strings.ToLower(name)]; ok && name != "" {
			return i
		}
		return -1
	}

	cols := &csvColumns{
		timestamp: -1,
		open:      lookup(p.format.OpenCol),
		high:      lookup(p.format.HighCol),
		low:       lookup(p.format.LowCol),
		close:     lookup(p.format.CloseCol),
		volume:    lookup(p.format.VolumeCol),
	}
	for _, name := range p.format.TimestampCols {
		if i, ok := positions[strings.ToLower(name)]; ok {
			cols.timestamp = i
			break
		}
	}

	if cols.timestamp < 0 {
		return nil, dataError("Read", bterrors.ErrMissingValue, "no timestamp column in header %v", header)
	}
	if cols.close < 0 {
		return nil, dataError("Read", bterrors.ErrMissingValue, "no %q column in header %v", p.format.CloseCol, header)
	}
	return cols, nil
}

func (c *csvColumns) parse(record []string) (types.OHLCV, error) {
	field := func(i int) (string, bool) {
		if i < 0 || i >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[i]), true
	}

	raw, ok := field(c.timestamp)
	if !ok {
		return types.OHLCV{}, fmt.Errorf("missing timestamp")
	}
	ts, err := parseTimestamp(raw)
	if err != nil {
		return types.OHLCV{}, err
	}

	candle := types.OHLCV{Timestamp: ts}
	targets := []struct {
		col      int
		dst      *float64
		required bool
	}{
		{c.close, &candle.Close, true},
		{c.open, &candle.Open, false},
		{c.high, &candle.High, false},
		{c.low, &candle.Low, false},
		{c.volume, &candle.Volume, false},
	}
	for _, t := range targets {
		s, ok := field(t.col)
		if !ok || s == "" {
			if t.required {
				return types.OHLCV{}, bterrors.ErrMissingValue
			}
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return types.OHLCV{}, err
		}
		*t.dst = v
	}

	// close-only tables
	if c.open < 0 {
		candle.Open = candle.Close
	}
	if c.high < 0 {
		candle.High = candle.Close
	}
	if c.low < 0 {
		candle.Low = candle.Close
	}
	return candle, nil
}

// parseTimestamp accepts the layouts in timestampLayouts or Unix milliseconds
func parseTimestamp(raw string) (time.Time, error) {
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", raw)
}

func dataError(op string, err error, format string, args ...interface{}) *bterrors.BacktestError {
	e := bterrors.NewDataError("data", op, err)
	e.Message = fmt.Sprintf(format, args...)
	return e
}
