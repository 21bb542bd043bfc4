package reporting

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/validation"
)

// seriesHeader is the column order of the series export
var seriesHeader = []string{
	"date",
	"split",
	"price",
	"signal",
	"bull",
	"gross_return",
	"net_return",
	"turnover",
	"cost",
	"gross_equity",
	"net_equity",
	"baseline_net_equity",
}

// DefaultCSVReporter implements CSV output functionality
type DefaultCSVReporter struct{}

// NewDefaultCSVReporter creates a new CSV reporter
func NewDefaultCSVReporter() *DefaultCSVReporter {
	return &DefaultCSVReporter{}
}

// WriteSeriesCSV writes the full-history strategy series next to the baseline equity
func (r *DefaultCSVReporter) WriteSeriesCSV(report *validation.EvaluationReport, path string) error {
	records, err := BuildSeriesRecords(report)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(seriesHeader); err != nil {
		return err
	}
	for _, rec := range records {
		bull := ""
		if rec.Bull != nil {
			bull = strconv.FormatBool(*rec.Bull)
		}
		row := []string{
			rec.Time().Format(dateLayout),
			rec.Split,
			formatFloat(rec.Price),
			formatFloat(rec.Signal),
			bull,
			formatFloat(rec.GrossReturn),
			formatFloat(rec.NetReturn),
			formatFloat(rec.Turnover),
			formatFloat(rec.Cost),
			formatFloat(rec.GrossEquity),
			formatFloat(rec.NetEquity),
			formatFloat(rec.BaselineNetEquity),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
