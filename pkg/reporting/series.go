package reporting

import (
	"fmt"
	"time"

	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/validation"
)

// Partition labels of a series row
const (
	SplitTrain = "train"
	SplitTest  = "test"
	SplitBoth  = "both"
)

// SeriesRecord is one day of the full-history evaluation
type SeriesRecord struct {
	Timestamp         int64   `parquet:"timestamp,timestamp(millisecond)"`
	Split             string  `parquet:"split,dict"`
	Price             float64 `parquet:"price"`
	Signal            float64 `parquet:"signal"`
	Bull              *bool   `parquet:"bull,optional"`
	GrossReturn       float64 `parquet:"gross_return"`
	NetReturn         float64 `parquet:"net_return"`
	Turnover          float64 `parquet:"turnover"`
	Cost              float64 `parquet:"cost"`
	GrossEquity       float64 `parquet:"gross_equity"`
	NetEquity         float64 `parquet:"net_equity"`
	BaselineNetEquity float64 `parquet:"baseline_net_equity"`
}

// Time returns the record timestamp in UTC
func (r SeriesRecord) Time() time.Time {
	return time.UnixMilli(r.Timestamp).UTC()
}

// BuildSeriesRecords joins the full-history strategy and baseline runs row by row
func BuildSeriesRecords(report *validation.EvaluationReport) ([]SeriesRecord, error) {
	strategy := report.StrategyFull.Results
	baseline := report.BaselineFull.Results
	if strategy == nil || baseline == nil {
		return nil, fmt.Errorf("report has no full-history runs")
	}
	n := strategy.NetReturns.Len()
	if baseline.NetEquity.Len() != n || report.Price.Len() != n || report.Signal.Len() != n {
		return nil, fmt.Errorf("full-history series lengths differ: strategy %d, baseline %d, price %d, signal %d",
			n, baseline.NetEquity.Len(), report.Price.Len(), report.Signal.Len())
	}
	hasMask := report.BullMask.Len() == n

	records := make([]SeriesRecord, n)
	for i := 0; i < n; i++ {
		ts := strategy.NetReturns.Index[i]
		rec := SeriesRecord{
			Timestamp:         ts.UnixMilli(),
			Split:             splitLabel(ts, report.Cutoff, report.SplitInclusive),
			Price:             report.Price.Values[i],
			Signal:            report.Signal.Values[i],
			GrossReturn:       strategy.GrossReturns.Values[i],
			NetReturn:         strategy.NetReturns.Values[i],
			Turnover:          strategy.Turnover.Values[i],
			Cost:              strategy.Costs.Values[i],
			GrossEquity:       strategy.GrossEquity.Values[i],
			NetEquity:         strategy.NetEquity.Values[i],
			BaselineNetEquity: baseline.NetEquity.Values[i],
		}
		if hasMask {
			if v, err := report.BullMask.Values[i].Take(); err == nil {
				rec.Bull = &v
			}
		}
		records[i] = rec
	}
	return records, nil
}

func splitLabel(ts, cutoff time.Time, inclusive bool) string {
	switch {
	case ts.Before(cutoff):
		return SplitTrain
	case ts.After(cutoff):
		return SplitTest
	case inclusive:
		return SplitBoth
	default:
		return SplitTest
	}
}
