package validation

import (
	"time"

	bterrors "github.com/ducminhle1904/crypto-momentum-backtest/internal/errors"
	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/types"
)

const minPartitionRows = 2

// DefaultDataSplitter implements the DataSplitter interface
type DefaultDataSplitter struct {
	inclusive bool
}

// NewDefaultDataSplitter creates a splitter. With inclusive set, the cutoff
// row belongs to both partitions.
func NewDefaultDataSplitter(inclusive bool) *DefaultDataSplitter {
	return &DefaultDataSplitter{inclusive: inclusive}
}

// SplitAtDate splits at cutoff using the splitter's boundary rule
func (s *DefaultDataSplitter) SplitAtDate(price, signal types.Series, cutoff time.Time) (*TrainTestSplit, error) {
	return SplitAtDate(price, signal, cutoff, s.inclusive)
}

// SplitByRatio puts the first ratio share of rows in train and the rest in test
func (s *DefaultDataSplitter) SplitByRatio(price, signal types.Series, ratio float64) (*TrainTestSplit, error) {
	if err := checkAligned(price, signal, "SplitByRatio"); err != nil {
		return nil, err
	}
	if !(ratio > 0 && ratio < 1) {
		return nil, bterrors.NewConfigurationError("validation", "SplitByRatio", "ratio must be in (0, 1)")
	}

	n := int(float64(price.Len()) * ratio)
	return buildSplit(price, signal, 0, n, n, price.Len(), "SplitByRatio")
}

// SplitAtDate partitions price and signal at cutoff. Train holds rows up to
// cutoff and test holds rows from cutoff on; the cutoff row itself goes to
// both when inclusive is true and only to test otherwise. Each side must
// keep at least two rows.
func SplitAtDate(price, signal types.Series, cutoff time.Time, inclusive bool) (*TrainTestSplit, error) {
	if err := checkAligned(price, signal, "SplitAtDate"); err != nil {
		return nil, err
	}

	trainEnd := 0
	for trainEnd < price.Len() {
		ts := price.Index[trainEnd]
		if ts.After(cutoff) || (!inclusive && ts.Equal(cutoff)) {
			break
		}
		trainEnd++
	}

	testStart := 0
	for testStart < price.Len() && price.Index[testStart].Before(cutoff) {
		testStart++
	}

	return buildSplit(price, signal, 0, trainEnd, testStart, price.Len(), "SplitAtDate")
}

func buildSplit(price, signal types.Series, trainStart, trainEnd, testStart, testEnd int, op string) (*TrainTestSplit, error) {
	if trainEnd-trainStart < minPartitionRows {
		return nil, bterrors.NewValidationError("validation", op, bterrors.ErrTooShort,
			"train partition has %d rows", trainEnd-trainStart)
	}
	if testEnd-testStart < minPartitionRows {
		return nil, bterrors.NewValidationError("validation", op, bterrors.ErrTooShort,
			"test partition has %d rows", testEnd-testStart)
	}

	return &TrainTestSplit{
		Train: Partition{
			Price:  price.Slice(trainStart, trainEnd),
			Signal: signal.Slice(trainStart, trainEnd),
		},
		Test: Partition{
			Price:  price.Slice(testStart, testEnd),
			Signal: signal.Slice(testStart, testEnd),
		},
	}, nil
}

func checkAligned(price, signal types.Series, op string) error {
	if price.Len() != signal.Len() || len(price.Index) != price.Len() || len(signal.Index) != signal.Len() {
		return bterrors.NewValidationError("validation", op, bterrors.ErrLengthMismatch,
			"price has %d rows, signal has %d", price.Len(), signal.Len())
	}
	if !types.IndexEqual(price.Index, signal.Index) {
		return bterrors.NewValidationError("validation", op, bterrors.ErrIndexMismatch,
			"price and signal timestamps are not aligned")
	}
	return nil
}
