package regime

import (
	"fmt"

	"github.com/ducminhle1904/crypto-momentum-backtest/internal/indicators"
	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/types"
	"github.com/moznion/go-optional"
)

// Detector labels every row of a price series as bull (true) or bear (false).
// Rows it cannot classify are left undefined.
type Detector interface {
	Detect(price types.Series) (types.Mask, error)
}

// MovingAverageDetector marks a row bull when price closes above its trailing
// simple moving average.
type MovingAverageDetector struct {
	config RegimeConfig
	sma    *indicators.SMA
}

// NewMovingAverageDetector creates a detector from config
func NewMovingAverageDetector(config RegimeConfig) (*MovingAverageDetector, error) {
	if config.MAWindow < 1 {
		return nil, fmt.Errorf("regime MA window must be >= 1, got %d", config.MAWindow)
	}
	return &MovingAverageDetector{
		config: config,
		sma:    indicators.NewSMA(config.MAWindow),
	}, nil
}

// Detect returns the bull mask. Warm-up rows are undefined unless the config
// asks for them to count as bear.
func (d *MovingAverageDetector) Detect(price types.Series) (types.Mask, error) {
	ma, err := d.sma.Calculate(price)
	if err != nil {
		return types.Mask{}, err
	}

	mask := types.Mask{
		Index:  ma.Index,
		Values: make([]optional.Option[bool], price.Len()),
	}
	for t, avg := range ma.Values {
		if avg.IsNone() {
			mask.Values[t] = optional.None[bool]()
			continue
		}
		mask.Values[t] = optional.Some(price.Values[t] > avg.Unwrap())
	}

	if d.config.UndefinedAsBear {
		return mask.FillNone(false), nil
	}
	return mask, nil
}

// Classify converts one mask value into a regime
func Classify(bull optional.Option[bool]) (RegimeType, bool) {
	if bull.IsNone() {
		return RegimeBear, false
	}
	if bull.Unwrap() {
		return RegimeBull, true
	}
	return RegimeBear, true
}
