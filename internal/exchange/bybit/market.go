package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/types"
	"go.uber.org/zap"
)

// KlineInterval represents the time interval for kline data
type KlineInterval string

const (
	Interval1h KlineInterval = "60"
	Interval4h KlineInterval = "240"
	Interval1d KlineInterval = "D"
	Interval1w KlineInterval = "W"
)

const (
	maxKlineLimit = 1000
	maxPages      = 10000
)

// Kline represents a single kline/candlestick data point
type Kline struct {
	StartTime  time.Time
	OpenPrice  float64
	HighPrice  float64
	LowPrice   float64
	ClosePrice float64
	Volume     float64
	Turnover   float64
}

// ToOHLCV converts the kline to the shared candle type
func (k Kline) ToOHLCV() types.OHLCV {
	return types.OHLCV{
		Timestamp: k.StartTime.UTC(),
		Open:      k.OpenPrice,
		High:      k.HighPrice,
		Low:       k.LowPrice,
		Close:     k.ClosePrice,
		Volume:    k.Volume,
	}
}

// KlineParams holds parameters for fetching kline data
type KlineParams struct {
	Category string        // "spot", "linear", "inverse"
	Symbol   string        // Trading pair symbol (e.g., "BTCUSDT")
	Interval KlineInterval // Time interval
	Start    time.Time     // Zero means one year before End
	End      time.Time     // Zero means now
	Limit    int           // Records per request (max 1000)
}

func (p KlineParams) withDefaults() KlineParams {
	if p.Category == "" {
		p.Category = "spot"
	}
	if p.Interval == "" {
		p.Interval = Interval1d
	}
	if p.Limit <= 0 || p.Limit > maxKlineLimit {
		p.Limit = maxKlineLimit
	}
	if p.End.IsZero() {
		p.End = time.Now().UTC()
	}
	if p.Start.IsZero() {
		p.Start = p.End.AddDate(-1, 0, 0)
	}
	return p
}

// GetKlines fetches a single page of klines. Bybit returns the newest first.
func (c *Client) GetKlines(ctx context.Context, params KlineParams) ([]Kline, error) {
	params = params.withDefaults()

	reqParams := map[string]interface{}{
		"category": params.Category,
		"symbol":   params.Symbol,
		"interval": string(params.Interval),
		"start":    params.Start.UnixMilli(),
		"end":      params.End.UnixMilli(),
		"limit":    params.Limit,
	}

	var klines []Kline
	err := c.Retry(ctx, "GetKlines", func() error {
		result, err := c.source.GetMarketKline(ctx, reqParams)
		if err != nil {
			return fmt.Errorf("failed to get klines: %w", err)
		}
		klines, err = parseKlineResponse(result)
		return err
	})
	if err != nil {
		return nil, err
	}
	return klines, nil
}

// GetHistoricalKlines pages backwards from End until Start is covered and
// returns the klines in [Start, End] in ascending order, one per start time.
func (c *Client) GetHistoricalKlines(ctx context.Context, params KlineParams) ([]Kline, error) {
	params = params.withDefaults()
	if !params.Start.Before(params.End) {
		return nil, fmt.Errorf("start %s must be before end %s", params.Start.Format(time.RFC3339), params.End.Format(time.RFC3339))
	}

	startMs := params.Start.UnixMilli()
	endMs := params.End.UnixMilli()
	byStart := make(map[int64]Kline)

	page := params
	for pages := 0; ; pages++ {
		if pages >= maxPages {
			return nil, fmt.Errorf("kline pagination did not reach %s after %d pages", params.Start.Format(time.RFC3339), pages)
		}

		klines, err := c.GetKlines(ctx, page)
		if err != nil {
			return nil, err
		}
		if len(klines) == 0 {
			break
		}

		oldest := klines[0].StartTime.UnixMilli()
		for _, k := range klines {
			ms := k.StartTime.UnixMilli()
			if ms < oldest {
				oldest = ms
			}
			if ms >= startMs && ms <= endMs {
				byStart[ms] = k
			}
		}

		c.logger.Debug("kline page",
			zap.String("symbol", params.Symbol),
			zap.Int("page", pages+1),
			zap.Int("rows", len(klines)),
			zap.Int("total", len(byStart)))

		if oldest <= startMs || len(klines) < page.Limit {
			break
		}
		page.End = time.UnixMilli(oldest - 1).UTC()
	}

	out := make([]Kline, 0, len(byStart))
	for _, k := range byStart {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})

	c.logger.Info("downloaded klines",
		zap.String("symbol", params.Symbol),
		zap.String("category", params.Category),
		zap.String("interval", string(params.Interval)),
		zap.Int("rows", len(out)))
	return out, nil
}

// GetDailyCloses downloads daily candles for the requested range
func (c *Client) GetDailyCloses(ctx context.Context, params KlineParams) ([]types.OHLCV, error) {
	params.Interval = Interval1d
	klines, err := c.GetHistoricalKlines(ctx, params)
	if err != nil {
		return nil, err
	}

	rows := make([]types.OHLCV, len(klines))
	for i, k := range klines {
		rows[i] = k.ToOHLCV()
	}
	return rows, nil
}

// parseKlineResponse parses the API response into Kline structs
func parseKlineResponse(response interface{}) ([]Kline, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return nil, fmt.Errorf("invalid response type %T", response)
	}
	if err := ParseAPIError(serverResp.RetCode, serverResp.RetMsg); err != nil {
		return nil, err
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	var klineResult struct {
		Symbol   string     `json:"symbol"`
		Category string     `json:"category"`
		List     [][]string `json:"list"`
	}
	if err := json.Unmarshal(resultBytes, &klineResult); err != nil {
		return nil, fmt.Errorf("failed to unmarshal kline result: %w", err)
	}

	klines := make([]Kline, 0, len(klineResult.List))
	for _, item := range klineResult.List {
		if len(item) < 7 {
			return nil, fmt.Errorf("kline row has %d fields, want 7", len(item))
		}
		k, err := parseKlineRow(item)
		if err != nil {
			return nil, err
		}
		klines = append(klines, k)
	}
	return klines, nil
}

// parseKlineRow reads [startTime, open, high, low, close, volume, turnover]
func parseKlineRow(item []string) (Kline, error) {
	startMs, err := strconv.ParseInt(item[0], 10, 64)
	if err != nil {
		return Kline{}, fmt.Errorf("invalid kline start time %q: %w", item[0], err)
	}

	values := make([]float64, 6)
	for i := range values {
		v, err := strconv.ParseFloat(item[i+1], 64)
		if err != nil {
			return Kline{}, fmt.Errorf("invalid kline field %q: %w", item[i+1], err)
		}
		values[i] = v
	}

	return Kline{
		StartTime:  time.UnixMilli(startMs).UTC(),
		OpenPrice:  values[0],
		HighPrice:  values[1],
		LowPrice:   values[2],
		ClosePrice: values[3],
		Volume:     values[4],
		Turnover:   values[5],
	}, nil
}
