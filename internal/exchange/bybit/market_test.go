package bybit

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
	bterrors "github.com/ducminhle1904/crypto-momentum-backtest/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var klineStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeKlineSource serves daily klines the way the kline endpoint does:
// newest first, bounded by start/end and limit.
type fakeKlineSource struct {
	mu        sync.Mutex
	days      int
	calls     int
	failFirst int
	failWith  error
	duplicate bool
	retCode   int
}

func (f *fakeKlineSource) GetMarketKline(_ context.Context, params map[string]interface{}) (interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.calls <= f.failFirst {
		return nil, f.failWith
	}
	if f.retCode != 0 {
		return &bybit_api.ServerResponse{RetCode: f.retCode, RetMsg: "params error"}, nil
	}

	start := params["start"].(int64)
	end := params["end"].(int64)
	limit := params["limit"].(int)

	var list [][]string
	for d := f.days - 1; d >= 0 && len(list) < limit; d-- {
		ts := klineStart.AddDate(0, 0, d).UnixMilli()
		if ts < start || ts > end {
			continue
		}
		price := strconv.Itoa(100 + d)
		list = append(list, []string{strconv.FormatInt(ts, 10), price, price, price, price, "1", "100"})
	}
	if f.duplicate && len(list) > 0 {
		list = append(list, list[0])
	}

	return &bybit_api.ServerResponse{
		RetCode: 0,
		RetMsg:  "OK",
		Result: map[string]interface{}{
			"symbol":   params["symbol"],
			"category": params["category"],
			"list":     list,
		},
	}, nil
}

func newTestClient(source KlineSource) *Client {
	return NewClientWithSource(Config{
		RequestsPerSecond: 1000,
		Burst:             10,
		Retry: RetryConfig{
			MaxRetries:      3,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
			MaxElapsedTime:  time.Second,
			Multiplier:      2,
		},
	}, source, nil)
}

func rangeParams(limit int) KlineParams {
	return KlineParams{
		Symbol: "BTCUSDT",
		Start:  klineStart,
		End:    klineStart.AddDate(0, 0, 9),
		Limit:  limit,
	}
}

// TestGetDailyCloses_Pagination tests paging backwards across several requests
func TestGetDailyCloses_Pagination(t *testing.T) {
	source := &fakeKlineSource{days: 10}
	rows, err := newTestClient(source).GetDailyCloses(context.Background(), rangeParams(3))
	require.NoError(t, err)

	require.Len(t, rows, 10)
	assert.Equal(t, 4, source.calls)
	for i, r := range rows {
		assert.True(t, r.Timestamp.Equal(klineStart.AddDate(0, 0, i)))
		assert.Equal(t, float64(100+i), r.Close)
		assert.Equal(t, time.UTC, r.Timestamp.Location())
	}
}

// TestGetHistoricalKlines_Dedupe tests that repeated rows collapse
func TestGetHistoricalKlines_Dedupe(t *testing.T) {
	source := &fakeKlineSource{days: 10, duplicate: true}
	klines, err := newTestClient(source).GetHistoricalKlines(context.Background(), rangeParams(1000))
	require.NoError(t, err)
	assert.Len(t, klines, 10)
}

// TestGetHistoricalKlines_RangeFilter tests that rows outside the range are dropped
func TestGetHistoricalKlines_RangeFilter(t *testing.T) {
	source := &fakeKlineSource{days: 10}
	params := rangeParams(1000)
	params.Start = klineStart.AddDate(0, 0, 2)
	params.End = klineStart.AddDate(0, 0, 4)

	klines, err := newTestClient(source).GetHistoricalKlines(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, klines, 3)
	assert.Equal(t, 102.0, klines[0].ClosePrice)

	params.End = params.Start
	_, err = newTestClient(source).GetHistoricalKlines(context.Background(), params)
	assert.Error(t, err)
}

// TestGetKlines_RetriesRateLimit tests backoff on retryable API errors
func TestGetKlines_RetriesRateLimit(t *testing.T) {
	source := &fakeKlineSource{
		days:      5,
		failFirst: 2,
		failWith:  NewBybitError(ErrCodeRateLimitExceeded, "Too many visits"),
	}
	klines, err := newTestClient(source).GetKlines(context.Background(), rangeParams(1000))
	require.NoError(t, err)
	assert.Len(t, klines, 5)
	assert.Equal(t, 3, source.calls)
}

// TestGetKlines_RetriesNetwork tests backoff on connection failures
func TestGetKlines_RetriesNetwork(t *testing.T) {
	source := &fakeKlineSource{days: 5, failFirst: 1, failWith: errors.New("dial tcp: connection refused")}
	_, err := newTestClient(source).GetKlines(context.Background(), rangeParams(1000))
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}

// TestGetKlines_GivesUp tests that retries are bounded
func TestGetKlines_GivesUp(t *testing.T) {
	source := &fakeKlineSource{days: 5, failFirst: 100, failWith: NewBybitError(ErrCodeRateLimitExceeded, "Too many visits")}
	_, err := newTestClient(source).GetKlines(context.Background(), rangeParams(1000))
	require.Error(t, err)
	assert.Equal(t, 4, source.calls)
	assert.True(t, IsRateLimitError(err))

	var be *bterrors.BacktestError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, bterrors.ErrorCategoryRateLimit, be.Category)
}

// TestGetKlines_PermanentAPIError tests that parameter errors are not retried
func TestGetKlines_PermanentAPIError(t *testing.T) {
	source := &fakeKlineSource{days: 5, retCode: ErrCodeParamsError}
	_, err := newTestClient(source).GetKlines(context.Background(), rangeParams(1000))
	require.Error(t, err)
	assert.Equal(t, 1, source.calls)

	var bybitErr *BybitError
	require.True(t, errors.As(err, &bybitErr))
	assert.Equal(t, ErrCodeParamsError, bybitErr.Code)
	assert.False(t, IsRetryableError(err))
}

// TestGetKlines_Canceled tests that a canceled context stops the request
func TestGetKlines_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &fakeKlineSource{days: 5}
	_, err := newTestClient(source).GetKlines(ctx, rangeParams(1000))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, source.calls)
}

// TestParseKlineResponse tests malformed payloads
func TestParseKlineResponse(t *testing.T) {
	_, err := parseKlineResponse("not a response")
	assert.Error(t, err)

	_, err = parseKlineResponse(&bybit_api.ServerResponse{Result: map[string]interface{}{
		"list": [][]string{{"1704067200000", "1", "1", "1", "x", "1", "1"}},
	}})
	assert.Error(t, err)

	_, err = parseKlineResponse(&bybit_api.ServerResponse{Result: map[string]interface{}{
		"list": [][]string{{"1704067200000", "1"}},
	}})
	assert.Error(t, err)
}

// TestGetEnvironment tests environment naming
func TestGetEnvironment(t *testing.T) {
	assert.Equal(t, "mainnet", newTestClient(&fakeKlineSource{}).GetEnvironment())
	assert.Equal(t, "demo", NewClientWithSource(Config{Demo: true}, &fakeKlineSource{}, nil).GetEnvironment())
	assert.Equal(t, "testnet", NewClient(Config{Testnet: true}, nil).GetEnvironment())
}

// TestGetErrorDescription tests error code lookup
func TestGetErrorDescription(t *testing.T) {
	assert.Equal(t, "Rate limit exceeded", GetErrorDescription(ErrCodeRateLimitExceeded))
	assert.Equal(t, "Unknown error code: 42", GetErrorDescription(42))
	assert.Nil(t, ParseAPIError(0, "OK"))
}
