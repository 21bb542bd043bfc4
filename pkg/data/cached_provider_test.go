package data

import (
	"errors"
	"testing"
	"time"

	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	calls int
	rows  []types.OHLCV
	err   error
}

func (p *countingProvider) LoadData(string) ([]types.OHLCV, error) {
	p.calls++
	return p.rows, p.err
}

func (p *countingProvider) ValidateData(data []types.OHLCV) error { return ValidateQuality(data) }

func (p *countingProvider) GetName() string { return "Counting" }

// TestMemoryCache tests copy-on-read and copy-on-write semantics
func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()
	rows := []types.OHLCV{candle(0, 1)}
	c.Set("a", rows)
	rows[0].Close = 99

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1.0, got[0].Close)

	got[0].Close = 42
	again, _ := c.Get("a")
	assert.Equal(t, 1.0, again[0].Close)

	assert.Equal(t, 1, c.Size())
	c.Clear()
	assert.Equal(t, 0, c.Size())
	_, ok = c.Get("a")
	assert.False(t, ok)
}

// TestMemoryCache_Expiration tests that entries expire
func TestMemoryCache_Expiration(t *testing.T) {
	c := NewMemoryCacheWithExpiration(10*time.Millisecond, time.Minute)
	c.Set("a", []types.OHLCV{candle(0, 1)})
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get("a")
	assert.False(t, ok)
}

// TestCachedProvider_LoadData tests that the underlying provider is hit once
func TestCachedProvider_LoadData(t *testing.T) {
	inner := &countingProvider{rows: []types.OHLCV{candle(0, 1), candle(1, 2)}}
	p := NewCachedProvider(inner, nil)

	for i := 0; i < 3; i++ {
		rows, err := p.LoadData("btc.csv")
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	}
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, p.GetCacheSize())
	assert.Equal(t, "Cached Counting", p.GetName())

	p.ClearCache()
	_, err := p.LoadData("btc.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

// TestCachedProvider_ErrorNotCached tests that failures are not cached
func TestCachedProvider_ErrorNotCached(t *testing.T) {
	inner := &countingProvider{err: errors.New("disk gone")}
	p := NewCachedProvider(inner, nil)

	_, err := p.LoadData("btc.csv")
	assert.Error(t, err)
	assert.Equal(t, 0, p.GetCacheSize())
}
