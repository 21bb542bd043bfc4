package data

import (
	"path/filepath"
	"time"

	"github.com/ducminhle1904/crypto-momentum-backtest/internal/logger"
	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/types"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	DefaultCacheExpiration = 30 * time.Minute
	DefaultCacheCleanup    = 10 * time.Minute
)

// MemoryCache implements DataCache on top of go-cache
type MemoryCache struct {
	internal *cache.Cache
}

// NewMemoryCache creates a new in-memory cache with the default expiration
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithExpiration(DefaultCacheExpiration, DefaultCacheCleanup)
}

// NewMemoryCacheWithExpiration creates a cache whose entries expire after expiration
func NewMemoryCacheWithExpiration(expiration, cleanup time.Duration) *MemoryCache {
	return &MemoryCache{
		internal: cache.New(expiration, cleanup),
	}
}

// Get retrieves a copy of cached data if available
func (c *MemoryCache) Get(key string) ([]types.OHLCV, bool) {
	val, found := c.internal.Get(key)
	if !found {
		return nil, false
	}
	data, ok := val.([]types.OHLCV)
	if !ok {
		return nil, false
	}

	result := make([]types.OHLCV, len(data))
	copy(result, data)
	return result, true
}

// Set stores a copy of data
func (c *MemoryCache) Set(key string, data []types.OHLCV) {
	cached := make([]types.OHLCV, len(data))
	copy(cached, data)
	c.internal.SetDefault(key, cached)
}

// Clear removes all cached data
func (c *MemoryCache) Clear() {
	c.internal.Flush()
}

// Size returns the number of cached entries
func (c *MemoryCache) Size() int {
	return c.internal.ItemCount()
}

// CachedProvider wraps another DataProvider with caching functionality
type CachedProvider struct {
	provider DataProvider
	cache    DataCache
	logger   *logger.Logger
}

// NewCachedProvider creates a new cached data provider
func NewCachedProvider(provider DataProvider, log *logger.Logger) *CachedProvider {
	return NewCachedProviderWithCache(provider, NewMemoryCache(), log)
}

// NewCachedProviderWithCache creates a new cached data provider with custom cache
func NewCachedProviderWithCache(provider DataProvider, cache DataCache, log *logger.Logger) *CachedProvider {
	if log == nil {
		log = logger.NewNop()
	}
	return &CachedProvider{
		provider: provider,
		cache:    cache,
		logger:   log,
	}
}

// GetName returns the name of the underlying provider with cache indication
func (p *CachedProvider) GetName() string {
	return "Cached " + p.provider.GetName()
}

// LoadData loads data with caching
func (p *CachedProvider) LoadData(source string) ([]types.OHLCV, error) {
	if cachedData, exists := p.cache.Get(source); exists {
		p.logger.Debug("data cache hit", zap.String("file", filepath.Base(source)))
		return cachedData, nil
	}

	data, err := p.provider.LoadData(source)
	if err != nil {
		p.logger.Error("failed to load data", zap.String("file", filepath.Base(source)), zap.Error(err))
		return nil, err
	}

	p.cache.Set(source, data)

	p.logger.Info("loaded and cached data",
		zap.String("file", filepath.Base(source)),
		zap.String("provider", p.provider.GetName()),
		zap.Int("rows", len(data)))
	return data, nil
}

// ValidateData validates data using the underlying provider
func (p *CachedProvider) ValidateData(data []types.OHLCV) error {
	return p.provider.ValidateData(data)
}

// ClearCache clears all cached data
func (p *CachedProvider) ClearCache() {
	p.cache.Clear()
}

// GetCacheSize returns the number of cached entries
func (p *CachedProvider) GetCacheSize() int {
	return p.cache.Size()
}
