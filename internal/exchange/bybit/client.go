package bybit

import (
	"context"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
	"github.com/ducminhle1904/crypto-momentum-backtest/internal/logger"
	"golang.org/x/time/rate"
)

// KlineSource performs one raw market kline request
type KlineSource interface {
	GetMarketKline(ctx context.Context, params map[string]interface{}) (interface{}, error)
}

// sdkKlineSource calls the public kline endpoint through the Bybit SDK
type sdkKlineSource struct {
	httpClient *bybit_api.Client
}

func (s *sdkKlineSource) GetMarketKline(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	return s.httpClient.NewUtaBybitServiceWithParams(params).GetMarketKline(ctx)
}

// Client wraps the Bybit API client with rate limiting and retries
type Client struct {
	source  KlineSource
	limiter *rate.Limiter
	retry   RetryConfig
	logger  *logger.Logger
	testnet bool
	demo    bool
}

// Config holds the configuration for the Bybit client. Market data is
// public, so the key pair may be empty.
type Config struct {
	APIKey            string
	APISecret         string
	Testnet           bool
	Demo              bool
	RequestsPerSecond float64
	Burst             int
	Retry             RetryConfig
}

// DefaultConfig returns mainnet settings paced at two requests per second
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 2,
		Burst:             1,
		Retry:             DefaultRetryConfig(),
	}
}

// NewClient creates a new Bybit client
func NewClient(config Config, log *logger.Logger) *Client {
	var baseURL string
	if config.Demo {
		baseURL = "https://api-demo.bybit.com"
	} else if config.Testnet {
		baseURL = bybit_api.TESTNET
	} else {
		baseURL = bybit_api.MAINNET
	}

	httpClient := bybit_api.NewBybitHttpClient(
		config.APIKey,
		config.APISecret,
		bybit_api.WithBaseURL(baseURL),
	)

	return NewClientWithSource(config, &sdkKlineSource{httpClient: httpClient}, log)
}

// NewClientWithSource creates a client on top of a custom kline source
func NewClientWithSource(config Config, source KlineSource, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	rps := config.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultConfig().RequestsPerSecond
	}
	burst := config.Burst
	if burst <= 0 {
		burst = 1
	}
	retry := config.Retry
	if retry.InitialInterval <= 0 {
		retry = DefaultRetryConfig()
	}

	return &Client{
		source:  source,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		retry:   retry,
		logger:  log.Named("bybit"),
		testnet: config.Testnet,
		demo:    config.Demo,
	}
}

// GetEnvironment returns a string describing the current environment
func (c *Client) GetEnvironment() string {
	if c.demo {
		return "demo"
	} else if c.testnet {
		return "testnet"
	}
	return "mainnet"
}

// wait blocks until the limiter admits one more request
func (c *Client) wait(ctx context.Context) error {
	return c.limiter.Wait(ctx)
}
