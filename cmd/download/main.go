package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ducminhle1904/crypto-momentum-backtest/cmd/common"
	"github.com/ducminhle1904/crypto-momentum-backtest/internal/config"
	bterrors "github.com/ducminhle1904/crypto-momentum-backtest/internal/errors"
	"github.com/ducminhle1904/crypto-momentum-backtest/internal/exchange/bybit"
	"github.com/ducminhle1904/crypto-momentum-backtest/internal/logger"
	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/data"
	"go.uber.org/zap"
)

const appName = "download"

func main() {
	fs := flag.NewFlagSet(appName, flag.ExitOnError)
	commonFlags := common.RegisterCommonFlags(fs)
	marketFlags := common.RegisterMarketFlags(fs)
	var (
		format   = fs.String("format", "csv", "Output format: csv or parquet")
		out      = fs.String("out", "", "Output file (default <data-root>/bybit/<category>/<SYMBOL>/D/candles.<format>)")
		category = fs.String("category", "", "Bybit category: spot, linear or inverse")
		testnet  = fs.Bool("testnet", false, "Use the Bybit testnet")
	)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags]\n\nDownloads daily candles from Bybit, fills calendar gaps and saves them as CSV or Parquet.\n\n", appName)
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])

	if *commonFlags.Version {
		common.PrintVersion(appName)
		return
	}

	cfg, err := common.LoadConfig(commonFlags, func(cfg *config.EvaluationConfig) {
		common.ApplyCommon(fs, commonFlags, cfg)
		common.ApplyMarket(fs, marketFlags, cfg)
		fs.Visit(func(fl *flag.Flag) {
			switch fl.Name {
			case "category":
				cfg.Exchange.Category = *category
			case "testnet":
				cfg.Exchange.Testnet = *testnet
			}
		})
	})
	if err != nil {
		common.Fatal(nil, "invalid configuration", err)
	}

	log, err := common.SetupLogger(cfg)
	if err != nil {
		common.Fatal(nil, "failed to create logger", err)
	}
	defer log.Sync()

	ctx, stop := common.SignalContext()
	defer stop()

	path := *out
	if path == "" {
		path = data.NewDefaultFileLocator().DataFilePath(cfg.DataRoot, cfg.Exchange.Name, cfg.Exchange.Category, cfg.Symbol, cfg.Interval, *format)
	}

	if err := download(ctx, cfg, path, log); err != nil {
		common.Fatal(log, "download failed", err)
	}
}

// download fetches, cleans and saves daily candles for cfg.Symbol
func download(ctx context.Context, cfg *config.EvaluationConfig, path string, log *logger.Logger) error {
	if data.NormalizeInterval(cfg.Interval) != string(bybit.Interval1d) {
		return bterrors.NewConfigurationError(appName, "download", fmt.Sprintf("only daily candles are supported, got interval %q", cfg.Interval))
	}

	params, err := klineParams(cfg, time.Now().UTC())
	if err != nil {
		return err
	}

	clientCfg := bybit.DefaultConfig()
	clientCfg.APIKey = cfg.Exchange.APIKey
	clientCfg.APISecret = cfg.Exchange.APISecret
	clientCfg.Testnet = cfg.Exchange.Testnet
	clientCfg.Demo = cfg.Exchange.Demo
	clientCfg.RequestsPerSecond = cfg.Exchange.RequestsPerSecond
	client := bybit.NewClient(clientCfg, log)

	log.Info("downloading",
		zap.String("symbol", params.Symbol),
		zap.String("category", params.Category),
		zap.String("environment", client.GetEnvironment()),
		zap.Time("start", params.Start),
		zap.Time("end", params.End))

	rows, err := client.GetDailyCloses(ctx, params)
	if err != nil {
		return err
	}

	rows = data.CleanTable(rows)
	rows, filled, _ := data.EnsureContinuousDaily(rows)
	if err := data.ValidateQuality(rows); err != nil {
		return err
	}

	if err := data.NewDataManager(log).SaveTable(path, rows); err != nil {
		return err
	}
	log.Info("saved",
		zap.String("path", path),
		zap.Int("rows", len(rows)),
		zap.Int("filled_days", filled),
		zap.Time("first", rows[0].Timestamp),
		zap.Time("last", rows[len(rows)-1].Timestamp))
	return nil
}

// klineParams turns the configured date range into request parameters. A
// trailing period wins over start; no range at all means the last year.
func klineParams(cfg *config.EvaluationConfig, now time.Time) (bybit.KlineParams, error) {
	opts, err := cfg.ToLoadOptions()
	if err != nil {
		return bybit.KlineParams{}, err
	}
	params := bybit.KlineParams{
		Category: cfg.Exchange.Category,
		Symbol:   cfg.Symbol,
		Interval: bybit.Interval1d,
		Start:    opts.Start,
		End:      now,
	}
	if !opts.End.IsZero() {
		// End is a date: include the whole day
		params.End = opts.End.AddDate(0, 0, 1).Add(-time.Millisecond)
	}
	if opts.Period > 0 {
		params.Start = params.End.Add(-opts.Period)
	}
	if !params.Start.IsZero() && !params.Start.Before(params.End) {
		return params, bterrors.NewConfigurationError(appName, "kline_params",
			fmt.Sprintf("start %s is not before end %s", params.Start.Format(time.RFC3339), params.End.Format(time.RFC3339)))
	}
	return params, nil
}
