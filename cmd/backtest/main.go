package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/ducminhle1904/crypto-momentum-backtest/cmd/common"
	"github.com/ducminhle1904/crypto-momentum-backtest/internal/config"
	bterrors "github.com/ducminhle1904/crypto-momentum-backtest/internal/errors"
	"github.com/ducminhle1904/crypto-momentum-backtest/internal/logger"
	"github.com/ducminhle1904/crypto-momentum-backtest/internal/monitoring"
	"github.com/ducminhle1904/crypto-momentum-backtest/internal/strategy"
	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/data"
	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/reporting"
	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/validation"
	"go.uber.org/zap"
)

const appName = "backtest"

func main() {
	fs := flag.NewFlagSet(appName, flag.ExitOnError)
	commonFlags := common.RegisterCommonFlags(fs)
	marketFlags := common.RegisterMarketFlags(fs)
	evalFlags := common.RegisterEvaluationFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags]\n\nEvaluates the momentum/volatility policy against buy-and-hold on a train/test split and by market regime.\n\n", appName)
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
		common.ApplyEvaluation(fs, evalFlags, cfg)
	})
	if err != nil {
		common.Fatal(nil, "invalid configuration", err)
	}

	if path := *commonFlags.WriteConfig; path != "" {
		if err := cfg.Save(path); err != nil {
			common.Fatal(nil, "failed to write config", err)
		}
		fmt.Printf("Config written to %s\n", path)
		return
	}

	log, err := common.SetupLogger(cfg)
	if err != nil {
		common.Fatal(nil, "failed to create logger", err)
	}
	defer log.Sync()

	ctx, stop := common.SignalContext()
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		common.Fatal(log, "evaluation failed", err)
	}
}

func run(ctx context.Context, cfg *config.EvaluationConfig, log *logger.Logger) error {
	recorder := monitoring.NewRecorder(cfg.Symbol)
	health := monitoring.NewHealthChecker()

	started := time.Now()
	report, meta, err := evaluate(ctx, cfg, log)
	if err != nil {
		recorder.RecordError(string(bterrors.CategorizeError(err, appName, "evaluate").Category))
		health.MarkFailed(err)
		writeMetrics(cfg, recorder, log)
		return err
	}
	recorder.ObserveDuration(time.Since(started))
	recorder.RecordReport(report)
	health.MarkEvaluated(report.Strategy)

	manager := reporting.NewReportingManager(reporting.NewDefaultReporter(), cfg.ToReportingConfig())
	written, err := manager.Generate(report, meta)
	for _, path := range written {
		log.Info("report written", zap.String("path", path))
	}
	if err != nil {
		return fmt.Errorf("failed to write reports: %w", err)
	}

	writeMetrics(cfg, recorder, log)

	if cfg.Report.MetricsAddr != "" {
		return serve(ctx, cfg.Report.MetricsAddr, monitoring.NewServeMux(recorder, health), log)
	}
	return nil
}

// evaluate loads the price series and runs the full evaluation
func evaluate(ctx context.Context, cfg *config.EvaluationConfig, log *logger.Logger) (*validation.EvaluationReport, reporting.ReportMeta, error) {
	meta := reporting.ReportMeta{Symbol: cfg.Symbol, Interval: cfg.Interval}

	path := cfg.ResolveDataFile(data.NewDefaultFileLocator())
	if path == "" {
		return nil, meta, bterrors.NewConfigurationError(appName, "resolve_data",
			fmt.Sprintf("no data file for %s %s under %s; pass -data or run the download command", cfg.Symbol, cfg.Interval, cfg.DataRoot))
	}
	meta.Source = path

	opts, err := cfg.ToLoadOptions()
	if err != nil {
		return nil, meta, err
	}
	price, quality, err := data.NewDataManager(log).LoadPriceSeries(path, opts)
	if err != nil {
		return nil, meta, err
	}
	for _, day := range quality.OutlierDates {
		log.Warn("outlier return", zap.Time("date", day))
	}

	gen, err := strategy.NewMomentumVolatilityStrategy(cfg.Signal.MomentumWindow, cfg.Signal.VolatilityWindow)
	if err != nil {
		return nil, meta, err
	}
	evalCfg, err := cfg.ToEvaluatorConfig()
	if err != nil {
		return nil, meta, err
	}
	evaluator, err := validation.NewEvaluator(evalCfg, gen, log)
	if err != nil {
		return nil, meta, err
	}

	report, err := evaluator.Evaluate(ctx, price)
	if err != nil {
		return nil, meta, err
	}
	return report, meta, nil
}

func writeMetrics(cfg *config.EvaluationConfig, recorder *monitoring.Recorder, log *logger.Logger) {
	if cfg.Report.MetricsFile == "" {
		return
	}
	if err := recorder.WriteTextfile(cfg.Report.MetricsFile); err != nil {
		log.Error("failed to write metrics", zap.String("path", cfg.Report.MetricsFile), zap.Error(err))
		return
	}
	log.Info("metrics written", zap.String("path", cfg.Report.MetricsFile))
}

// serve exposes /metrics and /health until ctx is canceled
func serve(ctx context.Context, addr string, handler http.Handler, log *logger.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
