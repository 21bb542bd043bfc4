package validation

import (
	"context"
	"fmt"
	"time"

	"github.com/ducminhle1904/crypto-momentum-backtest/internal/backtest"
	"github.com/ducminhle1904/crypto-momentum-backtest/internal/logger"
	"github.com/ducminhle1904/crypto-momentum-backtest/internal/regime"
	"github.com/ducminhle1904/crypto-momentum-backtest/internal/strategy"
	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EvaluatorConfig holds everything an evaluation needs besides the data
type EvaluatorConfig struct {
	Backtest       backtest.Config
	Cutoff         time.Time
	SplitInclusive bool
	Regime         regime.RegimeConfig
}

// DefaultEvaluatorConfig splits at 2024-01-01 UTC with the shared cutoff row
func DefaultEvaluatorConfig() EvaluatorConfig {
	return EvaluatorConfig{
		Backtest:       backtest.DefaultConfig(),
		Cutoff:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		SplitInclusive: true,
		Regime:         regime.DefaultRegimeConfig(),
	}
}

// Evaluator runs a signal generator and the buy-and-hold baseline through
// the engine on the train, test and full periods, then breaks the strategy's
// full-period net returns down by regime.
type Evaluator struct {
	config    EvaluatorConfig
	engine    *backtest.BacktestEngine
	generator strategy.SignalGenerator
	baseline  strategy.SignalGenerator
	detector  regime.Detector
	splitter  DataSplitter
	logger    *logger.Logger
}

// NewEvaluator creates an evaluator for generator
func NewEvaluator(config EvaluatorConfig, generator strategy.SignalGenerator, log *logger.Logger) (*Evaluator, error) {
	if generator == nil {
		return nil, fmt.Errorf("signal generator is required")
	}
	engine, err := backtest.NewBacktestEngine(config.Backtest)
	if err != nil {
		return nil, err
	}
	detector, err := regime.NewMovingAverageDetector(config.Regime)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Evaluator{
		config:    config,
		engine:    engine,
		generator: generator,
		baseline:  strategy.NewBuyAndHoldStrategy(),
		detector:  detector,
		splitter:  NewDefaultDataSplitter(config.SplitInclusive),
		logger:    log.Named("evaluator"),
	}, nil
}

// SetDetector replaces the regime detector
func (e *Evaluator) SetDetector(detector regime.Detector) {
	e.detector = detector
}

// Evaluate produces the full report for price. Any failing run aborts the
// whole evaluation.
func (e *Evaluator) Evaluate(ctx context.Context, price types.Series) (*EvaluationReport, error) {
	signal, err := e.generator.Generate(price)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s signal: %w", e.generator.GetName(), err)
	}
	baseline, err := e.baseline.Generate(price)
	if err != nil {
		return nil, fmt.Errorf("failed to generate baseline signal: %w", err)
	}

	strategySplit, err := e.splitter.SplitAtDate(price, signal, e.config.Cutoff)
	if err != nil {
		return nil, err
	}
	baselineSplit, err := e.splitter.SplitAtDate(price, baseline, e.config.Cutoff)
	if err != nil {
		return nil, err
	}

	e.logger.Info("evaluating",
		zap.String("strategy", e.generator.GetName()),
		zap.Int("rows", price.Len()),
		zap.Int("train_rows", strategySplit.Train.Price.Len()),
		zap.Int("test_rows", strategySplit.Test.Price.Len()),
		zap.Time("cutoff", e.config.Cutoff))

	report := &EvaluationReport{
		Strategy:       e.generator.GetName(),
		Config:         e.engine.Config(),
		Cutoff:         e.config.Cutoff,
		SplitInclusive: e.config.SplitInclusive,
		Price:          price,
		Signal:         signal,
	}

	full := Partition{Price: price, Signal: signal}
	baselineFull := Partition{Price: price, Signal: baseline}

	jobs := []struct {
		name string
		part Partition
		dst  *RunResult
	}{
		{"Strategy Train", strategySplit.Train, &report.StrategyTrain},
		{"Strategy Test", strategySplit.Test, &report.StrategyTest},
		{"Buy & Hold Train", baselineSplit.Train, &report.BaselineTrain},
		{"Buy & Hold Test", baselineSplit.Test, &report.BaselineTest},
		{"Strategy Full", full, &report.StrategyFull},
		{"Buy & Hold Full", baselineFull, &report.BaselineFull},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results, err := e.engine.Run(job.part.Price, job.part.Signal)
			if err != nil {
				return fmt.Errorf("%s: %w", job.name, err)
			}
			*job.dst = RunResult{
				Name:    job.name,
				Start:   job.part.Start(),
				End:     job.part.End(),
				Results: results,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	mask, err := e.detector.Detect(price)
	if err != nil {
		return nil, fmt.Errorf("failed to detect regimes: %w", err)
	}
	cfg := e.engine.Config()
	breakdown, err := ComputeRegimeBreakdown(report.StrategyFull.Results.NetReturns, mask, cfg.RiskFreeRate, cfg.Annualization)
	if err != nil {
		return nil, err
	}
	report.Regimes = *breakdown
	report.BullMask = mask

	e.logger.Info("evaluation complete",
		zap.Float64("test_total_return_net", report.StrategyTest.Results.TotalReturnNet),
		zap.Float64("test_sharpe_net", report.StrategyTest.Results.SharpeNet),
		zap.Int("bull_days", breakdown.Bull.Days),
		zap.Int("bear_days", breakdown.Bear.Days))

	return report, nil
}
