package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	bterrors "github.com/ducminhle1904/crypto-momentum-backtest/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func assertConfigError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var be *bterrors.BacktestError
	require.True(t, stderrors.As(err, &be), "expected BacktestError, got %T", err)
	assert.Equal(t, bterrors.ErrorCategoryConfiguration, be.Category)
}

// TestDefaultEvaluationConfig tests that the defaults are valid and match the reference run
func TestDefaultEvaluationConfig(t *testing.T) {
	cfg := DefaultEvaluationConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "BTCUSDT", cfg.Symbol)
	assert.Equal(t, 10.0, cfg.Backtest.FeeBps)
	assert.Equal(t, 5.0, cfg.Backtest.SlipBps)
	assert.Equal(t, 365.0, cfg.Backtest.Annualization)
	assert.Equal(t, 200, cfg.Regime.MAWindow)
	assert.True(t, cfg.SplitInclusive)

	noCost := NoCostEvaluationConfig()
	assert.Zero(t, noCost.ToBacktestConfig().CostRate())
}

// TestLoadFile tests that YAML overrides only the keys it names
func TestLoadFile(t *testing.T) {
	path := writeFile(t, "eval.yaml", `
symbol: ETHUSDT
split_date: "2023-07-01"
split_inclusive: false
backtest:
  fee_bps: 4
signal:
  momentum_window: 20
regime:
  ma_window: 100
  undefined_as_bear: true
report:
  xlsx: true
`)
	cfg := DefaultEvaluationConfig()
	require.NoError(t, cfg.LoadFile(path))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "ETHUSDT", cfg.Symbol)
	assert.Equal(t, 4.0, cfg.Backtest.FeeBps)
	assert.Equal(t, 5.0, cfg.Backtest.SlipBps)
	assert.Equal(t, 20, cfg.Signal.MomentumWindow)
	assert.Equal(t, 10, cfg.Signal.VolatilityWindow)
	assert.False(t, cfg.SplitInclusive)
	assert.True(t, cfg.Report.XLSX)
	assert.True(t, cfg.Report.Console)

	evalCfg, err := cfg.ToEvaluatorConfig()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC), evalCfg.Cutoff)
	assert.False(t, evalCfg.SplitInclusive)
	assert.Equal(t, 100, evalCfg.Regime.MAWindow)
	assert.True(t, evalCfg.Regime.UndefinedAsBear)
	assert.InDelta(t, 9.0/1e4, evalCfg.Backtest.CostRate(), 1e-15)
}

// TestLoadFile_Errors tests unknown keys, bad YAML and a missing file
func TestLoadFile_Errors(t *testing.T) {
	cfg := DefaultEvaluationConfig()
	assertConfigError(t, cfg.LoadFile(writeFile(t, "unknown.yaml", "fees: 3\n")))
	assertConfigError(t, cfg.LoadFile(writeFile(t, "bad.yaml", "backtest: [1, 2\n")))
	assertConfigError(t, cfg.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))
}

// TestDecode_Empty tests that an empty document leaves the defaults untouched
func TestDecode_Empty(t *testing.T) {
	cfg := DefaultEvaluationConfig()
	require.NoError(t, cfg.Decode(strings.NewReader("")))
	assert.Equal(t, DefaultEvaluationConfig(), cfg)
}

// TestValidate tests the field constraints
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *EvaluationConfig)
	}{
		{"negative fee", func(c *EvaluationConfig) { c.Backtest.FeeBps = -1 }},
		{"negative slippage", func(c *EvaluationConfig) { c.Backtest.SlipBps = -0.5 }},
		{"zero annualization", func(c *EvaluationConfig) { c.Backtest.Annualization = 0 }},
		{"zero momentum window", func(c *EvaluationConfig) { c.Signal.MomentumWindow = 0 }},
		{"volatility window of one", func(c *EvaluationConfig) { c.Signal.VolatilityWindow = 1 }},
		{"zero MA window", func(c *EvaluationConfig) { c.Regime.MAWindow = 0 }},
		{"bad split date", func(c *EvaluationConfig) { c.SplitDate = "01/01/2024" }},
		{"missing symbol", func(c *EvaluationConfig) { c.Symbol = "" }},
		{"bad log level", func(c *EvaluationConfig) { c.Log.Level = "verbose" }},
		{"bad category", func(c *EvaluationConfig) { c.Exchange.Category = "options" }},
		{"bad metrics address", func(c *EvaluationConfig) { c.Report.MetricsAddr = "not an address" }},
		{"bad period", func(c *EvaluationConfig) { c.Period = "forever" }},
		{"start after end", func(c *EvaluationConfig) { c.Start, c.End = "2024-02-01", "2024-01-01" }},
		{"zero outlier threshold", func(c *EvaluationConfig) { c.OutlierThreshold = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultEvaluationConfig()
			tt.mutate(cfg)
			assertConfigError(t, cfg.Validate())
		})
	}
}

// TestApplyEnv tests the environment overrides
func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvFeeBps, "2.5")
	t.Setenv(EnvSlipBps, "1")
	t.Setenv(EnvRiskFreeRate, "0.04")
	t.Setenv(EnvAnnualization, "252")
	t.Setenv(EnvSplitDate, "2022-06-30")
	t.Setenv(EnvDataFile, "prices.csv")
	t.Setenv(EnvSymbol, "SOLUSDT")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvBybitTestnet, "true")

	cfg := DefaultEvaluationConfig()
	require.NoError(t, cfg.ApplyEnv())
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 2.5, cfg.Backtest.FeeBps)
	assert.Equal(t, 1.0, cfg.Backtest.SlipBps)
	assert.Equal(t, 0.04, cfg.Backtest.RiskFreeRate)
	assert.Equal(t, 252.0, cfg.Backtest.Annualization)
	assert.Equal(t, "2022-06-30", cfg.SplitDate)
	assert.Equal(t, "prices.csv", cfg.DataFile)
	assert.Equal(t, "SOLUSDT", cfg.Symbol)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Exchange.Testnet)
}

// TestApplyEnv_Invalid tests that unparsable values are config errors
func TestApplyEnv_Invalid(t *testing.T) {
	t.Setenv(EnvFeeBps, "ten")
	assertConfigError(t, DefaultEvaluationConfig().ApplyEnv())
}

// TestLoad tests defaults, then file, then .env in order
func TestLoad(t *testing.T) {
	t.Setenv(EnvSymbol, "")
	configPath := writeFile(t, "eval.yaml", "symbol: ETHUSDT\nbacktest:\n  fee_bps: 7\n")
	envPath := writeFile(t, ".env", "BACKTEST_FEE_BPS=3\n")
	t.Cleanup(func() { os.Unsetenv(EnvFeeBps) })

	cfg, err := Load(configPath, envPath)
	require.NoError(t, err)
	assert.Equal(t, "ETHUSDT", cfg.Symbol)
	assert.Equal(t, 3.0, cfg.Backtest.FeeBps)
}

// TestLoad_MissingEnvFile tests that an absent .env is ignored
func TestLoad_MissingEnvFile(t *testing.T) {
	cfg, err := Load("", filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
}

// TestToLoadOptions tests date filters and trailing periods
func TestToLoadOptions(t *testing.T) {
	cfg := DefaultEvaluationConfig()
	cfg.Start = "2021-01-01"
	cfg.End = "2024-06-30"
	cfg.Period = "90d"

	opts, err := cfg.ToLoadOptions()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), opts.Start)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), opts.End)
	assert.Equal(t, 90*24*time.Hour, opts.Period)
	assert.Equal(t, 1.0, opts.OutlierThreshold)
}

// TestSave tests that a saved config loads back identically
func TestSave(t *testing.T) {
	cfg := DefaultEvaluationConfig()
	cfg.Symbol = "ADAUSDT"
	cfg.Report.Parquet = true
	path := filepath.Join(t.TempDir(), "nested", "eval.yaml")
	require.NoError(t, cfg.Save(path))

	loaded := DefaultEvaluationConfig()
	require.NoError(t, loaded.LoadFile(path))
	assert.Equal(t, cfg, loaded)
}

// TestConverters tests the logger and reporting conversions
func TestConverters(t *testing.T) {
	cfg := DefaultEvaluationConfig()
	cfg.Log.Dir = "logs"
	cfg.Report.OutputDir = "out"
	cfg.Report.CSV = true

	logOpts := cfg.ToLoggerOptions()
	assert.Equal(t, "logs", logOpts.LogDir)
	assert.Equal(t, "BTCUSDT", logOpts.Symbol)

	rc := cfg.ToReportingConfig()
	assert.Equal(t, "out", rc.OutputDirectory)
	assert.True(t, rc.CSVEnabled)
	assert.True(t, rc.JSONEnabled)
	assert.False(t, rc.ExcelEnabled)
}

// TestExampleConfig tests that the shipped example loads and matches the defaults
func TestExampleConfig(t *testing.T) {
	cfg := DefaultEvaluationConfig()
	require.NoError(t, cfg.LoadFile(filepath.Join("..", "..", "configs", "evaluation.example.yaml")))
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultEvaluationConfig(), cfg)
}
