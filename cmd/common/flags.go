package common

import (
	"flag"

	"github.com/ducminhle1904/crypto-momentum-backtest/internal/config"
)

// CommonFlags contains flags that are shared across multiple commands
type CommonFlags struct {
	EnvFile     *string
	ConfigFile  *string
	WriteConfig *string
	LogLevel    *string
	LogDir      *string
	Version     *bool
}

// RegisterCommonFlags registers common flags on fs
func RegisterCommonFlags(fs *flag.FlagSet) *CommonFlags {
	return &CommonFlags{
		EnvFile:     fs.String("env", ".env", "Environment file path"),
		ConfigFile:  fs.String("config", "", "YAML config file"),
		WriteConfig: fs.String("write-config", "", "Write the effective config to this YAML file and exit"),
		LogLevel:    fs.String("log-level", "", "Log level: debug, info, warn, error"),
		LogDir:      fs.String("log-dir", "", "Also write logs to <dir>/<SYMBOL>_<interval>_<date>.log"),
		Version:     fs.Bool("version", false, "Show version information"),
	}
}

// MarketFlags select the data a command works on
type MarketFlags struct {
	Symbol   *string
	Interval *string
	DataFile *string
	DataRoot *string
	Start    *string
	End      *string
	Period   *string
}

// RegisterMarketFlags registers data selection flags on fs
func RegisterMarketFlags(fs *flag.FlagSet) *MarketFlags {
	return &MarketFlags{
		Symbol:   fs.String("symbol", "", "Trading symbol, e.g. BTCUSDT"),
		Interval: fs.String("interval", "", "Candle interval (D for daily)"),
		DataFile: fs.String("data", "", "Price table (.csv or .parquet); defaults to the file under -data-root"),
		DataRoot: fs.String("data-root", "", "Data root directory"),
		Start:    fs.String("start", "", "First date to keep (YYYY-MM-DD)"),
		End:      fs.String("end", "", "Last date to keep (YYYY-MM-DD)"),
		Period:   fs.String("period", "", "Trailing window to keep, e.g. 365d"),
	}
}

// EvaluationFlags override the backtest, signal, split, regime and report settings
type EvaluationFlags struct {
	FeeBps          *float64
	SlipBps         *float64
	RiskFreeRate    *float64
	Annualization   *float64
	MomentumWindow  *int
	VolWindow       *int
	SplitDate       *string
	SplitExclusive  *bool
	MAWindow        *int
	UndefinedAsBear *bool
	OutputDir       *string
	NoConsole       *bool
	XLSX            *bool
	CSV             *bool
	Parquet         *bool
	JSON            *bool
	MetricsFile     *string
	MetricsAddr     *string
}

// RegisterEvaluationFlags registers evaluation flags on fs
func RegisterEvaluationFlags(fs *flag.FlagSet) *EvaluationFlags {
	return &EvaluationFlags{
		FeeBps:          fs.Float64("fee-bps", 0, "Fee per unit turnover in basis points"),
		SlipBps:         fs.Float64("slip-bps", 0, "Slippage per unit turnover in basis points"),
		RiskFreeRate:    fs.Float64("risk-free", 0, "Annual risk-free rate for Sharpe"),
		Annualization:   fs.Float64("annualization", 0, "Periods per year"),
		MomentumWindow:  fs.Int("mom-window", 0, "Momentum lookback in days"),
		VolWindow:       fs.Int("vol-window", 0, "Volatility lookback in days"),
		SplitDate:       fs.String("split-date", "", "Train/test cutoff date (YYYY-MM-DD)"),
		SplitExclusive:  fs.Bool("split-exclusive", false, "Put the cutoff row in the test partition only"),
		MAWindow:        fs.Int("ma-window", 0, "Moving-average window of the regime detector"),
		UndefinedAsBear: fs.Bool("undefined-as-bear", false, "Count warm-up days as bear instead of dropping them"),
		OutputDir:       fs.String("output", "", "Output directory (default results/<SYMBOL>_<interval>)"),
		NoConsole:       fs.Bool("no-console", false, "Do not print tables"),
		XLSX:            fs.Bool("xlsx", false, "Write report.xlsx"),
		CSV:             fs.Bool("csv", false, "Write series.csv"),
		Parquet:         fs.Bool("parquet", false, "Write series.parquet"),
		JSON:            fs.Bool("json", false, "Write summary.json"),
		MetricsFile:     fs.String("metrics-file", "", "Write Prometheus textfile metrics to this path"),
		MetricsAddr:     fs.String("metrics-addr", "", "Serve /metrics and /health on this address until interrupted"),
	}
}

// ApplyCommon copies explicitly set common flags onto cfg
func ApplyCommon(fs *flag.FlagSet, f *CommonFlags, cfg *config.EvaluationConfig) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "log-level":
			cfg.Log.Level = *f.LogLevel
		case "log-dir":
			cfg.Log.Dir = *f.LogDir
		}
	})
}

// ApplyMarket copies explicitly set market flags onto cfg
func ApplyMarket(fs *flag.FlagSet, f *MarketFlags, cfg *config.EvaluationConfig) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "symbol":
			cfg.Symbol = *f.Symbol
		case "interval":
			cfg.Interval = *f.Interval
		case "data":
			cfg.DataFile = *f.DataFile
		case "data-root":
			cfg.DataRoot = *f.DataRoot
		case "start":
			cfg.Start = *f.Start
		case "end":
			cfg.End = *f.End
		case "period":
			cfg.Period = *f.Period
		}
	})
}

// ApplyEvaluation copies explicitly set evaluation flags onto cfg. Flags
// left at their zero default never clobber file or environment values.
func ApplyEvaluation(fs *flag.FlagSet, f *EvaluationFlags, cfg *config.EvaluationConfig) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "fee-bps":
			cfg.Backtest.FeeBps = *f.FeeBps
		case "slip-bps":
			cfg.Backtest.SlipBps = *f.SlipBps
		case "risk-free":
			cfg.Backtest.RiskFreeRate = *f.RiskFreeRate
		case "annualization":
			cfg.Backtest.Annualization = *f.Annualization
		case "mom-window":
			cfg.Signal.MomentumWindow = *f.MomentumWindow
		case "vol-window":
			cfg.Signal.VolatilityWindow = *f.VolWindow
		case "split-date":
			cfg.SplitDate = *f.SplitDate
		case "split-exclusive":
			cfg.SplitInclusive = !*f.SplitExclusive
		case "ma-window":
			cfg.Regime.MAWindow = *f.MAWindow
		case "undefined-as-bear":
			cfg.Regime.UndefinedAsBear = *f.UndefinedAsBear
		case "output":
			cfg.Report.OutputDir = *f.OutputDir
		case "no-console":
			cfg.Report.Console = !*f.NoConsole
		case "xlsx":
			cfg.Report.XLSX = *f.XLSX
		case "csv":
			cfg.Report.CSV = *f.CSV
		case "parquet":
			cfg.Report.Parquet = *f.Parquet
		case "json":
			cfg.Report.JSON = *f.JSON
		case "metrics-file":
			cfg.Report.MetricsFile = *f.MetricsFile
		case "metrics-addr":
			cfg.Report.MetricsAddr = *f.MetricsAddr
		}
	})
}
