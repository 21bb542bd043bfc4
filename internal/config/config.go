package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ducminhle1904/crypto-momentum-backtest/internal/backtest"
	bterrors "github.com/ducminhle1904/crypto-momentum-backtest/internal/errors"
	"github.com/ducminhle1904/crypto-momentum-backtest/internal/logger"
	"github.com/ducminhle1904/crypto-momentum-backtest/internal/regime"
	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/data"
	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/reporting"
	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/validation"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DateLayout is the layout of every date field in the config
const DateLayout = "2006-01-02"

// EvaluationConfig is the complete configuration of one evaluation run
type EvaluationConfig struct {
	// Market data
	Symbol           string  `yaml:"symbol" json:"symbol" validate:"required"`
	Interval         string  `yaml:"interval" json:"interval" validate:"required"`
	DataFile         string  `yaml:"data_file" json:"data_file"`
	DataRoot         string  `yaml:"data_root" json:"data_root"`
	Start            string  `yaml:"start" json:"start" validate:"omitempty,datetime=2006-01-02"`
	End              string  `yaml:"end" json:"end" validate:"omitempty,datetime=2006-01-02"`
	Period           string  `yaml:"period" json:"period"`
	OutlierThreshold float64 `yaml:"outlier_threshold" json:"outlier_threshold" validate:"gt=0"`

	// Train/test split
	SplitDate      string `yaml:"split_date" json:"split_date" validate:"required,datetime=2006-01-02"`
	SplitInclusive bool   `yaml:"split_inclusive" json:"split_inclusive"`

	Backtest BacktestSection `yaml:"backtest" json:"backtest"`
	Signal   SignalSection   `yaml:"signal" json:"signal"`
	Regime   RegimeSection   `yaml:"regime" json:"regime"`
	Exchange ExchangeSection `yaml:"exchange" json:"exchange"`
	Report   ReportSection   `yaml:"report" json:"report"`
	Log      LogSection      `yaml:"log" json:"log"`
}

// BacktestSection holds cost and annualization settings
type BacktestSection struct {
	FeeBps        float64 `yaml:"fee_bps" json:"fee_bps" validate:"gte=0"`
	SlipBps       float64 `yaml:"slip_bps" json:"slip_bps" validate:"gte=0"`
	RiskFreeRate  float64 `yaml:"risk_free_rate" json:"risk_free_rate"`
	Annualization float64 `yaml:"annualization" json:"annualization" validate:"gt=0"`
}

// SignalSection holds the momentum/volatility policy windows
type SignalSection struct {
	MomentumWindow   int `yaml:"momentum_window" json:"momentum_window" validate:"min=1"`
	VolatilityWindow int `yaml:"volatility_window" json:"volatility_window" validate:"min=2"`
}

// RegimeSection holds the moving-average regime detector settings
type RegimeSection struct {
	MAWindow        int  `yaml:"ma_window" json:"ma_window" validate:"min=1"`
	UndefinedAsBear bool `yaml:"undefined_as_bear" json:"undefined_as_bear"`
}

// ExchangeSection holds the kline download settings
type ExchangeSection struct {
	Name              string  `yaml:"name" json:"name" validate:"oneof=bybit"`
	Category          string  `yaml:"category" json:"category" validate:"oneof=spot linear inverse"`
	Testnet           bool    `yaml:"testnet" json:"testnet"`
	Demo              bool    `yaml:"demo" json:"demo"`
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second" validate:"gt=0"`
	APIKey            string  `yaml:"-" json:"-"`
	APISecret         string  `yaml:"-" json:"-"`
}

// ReportSection selects outputs
type ReportSection struct {
	OutputDir   string `yaml:"output_dir" json:"output_dir"`
	Console     bool   `yaml:"console" json:"console"`
	XLSX        bool   `yaml:"xlsx" json:"xlsx"`
	CSV         bool   `yaml:"csv" json:"csv"`
	Parquet     bool   `yaml:"parquet" json:"parquet"`
	JSON        bool   `yaml:"json" json:"json"`
	MetricsFile string `yaml:"metrics_file" json:"metrics_file"`
	MetricsAddr string `yaml:"metrics_addr" json:"metrics_addr" validate:"omitempty,hostname_port"`
}

// LogSection configures the zap logger
type LogSection struct {
	Level    string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Encoding string `yaml:"encoding" json:"encoding" validate:"oneof=console json"`
	Dir      string `yaml:"dir" json:"dir"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadFile reads a YAML file over the current values of c. Unknown keys are errors.
func (c *EvaluationConfig) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return bterrors.WrapError(err, bterrors.ErrorCategoryConfiguration, "config", "load_file")
	}
	return c.Decode(bytes.NewReader(raw))
}

// Decode reads YAML from r over the current values of c
func (c *EvaluationConfig) Decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !stderrors.Is(err, io.EOF) {
		return bterrors.NewConfigurationError("config", "decode", fmt.Sprintf("invalid YAML: %v", err))
	}
	return nil
}

// Save writes c as YAML to path
func (c *EvaluationConfig) Save(path string) error {
	raw, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, raw, 0644)
}

// Validate checks every field constraint and the period syntax
func (c *EvaluationConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s fails %q", fe.Namespace(), fieldRule(fe)))
			}
			return bterrors.NewConfigurationError("config", "validate", strings.Join(msgs, "; "))
		}
		return bterrors.WrapError(err, bterrors.ErrorCategoryConfiguration, "config", "validate")
	}
	if c.Period != "" {
		if _, ok := data.ParseTrailingPeriod(c.Period); !ok {
			return bterrors.NewConfigurationError("config", "validate", fmt.Sprintf("invalid period %q", c.Period))
		}
	}
	if c.Start != "" && c.End != "" && c.Start > c.End {
		return bterrors.NewConfigurationError("config", "validate", fmt.Sprintf("start %s is after end %s", c.Start, c.End))
	}
	return nil
}

func fieldRule(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// SplitTime parses SplitDate as midnight UTC
func (c *EvaluationConfig) SplitTime() (time.Time, error) {
	return parseDate("split_date", c.SplitDate)
}

// ToBacktestConfig converts the backtest section
func (c *EvaluationConfig) ToBacktestConfig() backtest.Config {
	return backtest.NewConfig(
		backtest.WithFees(c.Backtest.FeeBps, c.Backtest.SlipBps),
		backtest.WithRiskFreeRate(c.Backtest.RiskFreeRate),
		backtest.WithAnnualization(c.Backtest.Annualization),
	)
}

// ToEvaluatorConfig converts the split, backtest and regime settings
func (c *EvaluationConfig) ToEvaluatorConfig() (validation.EvaluatorConfig, error) {
	cutoff, err := c.SplitTime()
	if err != nil {
		return validation.EvaluatorConfig{}, err
	}
	return validation.EvaluatorConfig{
		Backtest:       c.ToBacktestConfig(),
		Cutoff:         cutoff,
		SplitInclusive: c.SplitInclusive,
		Regime: regime.RegimeConfig{
			MAWindow:        c.Regime.MAWindow,
			UndefinedAsBear: c.Regime.UndefinedAsBear,
		},
	}, nil
}

// ToLoadOptions converts the date filters and the outlier threshold
func (c *EvaluationConfig) ToLoadOptions() (data.LoadOptions, error) {
	opts := data.LoadOptions{OutlierThreshold: c.OutlierThreshold}
	var err error
	if c.Start != "" {
		if opts.Start, err = parseDate("start", c.Start); err != nil {
			return opts, err
		}
	}
	if c.End != "" {
		if opts.End, err = parseDate("end", c.End); err != nil {
			return opts, err
		}
	}
	if c.Period != "" {
		period, ok := data.ParseTrailingPeriod(c.Period)
		if !ok {
			return opts, bterrors.NewConfigurationError("config", "load_options", fmt.Sprintf("invalid period %q", c.Period))
		}
		opts.Period = period
	}
	return opts, nil
}

// ToLoggerOptions converts the log section
func (c *EvaluationConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Level:    c.Log.Level,
		Encoding: c.Log.Encoding,
		LogDir:   c.Log.Dir,
		Symbol:   c.Symbol,
		Interval: c.Interval,
	}
}

// ToReportingConfig converts the report section
func (c *EvaluationConfig) ToReportingConfig() reporting.ReportingConfig {
	return reporting.ReportingConfig{
		EnableConsole:   c.Report.Console,
		OutputDirectory: c.Report.OutputDir,
		ExcelEnabled:    c.Report.XLSX,
		CSVEnabled:      c.Report.CSV,
		ParquetEnabled:  c.Report.Parquet,
		JSONEnabled:     c.Report.JSON,
	}
}

// ResolveDataFile returns DataFile, or the file found under DataRoot for the symbol and interval
func (c *EvaluationConfig) ResolveDataFile(locator data.FileLocator) string {
	if c.DataFile != "" {
		return c.DataFile
	}
	return locator.FindDataFile(c.DataRoot, c.Exchange.Name, c.Symbol, c.Interval)
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, bterrors.NewConfigurationError("config", "parse_date", fmt.Sprintf("%s: %q is not YYYY-MM-DD", field, value))
	}
	return t, nil
}

// Load builds a config from the defaults, then the YAML file at configPath
// (skipped when empty), then the environment after loading envPath.
// Flags are applied by the caller, which must call Validate afterwards.
func Load(configPath, envPath string) (*EvaluationConfig, error) {
	cfg := DefaultEvaluationConfig()
	if configPath != "" {
		if err := cfg.LoadFile(configPath); err != nil {
			return nil, err
		}
	}
	if err := LoadEnvFile(envPath); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}
