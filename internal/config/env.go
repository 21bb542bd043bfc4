package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	bterrors "github.com/ducminhle1904/crypto-momentum-backtest/internal/errors"
	"github.com/joho/godotenv"
)

// Environment keys read by ApplyEnv
const (
	EnvFeeBps        = "BACKTEST_FEE_BPS"
	EnvSlipBps       = "BACKTEST_SLIP_BPS"
	EnvRiskFreeRate  = "BACKTEST_RISK_FREE_RATE"
	EnvAnnualization = "BACKTEST_ANNUALIZATION"
	EnvSplitDate     = "BACKTEST_SPLIT_DATE"
	EnvDataFile      = "BACKTEST_DATA_FILE"
	EnvSymbol        = "BACKTEST_SYMBOL"
	EnvLogLevel      = "LOG_LEVEL"
	EnvBybitAPIKey   = "BYBIT_API_KEY"
	EnvBybitSecret   = "BYBIT_API_SECRET"
	EnvBybitTestnet  = "BYBIT_TESTNET"
)

// LoadEnvFile loads path into the process environment. A missing file is not an error.
// Variables already set in the environment win over the file.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return bterrors.WrapError(err, bterrors.ErrorCategoryConfiguration, "config", "load_env")
	}
	return nil
}

// ApplyEnv overrides c with any of the BACKTEST_* and LOG_LEVEL variables that are set
func (c *EvaluationConfig) ApplyEnv() error {
	floats := []struct {
		key string
		dst *float64
	}{
		{EnvFeeBps, &c.Backtest.FeeBps},
		{EnvSlipBps, &c.Backtest.SlipBps},
		{EnvRiskFreeRate, &c.Backtest.RiskFreeRate},
		{EnvAnnualization, &c.Backtest.Annualization},
	}
	for _, f := range floats {
		if err := getEnvFloat(f.key, f.dst); err != nil {
			return err
		}
	}

	getEnv(EnvSplitDate, &c.SplitDate)
	getEnv(EnvDataFile, &c.DataFile)
	getEnv(EnvSymbol, &c.Symbol)
	getEnv(EnvLogLevel, &c.Log.Level)
	c.Log.Level = strings.ToLower(c.Log.Level)

	getEnv(EnvBybitAPIKey, &c.Exchange.APIKey)
	getEnv(EnvBybitSecret, &c.Exchange.APISecret)
	return getEnvBool(EnvBybitTestnet, &c.Exchange.Testnet)
}

func getEnv(key string, dst *string) {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		*dst = val
	}
}

func getEnvFloat(key string, dst *float64) error {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return bterrors.NewConfigurationError("config", "apply_env", fmt.Sprintf("%s: %q is not a number", key, val))
	}
	*dst = f
	return nil
}

func getEnvBool(key string, dst *bool) error {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return bterrors.NewConfigurationError("config", "apply_env", fmt.Sprintf("%s: %q is not a boolean", key, val))
	}
	*dst = b
	return nil
}
