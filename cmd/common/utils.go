package common

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ducminhle1904/crypto-momentum-backtest/internal/config"
	bterrors "github.com/ducminhle1904/crypto-momentum-backtest/internal/errors"
	"github.com/ducminhle1904/crypto-momentum-backtest/internal/logger"
	"go.uber.org/zap"
)

// Exit codes
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitConfig  = 2
)

// LoadConfig runs the defaults -> YAML -> .env -> flags chain and validates the result.
// applyFlags is called after the environment so that flags win.
func LoadConfig(common *CommonFlags, applyFlags func(cfg *config.EvaluationConfig)) (*config.EvaluationConfig, error) {
	cfg, err := config.Load(*common.ConfigFile, *common.EnvFile)
	if err != nil {
		return nil, err
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogger builds the zap logger described by cfg
func SetupLogger(cfg *config.EvaluationConfig) (*logger.Logger, error) {
	return logger.NewLogger(cfg.ToLoggerOptions())
}

// SignalContext is canceled on SIGINT or SIGTERM
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// ExitCode maps an error to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var be *bterrors.BacktestError
	if stderrors.As(err, &be) && be.Category == bterrors.ErrorCategoryConfiguration {
		return ExitConfig
	}
	return ExitFailure
}

// Fatal logs err and exits with its exit code. A nil logger prints to stderr.
func Fatal(log *logger.Logger, msg string, err error) {
	if log != nil {
		log.Error(msg, zap.Error(err))
		_ = log.Sync()
	} else {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	}
	os.Exit(ExitCode(err))
}
