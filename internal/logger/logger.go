package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps the zap logger used across evaluation runs
type Logger struct {
	*zap.Logger
}

// Options controls logger construction
type Options struct {
	Level    string // debug, info, warn, error
	Encoding string // json or console
	LogDir   string // when set, also write to <LogDir>/<SYMBOL>_<interval>_<date>.log
	Symbol   string
	Interval string
}

// DefaultOptions returns console logging at info level without a log file
func DefaultOptions() Options {
	return Options{
		Level:    "info",
		Encoding: "console",
	}
}

// NewLogger creates a new logger instance from opts
func NewLogger(opts Options) (*Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	config := zap.NewProductionConfig()
	if opts.Encoding == "console" {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	if opts.LogDir != "" {
		path, err := logFilePath(opts)
		if err != nil {
			return nil, err
		}
		config.OutputPaths = append(config.OutputPaths, path)
	}

	zapLogger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	if opts.Symbol != "" {
		zapLogger = zapLogger.With(zap.String("symbol", opts.Symbol))
	}

	return &Logger{
		Logger: zapLogger,
	}, nil
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Named returns a child logger for a component
func (l *Logger) Named(component string) *Logger {
	if l == nil || l.Logger == nil {
		return NewNop()
	}
	return &Logger{Logger: l.Logger.Named(component)}
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	if l.Logger != nil {
		return l.Logger.Sync()
	}
	return nil
}

// ParseLevel maps a level name to a zap level. Empty means info.
func ParseLevel(name string) (zapcore.Level, error) {
	if name == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

func logFilePath(opts Options) (string, error) {
	if err := os.MkdirAll(opts.LogDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	symbol := opts.Symbol
	if symbol == "" {
		symbol = "backtest"
	}
	interval := opts.Interval
	if interval == "" {
		interval = "D"
	}

	filename := fmt.Sprintf("%s_%s_%s.log", symbol, interval, time.Now().Format("2006-01-02"))
	return filepath.Join(opts.LogDir, filename), nil
}
