package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the log file created inside the configured log directory.
const FileName = "mica-doi.log"

// ParseLevel maps "debug", "info", "warn" and "error" (any case) to a level,
// falling back to info.
func ParseLevel(logLevel string) zap.AtomicLevel {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if logLevel == "" {
		return level
	}
	if err := level.UnmarshalText([]byte(strings.ToLower(logLevel))); err != nil {
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return level
}

// FileCore writes JSON records to a size-rotated file.
func FileCore(path string, level zapcore.LevelEnabler) zapcore.Core {
	config := zap.NewProductionEncoderConfig()
	config.TimeKey = "timestamp"
	config.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewCore(
		zapcore.NewJSONEncoder(config),
		zapcore.AddSync(&lumberjack.Logger{
			Filename:   path,
			MaxSize:    100, // MB
			MaxBackups: 5,
		}),
		level,
	)
}

// ConsoleCore writes human readable records to w. Standard output carries
// command results, so callers pass standard error.
func ConsoleCore(w io.Writer, level zapcore.LevelEnabler) zapcore.Core {
	config := zap.NewDevelopmentEncoderConfig()
	config.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	config.EncodeLevel = zapcore.CapitalLevelEncoder
	config.EncodeCaller = nil
	return zapcore.NewCore(zapcore.NewConsoleEncoder(config), zapcore.Lock(zapcore.AddSync(w)), level)
}

// NewLogger logs as JSON to a rotated file inside logDir, or to standard
// error when logDir is empty.
func NewLogger(logDir, logLevel string) (*zap.SugaredLogger, error) {
	level := ParseLevel(logLevel)

	if logDir == "" {
		return zap.New(ConsoleCore(os.Stderr, level)).Sugar(), nil
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}
	return zap.New(FileCore(filepath.Join(logDir, FileName), level), zap.AddCaller()).Sugar(), nil
}
