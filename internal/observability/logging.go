package observability

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/ticket-synth/internal/config"
)

// NewLogger creates a structured zap.Logger writing JSON to stdout.
func NewLogger(cfg config.LoggerConfig) (*zap.Logger, error) {
	return build(cfg, []string{"stdout"})
}

// NewFileLogger writes to LOG_DIR/<prefix>_<timestamp>.log so command line
// output stays clean. It returns the log file path.
func NewFileLogger(cfg config.LoggerConfig, prefix string, now time.Time) (*zap.Logger, string, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.log", prefix, now.Format("20060102_150405")))
	logger, err := build(cfg, []string{path})
	if err != nil {
		return nil, "", err
	}
	return logger, path, nil
}

func build(cfg config.LoggerConfig, outputs []string) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if err := level.Set(strings.ToLower(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	zapCfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(level),
		Development: level == zapcore.DebugLevel,
		Encoding:    "json",
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "message",
			LevelKey:   "level",
			TimeKey:    "ts",
			NameKey:    "logger",
			EncodeLevel: func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
				enc.AppendString(l.String())
			},
			EncodeTime: zapcore.ISO8601TimeEncoder,
		},
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
	}

	return zapCfg.Build()
}
