// Package logging builds the structured logger shared by the framework.
//
// The logger is a logr.Logger backed by zap, so packages only depend on the
// logr interface and never on zap directly:
//
//	log, err := logging.New(cfg.Log)
//	log.Info("server starting", "port", cfg.App.Port)
//	log.V(1).Info("resolved", "spec", spec)
//
// logr verbosity maps onto zap levels: V(0) is info and V(1) is debug, so
// debug output is only emitted with LOG_LEVEL=debug.
package logging

import (
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/km-arc/go-callable/framework/config"
)

// Formats accepted in LOG_FORMAT.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New builds a logger writing to stderr.
func New(cfg config.LogConfig) (logr.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return logr.Discard(), err
	}

	zc := zap.NewProductionConfig()
	if cfg.Format == FormatConsole {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.DisableStacktrace = true

	zl, err := zc.Build()
	if err != nil {
		return logr.Discard(), fmt.Errorf("logging: build logger: %w", err)
	}
	return zapr.NewLogger(zl), nil
}

// NewWriter builds a logger writing to w. Used by tests and by tools that
// want to capture framework output.
func NewWriter(w io.Writer, cfg config.LogConfig) (logr.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return logr.Discard(), err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = ""
	enc := zapcore.NewJSONEncoder(encCfg)
	if cfg.Format == FormatConsole {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	return zapr.NewLogger(zap.New(core)), nil
}

func parseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("logging: invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}
