// Package logging builds the service-wide zap logger from configuration.
// Components receive a *zap.Logger via constructor injection; this package is
// only concerned with translating config.LogConfig into a zap.Config.
//
// Initialisation order in cmd/*/main.go:
//
//  1. Parse configuration.
//  2. Call logging.NewLogger(cfg.Log).
//  3. Initialise all other components, injecting the logger instance.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/taxletterhelp/notice-intelligence/internal/config"
)

// parseLevel converts a string level to a zapcore.Level.  Unknown values
// default to InfoLevel so the application remains operational.
func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug", "DEBUG":
		return zapcore.DebugLevel
	case "warn", "WARN":
		return zapcore.WarnLevel
	case "error", "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// NewLogger constructs a *zap.Logger according to cfg.  Sensible defaults are
// applied for any unset configuration field:
//   - Level:  "info"
//   - Format: "json"
//   - Output: "stdout"
//
// Returns an error if zap fails to build the underlying logger (e.g., an
// invalid output path that cannot be opened).
func NewLogger(cfg config.LogConfig) (*zap.Logger, error) {
	output := cfg.Output
	if output == "" {
		output = "stdout"
	}

	var encCfg zapcore.EncoderConfig
	var encoding string
	switch cfg.Format {
	case "text":
		encCfg = zap.NewDevelopmentEncoderConfig()
		encoding = "console"
	default:
		encCfg = zap.NewProductionEncoderConfig()
		encoding = "json"
	}
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	zapCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(parseLevel(cfg.Level)),
		Development:       cfg.Format == "text",
		Encoding:          encoding,
		EncoderConfig:     encCfg,
		OutputPaths:       []string{output},
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     !cfg.EnableCaller,
		DisableStacktrace: !cfg.EnableStacktrace,
	}
	if cfg.SamplingRate > 0 {
		zapCfg.Sampling = &zap.SamplingConfig{
			Initial:    cfg.SamplingRate,
			Thereafter: cfg.SamplingRate,
		}
	}

	z, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: failed to build zap logger: %w", err)
	}
	return z, nil
}

// MustLogger is a convenience wrapper around NewLogger that panics on error.
// Intended for use in main() where a logger-build failure is always fatal.
func MustLogger(cfg config.LogConfig) *zap.Logger {
	z, err := NewLogger(cfg)
	if err != nil {
		panic(fmt.Sprintf("logging: MustLogger failed: %v", err))
	}
	return z
}
