package observability

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/pdc-service/internal/config"
)

// NewLogger builds the process logger. Every entry carries the service name,
// version and environment; production environments sample repeated entries.
func NewLogger(cfg config.LoggerConfig, app config.AppConfig) (*zap.Logger, error) {
	zapCfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLevel(cfg.Level)),
		Development:      app.Env == "development",
		Encoding:         encoding(cfg.Format),
		EncoderConfig:    encoderConfig(cfg.Format),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		InitialFields: map[string]any{
			"service": app.Name,
			"version": app.Version,
			"env":     app.Env,
		},
	}
	if app.Env == "production" {
		zapCfg.Sampling = &zap.SamplingConfig{Initial: 100, Thereafter: 100}
	}
	return zapCfg.Build()
}

func parseLevel(raw string) zapcore.Level {
	level := zapcore.InfoLevel
	if err := level.Set(strings.ToLower(raw)); err != nil {
		return zapcore.InfoLevel
	}
	return level
}

func encoding(format string) string {
	if format == "console" {
		return "console"
	}
	return "json"
}

func encoderConfig(format string) zapcore.EncoderConfig {
	enc := zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "level",
		TimeKey:        "ts",
		NameKey:        "logger",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if format == "console" {
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return enc
}
