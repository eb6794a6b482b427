// Package logger builds the process-wide zap logger. Level and encoding
// follow the application config: development environments get a console
// encoder, everything else ships JSON with service/version fields on
// every line.
package logger

import (
	"fmt"

	"github.com/smallbiznis/platefee/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func New(cfg config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "json"
	if cfg.Environment == "development" {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.Encoding = "console"
	}
	zcfg.EncoderConfig.TimeKey = "ts"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	level := cfg.LogLevel
	if level == "" {
		level = "info"
	}
	if err := zcfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logger, err := zcfg.Build(zap.Fields(
		zap.String("service", cfg.AppName),
		zap.String("version", cfg.AppVersion),
	))
	if err != nil {
		return nil, err
	}

	zap.ReplaceGlobals(logger)
	return logger, nil
}
