// Package logger builds the process zap logger and carries request-scoped loggers
// through contexts.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// presets maps an environment to its base zap configuration.
var presets = map[string]func() zap.Config{
	"prod": func() zap.Config {
		c := zap.NewProductionConfig()
		c.EncoderConfig.TimeKey = "ts"
		c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return c
	},
	"local":  developmentConfig,
	"dev":    developmentConfig,
	"docker": developmentConfig,
}

func developmentConfig() zap.Config {
	c := zap.NewDevelopmentConfig()
	c.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return c
}

// New returns the logger for env: sampled JSON for prod, colored console for
// local, dev and docker, and a no-op logger for test. A non-empty level
// (debug, info, warn, error) replaces the preset level.
func New(env, level string) (*zap.Logger, error) {
	if env == "test" {
		return zap.NewNop(), nil
	}
	preset, ok := presets[env]
	if !ok {
		return nil, fmt.Errorf("logger: unknown environment %q", env)
	}
	cfg := preset()

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("logger: level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("logger: build: %w", err)
	}
	return l.With(zap.String("service", "notegraph")), nil
}
