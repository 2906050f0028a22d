package obs

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig describes the process logger.
type LogConfig struct {
	// Level is any zapcore level name; empty keeps the encoder preset's default.
	Level string
	// Format is "json" (production encoder) or "console" (development encoder).
	Format string

	// File, when set, additionally writes JSON logs to a size-rotated file.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// NewLogger builds a zap logger from cfg.
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	var zc zap.Config
	switch cfg.Format {
	case "", "json":
		zc = zap.NewProductionConfig()
	case "console":
		zc = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("new logger: unknown log format %q", cfg.Format)
	}

	if cfg.Level != "" {
		lvl, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("new logger: %w", err)
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}

	var opts []zap.Option
	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		fileCore := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(rotator),
			zc.Level,
		)
		opts = append(opts, zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, fileCore)
		}))
	}

	logger, err := zc.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("new logger: build: %w", err)
	}

	return logger, nil
}
