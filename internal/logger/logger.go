package logger

import (
	"fmt"
	"os"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls logger construction.
type Config struct {
	Level string
	Dev   bool
	// File, when set, receives a copy of every entry, rotated daily.
	File string
}

func levelFromString(l string) zapcore.Level {
	switch l {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New initializes and returns a *zap.Logger. Dev selects a console encoder
// on stderr, otherwise JSON goes to stdout. File always receives JSON.
func New(cfg Config) (*zap.Logger, error) {
	out := zapcore.Lock(os.Stdout)
	if cfg.Dev {
		out = zapcore.Lock(os.Stderr)
	}
	return build(cfg, out)
}

func build(cfg Config, out zapcore.WriteSyncer) (*zap.Logger, error) {
	lvl := levelFromString(cfg.Level)

	jsonCfg := zap.NewProductionEncoderConfig()
	jsonCfg.TimeKey = "timestamp"
	jsonCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var console zapcore.Core
	opts := []zap.Option{zap.AddCaller()}
	if cfg.Dev {
		devCfg := zap.NewDevelopmentEncoderConfig()
		console = zapcore.NewCore(zapcore.NewConsoleEncoder(devCfg), out, lvl)
		opts = append(opts, zap.Development(), zap.AddStacktrace(zapcore.WarnLevel))
	} else {
		console = zapcore.NewCore(zapcore.NewJSONEncoder(jsonCfg), out, lvl)
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}
	cores := []zapcore.Core{console}

	if cfg.File != "" {
		writer, err := rotatelogs.New(
			cfg.File+".%Y%m%d",
			rotatelogs.WithLinkName(cfg.File),
			rotatelogs.WithMaxAge(7*24*time.Hour),
			rotatelogs.WithRotationTime(24*time.Hour),
		)
		if err != nil {
			return nil, fmt.Errorf("open rotating log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(jsonCfg), zapcore.AddSync(writer), lvl))
	}

	return zap.New(zapcore.NewTee(cores...), opts...), nil
}
