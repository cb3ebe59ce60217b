// Package logger builds the zap loggers used across the maintenance
// services. Long running services log JSON to a reopenable file plus
// stderr so logrotate can signal a reopen; the CLI logs human readable
// output to stderr only.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func parseLevel(logLevel string) zapcore.Level {
	switch logLevel {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	case "fatal":
		return zap.FatalLevel
	default:
		return zap.InfoLevel
	}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return cfg
}

// NewLogger returns a JSON logger writing to both the given file syncer
// and stderr, for the api and consumer services.
func NewLogger(logLevel string, fileSyncer *ReopenableWriteSyncer) *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.NewMultiWriteSyncer(fileSyncer, os.Stderr),
		parseLevel(logLevel),
	)
	return zap.New(core, zap.AddCaller())
}

// NewCLILogger returns a console encoded logger writing to stderr,
// keeping stdout free for command output.
func NewCLILogger(logLevel string) *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.Lock(os.Stderr),
		parseLevel(logLevel),
	)
	return zap.New(core)
}
