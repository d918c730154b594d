// Package logging builds the zap loggers used by the CLI, the TUI and the
// stub service.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	// Path is the rotating JSON log file. Empty disables the file sink.
	Path  string
	Debug bool
	// Console receives human-readable output. Leave nil while a full-screen
	// UI owns the terminal.
	Console io.Writer
}

// New returns a logger teeing to the file and console sinks that are
// configured. With neither it returns a no-op logger.
func New(opts Options) (*zap.Logger, error) {
	level := zap.InfoLevel
	if opts.Debug {
		level = zap.DebugLevel
	}

	var cores []zapcore.Core
	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, err
		}
		rotator := &lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(rotator),
			level,
		))
	}
	if opts.Console != nil {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.Lock(zapcore.AddSync(opts.Console)),
			level,
		))
	}
	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}
