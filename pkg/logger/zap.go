package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configures the process logger.
type Config struct {
	// Level is one of debug, info, warn, error, dpanic, panic, fatal.
	Level string
	// Format is json or console.
	Format string
	// Output is stdout, stderr or file.
	Output string
	// FilePath is used when Output is file.
	FilePath string
	// Development switches to the colored development encoder and adds callers.
	Development bool
	// Service is attached to every entry when set.
	Service string
}

// NewZapLogger builds a zap logger from config. Unknown levels fall back to info.
func NewZapLogger(config Config) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(config.Level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	level := zap.NewAtomicLevelAt(lvl)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "@timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.LevelKey = "log.level"
	encoderConfig.MessageKey = "message"
	encoderConfig.CallerKey = "caller"

	if config.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var encoder zapcore.Encoder
	if config.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	var writeSyncer zapcore.WriteSyncer
	switch config.Output {
	case "stderr":
		writeSyncer = zapcore.AddSync(os.Stderr)
	case "file":
		if config.FilePath == "" {
			writeSyncer = zapcore.AddSync(os.Stdout)
		} else {
			file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
			if err != nil {
				return nil, err
			}
			writeSyncer = zapcore.AddSync(file)
		}
	default:
		writeSyncer = zapcore.AddSync(os.Stdout)
	}

	logger := zap.New(zapcore.NewCore(encoder, writeSyncer, level))

	if config.Development {
		logger = logger.WithOptions(zap.AddCaller())
	}
	logger = logger.WithOptions(zap.AddStacktrace(zapcore.ErrorLevel))

	if config.Service != "" {
		logger = logger.With(zap.String("service", config.Service))
	}

	return logger, nil
}

// DefaultZapLogger returns an info-level JSON logger on stdout.
func DefaultZapLogger() *zap.Logger {
	logger, err := NewZapLogger(Config{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	})
	if err != nil {
		return zap.NewExample()
	}
	return logger
}
