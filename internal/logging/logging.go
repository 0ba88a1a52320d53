// Package logging builds the zap logger shared by all components.
package logging

import (
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the encoder and minimum level.
type Options struct {
	IsProduction bool
	Level        zapcore.Level
	Service      string
}

// New returns a logger writing to stdout and a func that flushes it. In
// production entries are JSON; in development they are console formatted.
// Stack traces are attached from error level up.
func New(opts Options) (*zap.Logger, func()) {
	return newWithSink(opts, zapcore.Lock(os.Stdout))
}

func newWithSink(opts Options, sink zapcore.WriteSyncer) (*zap.Logger, func()) {
	var encoder zapcore.Encoder
	if opts.IsProduction {
		encoder = zapcore.NewJSONEncoder(encoderConfig(zap.NewProductionEncoderConfig()))
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig(zap.NewDevelopmentEncoderConfig()))
	}

	core := zapcore.NewCore(encoder, sink, opts.Level)
	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if opts.Service != "" {
		logger = logger.With(zap.String("service", opts.Service))
	}

	flusher := func() {
		if err := logger.Sync(); err != nil {
			log.Println("error during flushing any buffered log entries:", err)
		}
	}
	return logger, flusher
}

func encoderConfig(cfg zapcore.EncoderConfig) zapcore.EncoderConfig {
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.LevelKey = "level"
	cfg.NameKey = "name"
	cfg.MessageKey = "msg"
	cfg.CallerKey = "caller"
	cfg.StacktraceKey = "stacktrace"
	return cfg
}
