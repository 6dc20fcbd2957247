package logger

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the encoder and level for the process logger
type Options struct {
	Env     string
	Service string
	// Level overrides the environment default when set (debug, info, warn, error)
	Level string
}

// New creates a new structured logger writing to stdout
func New(opts Options) (*zap.Logger, error) {
	// Always log to stdout for container compatibility
	return build(opts, zapcore.Lock(os.Stdout))
}

func build(opts Options, out zapcore.WriteSyncer) (*zap.Logger, error) {
	production := opts.Env == "production"

	var encoder zapcore.Encoder
	level := zapcore.DebugLevel

	if production {
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
		level = zapcore.InfoLevel
	} else {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	core := zapcore.NewCore(encoder, out, zap.NewAtomicLevelAt(level))
	if production {
		core = zapcore.NewSamplerWithOptions(core, time.Second, 100, 100)
	}

	logger := zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)),
	)

	fields := []zap.Field{zap.String("env", opts.Env)}
	if opts.Service != "" {
		fields = append(fields, zap.String("service", opts.Service))
	}

	return logger.With(fields...), nil
}
