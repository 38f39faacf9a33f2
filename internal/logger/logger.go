// Package logger builds the zap loggers used across the service.
package logger

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// FilePath enables a rotated JSON log file in addition to stdout.
	FilePath string
	// Production selects JSON console output instead of the development encoder.
	Production bool
	// Location is the zone timestamps are rendered in. Defaults to UTC.
	Location *time.Location
}

// EncoderConfig returns the JSON encoder layout shared by every logger:
// "ts", "level", "msg", RFC3339Nano timestamps.
func EncoderConfig(loc *time.Location) zapcore.EncoderConfig {
	if loc == nil {
		loc = time.UTC
	}
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.MessageKey = "msg"
	cfg.LevelKey = "level"
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.In(loc).Format(time.RFC3339Nano))
	}
	return cfg
}

// New returns a logger writing to stdout and, when FilePath is set, to a
// lumberjack-rotated file.
func New(opts Options) *zap.Logger {
	encCfg := EncoderConfig(opts.Location)
	jsonEncoder := zapcore.NewJSONEncoder(encCfg)

	var consoleEncoder zapcore.Encoder
	if opts.Production {
		consoleEncoder = jsonEncoder
	} else {
		consoleEncoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), zap.DebugLevel),
	}
	if opts.FilePath != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(jsonEncoder, zapcore.AddSync(rotator), zap.InfoLevel))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}

// NewJSON returns an info-level JSON logger writing one object per line to w.
func NewJSON(w io.Writer, loc *time.Location) *zap.Logger {
	core := zapcore.NewCore(zapcore.NewJSONEncoder(EncoderConfig(loc)), zapcore.AddSync(w), zap.InfoLevel)
	return zap.New(core)
}
