package utils

import (
	"io"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger writes JSON lines through zap.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger creates a JSON logger writing to output.
func NewZapLogger(level LogLevel, output io.Writer) *ZapLogger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(output),
		zapLevel(level),
	)
	return &ZapLogger{sugar: zap.New(core).Sugar()}
}

func zapLevel(level LogLevel) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Debug logs a debug message.
func (l *ZapLogger) Debug(msg string, args ...interface{}) { l.sugar.Debugf(msg, args...) }

// Info logs an info message.
func (l *ZapLogger) Info(msg string, args ...interface{}) { l.sugar.Infof(msg, args...) }

// Warn logs a warning message.
func (l *ZapLogger) Warn(msg string, args ...interface{}) { l.sugar.Warnf(msg, args...) }

// Error logs an error message.
func (l *ZapLogger) Error(msg string, args ...interface{}) { l.sugar.Errorf(msg, args...) }

// WithField returns a logger that adds key to every entry.
func (l *ZapLogger) WithField(key string, value interface{}) Logger {
	return &ZapLogger{sugar: l.sugar.With(key, value)}
}

// WithFields returns a logger that adds fields to every entry.
func (l *ZapLogger) WithFields(fields map[string]interface{}) Logger {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kv := make([]interface{}, 0, 2*len(fields))
	for _, k := range keys {
		kv = append(kv, k, fields[k])
	}
	return &ZapLogger{sugar: l.sugar.With(kv...)}
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}
