package logger

import (
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logging surface shared by the relay packages.
type Logger interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
	With(fields map[string]any) Logger
	WithError(err error) Logger
}

// New builds a zap logger. Unknown levels fall back to info; any format but
// "json" uses the console encoder.
func New(level, format string) *zap.Logger {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil || parsed < zapcore.DebugLevel || parsed > zapcore.ErrorLevel {
		parsed = zapcore.InfoLevel
	}

	cfg := zap.NewDevelopmentConfig()
	if format == "json" {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	built, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return built
}

// NewStructured is New wrapped in the Logger interface.
func NewStructured(level, format string) Logger {
	return FromZap(New(level, format))
}

func FromZap(l *zap.Logger) Logger {
	return &zapLogger{base: l}
}

func NewNoOpLogger() Logger {
	return FromZap(zap.NewNop())
}

type zapLogger struct {
	base *zap.Logger
}

func (z *zapLogger) Debug(msg string, fields map[string]any) { z.log(zapcore.DebugLevel, msg, fields) }
func (z *zapLogger) Info(msg string, fields map[string]any)  { z.log(zapcore.InfoLevel, msg, fields) }
func (z *zapLogger) Warn(msg string, fields map[string]any)  { z.log(zapcore.WarnLevel, msg, fields) }
func (z *zapLogger) Error(msg string, fields map[string]any) { z.log(zapcore.ErrorLevel, msg, fields) }

func (z *zapLogger) With(fields map[string]any) Logger {
	return &zapLogger{base: z.base.With(toFields(fields)...)}
}

func (z *zapLogger) WithError(err error) Logger {
	return &zapLogger{base: z.base.With(zap.Error(err))}
}

func (z *zapLogger) log(level zapcore.Level, msg string, fields map[string]any) {
	if ce := z.base.Check(level, msg); ce != nil {
		ce.Write(toFields(fields)...)
	}
}

// toFields converts a field map in key order so output is stable.
func toFields(fields map[string]any) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]zap.Field, len(keys))
	for i, k := range keys {
		out[i] = zap.Any(k, fields[k])
	}
	return out
}
