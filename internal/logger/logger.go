package logger

import (
	"io"
	"os"
	"strings"

	"github.com/samvad-hq/jsonfetch/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logging surface shared across packages.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) InfoObj(string, string, interface{})  {}
func (NopLogger) DebugObj(string, string, interface{}) {}
func (NopLogger) WarnObj(string, string, interface{})  {}
func (NopLogger) ErrorObj(string, string, interface{}) {}

// std is the process logger set by Init. It skips one extra frame so callers
// of the package functions show up as the log site.
var std *ZapLogger

// ZapLogger implements Logger on top of a zap.Logger.
type ZapLogger struct {
	l *zap.Logger
}

// Init installs the process logger writing JSON lines to stdout.
func Init(cfg *config.Config) (*ZapLogger, error) {
	return InitWithWriter(cfg, os.Stdout)
}

// InitWithWriter installs the process logger writing JSON lines to w.
func InitWithWriter(cfg *config.Config, w io.Writer) (*ZapLogger, error) {
	level := ParseLevel("")
	if cfg != nil {
		level = ParseLevel(cfg.LogLevel)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		level,
	)

	zl := New(core)
	if cfg != nil && cfg.AppName != "" {
		zl = zl.With("app", cfg.AppName)
	}
	std = &ZapLogger{l: zl.l.WithOptions(zap.AddCallerSkip(1))}
	return zl, nil
}

// New wraps an arbitrary zap core; tests pass an observer core here.
func New(core zapcore.Core) *ZapLogger {
	return &ZapLogger{l: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))}
}

// ParseLevel maps a config level name to a zap level, defaulting to info.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

// With returns a child logger carrying a constant string field.
func (z *ZapLogger) With(key, value string) *ZapLogger {
	if z == nil {
		return nil
	}
	return &ZapLogger{l: z.l.With(zap.String(key, value))}
}

// Sugar exposes the printf-style logger, e.g. for resty's logger hook.
func (z *ZapLogger) Sugar() *zap.SugaredLogger {
	if z == nil {
		return zap.NewNop().Sugar()
	}
	return z.l.Sugar()
}

func (z *ZapLogger) InfoObj(msg, key string, obj interface{}) {
	if z == nil {
		return
	}
	z.l.Info(msg, zap.Any(key, obj))
}

func (z *ZapLogger) DebugObj(msg, key string, obj interface{}) {
	if z == nil {
		return
	}
	z.l.Debug(msg, zap.Any(key, obj))
}

func (z *ZapLogger) WarnObj(msg, key string, obj interface{}) {
	if z == nil {
		return
	}
	z.l.Warn(msg, zap.Any(key, obj))
}

func (z *ZapLogger) ErrorObj(msg, key string, obj interface{}) {
	if z == nil {
		return
	}
	z.l.Error(msg, zap.Any(key, obj))
}

// Sync flushes buffered entries.
func (z *ZapLogger) Sync() error {
	if z == nil {
		return nil
	}
	return z.l.Sync()
}

// The functions below write through the process logger installed by Init and
// do nothing before it. Binaries use them for startup and shutdown lines;
// packages take a Logger instead.

// Close flushes the process logger.
func Close() error { return std.Sync() }

func InfoObj(msg, key string, obj interface{})  { std.InfoObj(msg, key, obj) }
func DebugObj(msg, key string, obj interface{}) { std.DebugObj(msg, key, obj) }
func WarnObj(msg, key string, obj interface{})  { std.WarnObj(msg, key, obj) }
func ErrorObj(msg, key string, obj interface{}) { std.ErrorObj(msg, key, obj) }
