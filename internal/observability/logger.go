// Package observability owns the process-wide zap logger. Console output is
// written to stderr because stdout carries the result envelope.
package observability

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/xkilldash9x/foxbridge/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	globalLogger atomic.Pointer[zap.Logger]
	once         sync.Once
)

const (
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorWhite   = "\x1b[37m"
	colorReset   = "\x1b[0m"
)

var ansi = map[string]string{
	"red":     colorRed,
	"green":   colorGreen,
	"yellow":  colorYellow,
	"blue":    colorBlue,
	"magenta": colorMagenta,
	"cyan":    colorCyan,
	"white":   colorWhite,
}

// Initialize installs the global logger, writing console output to console.
// Only the first call in a process has any effect.
func Initialize(cfg config.LoggerConfig, console zapcore.WriteSyncer) {
	once.Do(func() {
		logger := build(cfg, console)
		globalLogger.Store(logger)
		zap.ReplaceGlobals(logger)
		zap.RedirectStdLog(logger)
	})
}

// InitializeLogger initializes the global logger on a locked stderr.
func InitializeLogger(cfg config.LoggerConfig) {
	Initialize(cfg, zapcore.Lock(os.Stderr))
}

// ResetForTest clears the global logger so the next Initialize takes effect.
func ResetForTest() {
	globalLogger.Store(nil)
	once = sync.Once{}
}

func build(cfg config.LoggerConfig, console zapcore.WriteSyncer) *zap.Logger {
	level := parseLevel(cfg.Level)

	cores := []zapcore.Core{zapcore.NewCore(encoderFor(cfg.Format, cfg.Colors), console, level)}
	if sink := rotatingSink(cfg); sink != nil {
		// The log file is for machines; it is JSON whatever the console format.
		cores = append(cores, zapcore.NewCore(encoderFor("json", config.ColorConfig{}), sink, level))
	}

	opts := []zap.Option{zap.AddStacktrace(zap.ErrorLevel)}
	if cfg.AddSource {
		opts = append(opts, zap.AddCaller())
	}
	logger := zap.New(zapcore.NewTee(cores...), opts...)
	if cfg.ServiceName != "" {
		logger = logger.Named(cfg.ServiceName)
	}
	return logger
}

// parseLevel falls back to warn, the quietest useful level for a shim whose
// caller reads stderr only on failure.
func parseLevel(s string) zap.AtomicLevel {
	level, err := zap.ParseAtomicLevel(s)
	if err != nil {
		return zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return level
}

func rotatingSink(cfg config.LoggerConfig) zapcore.WriteSyncer {
	if cfg.LogFile == "" {
		return nil
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	})
}

func encoderFor(format string, colors config.ColorConfig) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder

	if format != "console" {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewJSONEncoder(ec)
	}

	ec.EncodeLevel = colorLevels(colors)
	// "foxbridge.executor." reads as a prefix in front of the message.
	ec.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(name + ".")
	}
	return zapcore.NewConsoleEncoder(ec)
}

// colorLevels wraps each level name in the ANSI color configured for it.
// Unknown color names leave the level uncolored.
func colorLevels(colors config.ColorConfig) zapcore.LevelEncoder {
	byLevel := map[zapcore.Level]string{
		zapcore.DebugLevel:  ansi[colors.Debug],
		zapcore.InfoLevel:   ansi[colors.Info],
		zapcore.WarnLevel:   ansi[colors.Warn],
		zapcore.ErrorLevel:  ansi[colors.Error],
		zapcore.DPanicLevel: ansi[colors.DPanic],
		zapcore.PanicLevel:  ansi[colors.Panic],
		zapcore.FatalLevel:  ansi[colors.Fatal],
	}
	return func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		name := l.CapitalString()
		if c := byLevel[l]; c != "" {
			name = c + name + colorReset
		}
		enc.AppendString(name)
	}
}

// GetLogger returns the global logger, or a warn-level stderr logger when
// none has been initialized.
func GetLogger() *zap.Logger {
	if logger := globalLogger.Load(); logger != nil {
		return logger
	}
	return build(config.LoggerConfig{Level: "warn", Format: "console"}, zapcore.Lock(os.Stderr)).Named("fallback")
}

// Sync flushes buffered entries. Call it before the process exits.
func Sync() {
	logger := globalLogger.Load()
	if logger == nil {
		return
	}
	if err := logger.Sync(); err != nil && !unsyncable(err) {
		fmt.Fprintln(os.Stderr, "failed to sync logger:", err)
	}
}

// unsyncable reports the errors fsync returns for terminals and pipes.
func unsyncable(err error) bool {
	return errors.Is(err, syscall.EINVAL) ||
		errors.Is(err, syscall.ENOTTY) ||
		errors.Is(err, errors.ErrUnsupported)
}
