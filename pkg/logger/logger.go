// Package logger provides component-scoped structured logging.
//
// Every call names the component that produced it ("telegram", "relay",
// "gateway", ...) so log lines can be filtered per subsystem.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

var (
	mu     sync.RWMutex
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	sugar  *zap.SugaredLogger
	levels = map[LogLevel]zapcore.Level{
		DEBUG: zapcore.DebugLevel,
		INFO:  zapcore.InfoLevel,
		WARN:  zapcore.WarnLevel,
		ERROR: zapcore.ErrorLevel,
	}
)

func init() {
	sugar = build(false)
}

// Configure rebuilds the underlying logger. Development mode switches to a
// human readable console encoder.
func Configure(development bool) {
	l := build(development)
	mu.Lock()
	old := sugar
	sugar = l
	mu.Unlock()
	_ = old.Sync()
}

func build(development bool) *zap.SugaredLogger {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Sampling = nil
	}
	cfg.Level = level
	cfg.DisableStacktrace = true

	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// SetLevel changes the minimum level for all subsequent log calls.
func SetLevel(l LogLevel) {
	if zl, ok := levels[l]; ok {
		level.SetLevel(zl)
	}
}

// ParseLevel maps a config string to a LogLevel; unknown values become INFO.
func ParseLevel(s string) LogLevel {
	switch s {
	case "debug", "DEBUG":
		return DEBUG
	case "warn", "warning", "WARN":
		return WARN
	case "error", "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Sync flushes buffered entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = sugar.Sync()
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func keyvals(component string, fields map[string]any) []any {
	kv := make([]any, 0, 2+2*len(fields))
	kv = append(kv, "component", component)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return kv
}

func DebugC(component, msg string) { current().Debugw(msg, keyvals(component, nil)...) }
func InfoC(component, msg string)  { current().Infow(msg, keyvals(component, nil)...) }
func WarnC(component, msg string)  { current().Warnw(msg, keyvals(component, nil)...) }
func ErrorC(component, msg string) { current().Errorw(msg, keyvals(component, nil)...) }

func DebugCF(component, msg string, fields map[string]any) {
	current().Debugw(msg, keyvals(component, fields)...)
}

func InfoCF(component, msg string, fields map[string]any) {
	current().Infow(msg, keyvals(component, fields)...)
}

func WarnCF(component, msg string, fields map[string]any) {
	current().Warnw(msg, keyvals(component, fields)...)
}

func ErrorCF(component, msg string, fields map[string]any) {
	current().Errorw(msg, keyvals(component, fields)...)
}
