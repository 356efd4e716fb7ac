// Package logger holds the process-wide zap logger.
package logger

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "recipefeed"

var current atomic.Pointer[zap.Logger]

// Init builds the process logger. Development mode logs colored console
// lines at debug level; otherwise JSON at info level.
func Init(isDev bool) {
	cfg := zap.NewProductionConfig()
	if isDev {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.InitialFields = map[string]interface{}{"service": serviceName}

	l, err := cfg.Build()
	if err != nil {
		panic("logger: build failed: " + err.Error())
	}
	Set(l)
}

// Set replaces the process logger. Tests use it to observe log output.
func Set(l *zap.Logger) {
	current.Store(l)
}

// Get returns the process logger, or a no-op logger before Init.
func Get() *zap.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// With returns a child logger with the given fields attached.
func With(fields ...zap.Field) *zap.Logger {
	return Get().With(fields...)
}

// ForTask returns a child logger tagged with a task's slot and ID.
func ForTask(slot, taskID string) *zap.Logger {
	return Get().With(zap.String("slot", slot), zap.String("task_id", taskID))
}

// Sync flushes buffered entries.
func Sync() {
	_ = Get().Sync()
}
