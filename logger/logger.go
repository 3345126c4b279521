package logger

import "sync/atomic"

var defaultLogger atomic.Value

func init() {
	// depth 2 skips this package's helper and the GlogLogger method
	defaultLogger.Store(loggerHolder{NewGlogLogger(2)})
}

// loggerHolder keeps atomic.Value storing a single concrete type.
type loggerHolder struct {
	Logger
}

// SetDefault replaces the logger used by the package level functions and returns
// the previous one. Tests use it to capture output.
func SetDefault(l Logger) Logger {
	prev := defaultLogger.Swap(loggerHolder{l}).(loggerHolder)
	return prev.Logger
}

// Default returns the logger used by the package level functions.
func Default() Logger {
	return defaultLogger.Load().(loggerHolder).Logger
}

// Debugf level logging
func Debugf(msg string, args ...any) {
	Default().Debugf(msg, args...)
}

// Infof level logging
func Infof(msg string, args ...any) {
	Default().Infof(msg, args...)
}

// Warnf level logging
func Warnf(msg string, args ...any) {
	Default().Warnf(msg, args...)
}

// Errorf level logging
func Errorf(msg string, args ...any) {
	Default().Errorf(msg, args...)
}

// Fatalf level logging and terminates the program execution.
func Fatalf(msg string, args ...any) {
	Default().Fatalf(msg, args...)
}
