package utils

import (
	"go.uber.org/zap"
)

var logger = zap.NewNop()

// Logger returns the package-wide logger. It is a no-op until SetLogger is called.
func Logger() *zap.Logger {
	return logger
}

// SetLogger replaces the package logger. Call it before any pipeline runs;
// passing nil restores the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		logger = zap.NewNop()
		return
	}
	logger = l
}
