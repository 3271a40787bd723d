package dlfcn

import (
	"os"
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
	loggerMu   sync.RWMutex
)

// Logger returns the package logger. It is a no-op logger unless DEBUG is
// set, in which case a development logger writes to stderr.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		loggerMu.Lock()
		defer loggerMu.Unlock()
		if logger != nil {
			return
		}
		logger = newDefaultLogger(os.Getenv)
	})
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// newDefaultLogger picks the package logger from the environment: a
// development logger when DEBUG is non-empty, otherwise a no-op logger.
func newDefaultLogger(getenv func(string) string) *zap.Logger {
	if getenv("DEBUG") == "" {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// SetLogger replaces the package logger. Bindings and libraries created
// afterwards pick it up unless WithLogger overrides it.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}
