// Package log provides structured logging for strix on top of logrus.
// A small Logger interface keeps the rest of the codebase free of a
// direct logrus dependency.
package log

import "sync"

// Logger is the logging surface used throughout strix.
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})

	WithField(field string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	IsDebugEnabled() bool
}

var (
	once   sync.Once
	logger Logger
)

// GetLogger returns the process logger. Init must run first; before
// that a default console logger is handed out so early code paths can
// still log.
func GetLogger() Logger {
	if logger == nil {
		Init(nil)
	}
	return logger
}

// Init initializes the process logger exactly once. A nil config means
// console output at info level.
func Init(cfg *Config) {
	once.Do(func() {
		if cfg == nil {
			cfg = DefaultConfig()
		}
		l, err := newLogrusLogger(cfg)
		if err != nil {
			panic(err)
		}
		logger = l
	})
}
