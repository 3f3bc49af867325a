package rotlog

import (
	"time"
)

// Global instance for package-level functions
var defaultLogger = NewLogger()

// Default returns the logger behind the package-level functions
func Default() *Logger {
	return defaultLogger
}

// Init applies cfg to the default logger
func Init(cfg *Config) error {
	return defaultLogger.ApplyConfig(cfg)
}

// InitWithDefaults initializes the default logger with built-in defaults and
// optional "key=value" overrides
func InitWithDefaults(overrides ...string) error {
	cfg := DefaultConfig()
	if err := cfg.Override(overrides...); err != nil {
		return err
	}
	return defaultLogger.ApplyConfig(cfg)
}

// InitFromFile applies the [log] table of a TOML file to the default logger
func InitFromFile(path string) error {
	cfg, err := NewConfigFromFile(path)
	if err != nil {
		return err
	}
	return defaultLogger.ApplyConfig(cfg)
}

// Shutdown gracefully closes the default logger, writing pending records
func Shutdown(timeout ...time.Duration) error {
	return defaultLogger.Shutdown(timeout...)
}

// Flush waits until pending records are written
func Flush(timeout time.Duration) error {
	return defaultLogger.Flush(timeout)
}

// Trace logs a message at trace level
func Trace(args ...any) {
	defaultLogger.log(1, LevelTrace, "", nil, args)
}

// Debug logs a message at debug level
func Debug(args ...any) {
	defaultLogger.log(1, LevelDebug, "", nil, args)
}

// Info logs a message at info level
func Info(args ...any) {
	defaultLogger.log(1, LevelInfo, "", nil, args)
}

// Warn logs a message at warning level
func Warn(args ...any) {
	defaultLogger.log(1, LevelWarn, "", nil, args)
}

// Error logs a message at error level
func Error(args ...any) {
	defaultLogger.log(1, LevelError, "", nil, args)
}

// Tag returns a tagged front-end of the default logger
func Tag(tag string) *Tagged {
	return defaultLogger.Tag(tag)
}
