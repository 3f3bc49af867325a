package rotlog

import "time"

// Log level constants
const (
	LevelTrace int64 = -8
	LevelDebug int64 = -4
	LevelInfo  int64 = 0
	LevelWarn  int64 = 4
	LevelError int64 = 8
)

// DiagnosticsTag marks records that report problems of the logging pipeline
// itself. Such records are dropped instead of blocking and their write errors
// are not reported again.
const DiagnosticsTag = "rotlog"

// Defaults
const (
	// Chunk size of buffered log files
	DefaultFileBufferSize = 64 * 1024
	// Capacity of the writing thread queue
	DefaultQueueSize = 1024
	// Grace period for the writing thread to drain on shutdown
	defaultShutdownTimeout = 5 * time.Second
)
