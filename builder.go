package rotlog

import (
	"strings"
)

// Builder provides a fluent API for building logger configurations.
// It wraps a Config instance and provides chainable methods for setting values.
type Builder struct {
	cfg     *Config
	writers []Writer
	err     error // Accumulate errors for deferred handling
}

// NewBuilder creates a new configuration builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Build creates a new Logger instance with the specified configuration.
func (b *Builder) Build() (*Logger, error) {
	if b.err != nil {
		return nil, b.err
	}

	logger := NewLogger()
	if err := logger.ApplyConfig(b.cfg, b.writers...); err != nil {
		return nil, err
	}
	return logger, nil
}

// Config returns a copy of the configuration built so far
func (b *Builder) Config() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.cfg.Clone(), nil
}

// Level sets the log level.
func (b *Builder) Level(level int64) *Builder {
	b.cfg.Level = level
	return b
}

// LevelString sets the log level from a string.
func (b *Builder) LevelString(level string) *Builder {
	if b.err != nil {
		return b
	}
	levelVal, err := Level(level)
	if err != nil {
		b.err = err
		return b
	}
	b.cfg.Level = levelVal
	return b
}

// Format sets the output format.
func (b *Builder) Format(format string) *Builder {
	b.cfg.Format = format
	return b
}

// TimestampFormat sets the time layout of timestamps.
func (b *Builder) TimestampFormat(layout string) *Builder {
	b.cfg.TimestampFormat = layout
	return b
}

// ShowThread outputs the goroutine of each record.
func (b *Builder) ShowThread(show bool) *Builder {
	b.cfg.ShowThread = show
	return b
}

// ShowSource outputs the caller location of each record.
func (b *Builder) ShowSource(show bool) *Builder {
	b.cfg.ShowSource = show
	return b
}

// FilePattern sets the dynamic path of log files and enables file output.
func (b *Builder) FilePattern(pattern string) *Builder {
	b.cfg.FilePattern = pattern
	b.cfg.EnableFile = true
	return b
}

// Policies sets the rollover policies, e.g. Policies("startup", "size: 10MB").
func (b *Builder) Policies(definitions ...string) *Builder {
	b.cfg.Policies = strings.Join(definitions, ", ")
	return b
}

// Charset sets the charset of log files.
func (b *Builder) Charset(name string) *Builder {
	b.cfg.Charset = name
	return b
}

// FileBufferSize sets the chunk size of buffered log files.
func (b *Builder) FileBufferSize(size int64) *Builder {
	b.cfg.FileBufferSize = size
	return b
}

// Lumberjack switches file output to the lumberjack backend.
func (b *Builder) Lumberjack(maxSizeMB, maxBackups, maxAgeDays int64, compress bool) *Builder {
	b.cfg.FileBackend = "lumberjack"
	b.cfg.LumberjackMaxSizeMB = maxSizeMB
	b.cfg.LumberjackMaxBackups = maxBackups
	b.cfg.LumberjackMaxAgeDays = maxAgeDays
	b.cfg.LumberjackCompress = compress
	return b
}

// DisableFile disables file output entirely.
func (b *Builder) DisableFile(disable bool) *Builder {
	b.cfg.EnableFile = !disable
	return b
}

// EnableConsole mirrors logs to stdout or stderr.
func (b *Builder) EnableConsole(enable bool) *Builder {
	b.cfg.EnableConsole = enable
	return b
}

// ConsoleTarget sets "stdout" or "stderr".
func (b *Builder) ConsoleTarget(target string) *Builder {
	b.cfg.ConsoleTarget = target
	return b
}

// WritingThread enables or disables asynchronous output.
func (b *Builder) WritingThread(enable bool) *Builder {
	b.cfg.WritingThread = enable
	return b
}

// QueueSize sets the capacity of the writing thread queue.
func (b *Builder) QueueSize(size int64) *Builder {
	b.cfg.QueueSize = size
	return b
}

// InternalErrorsToStderr reports pipeline problems on stderr.
func (b *Builder) InternalErrorsToStderr(enable bool) *Builder {
	b.cfg.InternalErrorsToStderr = enable
	return b
}

// InternalErrorsToWriters reports pipeline problems as records to the writers.
func (b *Builder) InternalErrorsToWriters(enable bool) *Builder {
	b.cfg.InternalErrorsToWriters = enable
	return b
}

// Writer adds a custom writer, owned by the built logger.
func (b *Builder) Writer(w Writer) *Builder {
	if w != nil {
		b.writers = append(b.writers, w)
	}
	return b
}

// Example usage:
// logger, err := rotlog.NewBuilder().
//
//	FilePattern("/var/log/app/{date: yyyy-MM-dd}_{count}.log").
//	Policies("startup", "daily: 03:00", "size: 50MB").
//	LevelString("debug").
//	Format("json").
//	EnableConsole(true).
//	Build()
//
// if err == nil {
//
//	 defer logger.Shutdown()
//	 logger.Info("Logger initialized successfully")
//
// }
