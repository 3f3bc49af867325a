package rotlog

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Logger is the front-end: it filters records by level, populates the fields
// its writers need, and hands records to the writers either synchronously or
// through a WritingThread
type Logger struct {
	currentConfig atomic.Value // stores *Config
	state         State
	initMu        sync.Mutex
	pipe          atomic.Pointer[pipeline]
}

// pipeline is the set of writers built from one configuration
type pipeline struct {
	cfg     *Config
	writers []Writer
	fields  FieldSet
	thread  *WritingThread // nil when writing synchronously

	mu     sync.Mutex // serializes writer calls without a thread
	closed bool
}

// NewLogger creates a new Logger instance with default settings. It writes
// nothing until a configuration is applied.
func NewLogger() *Logger {
	l := &Logger{}
	l.currentConfig.Store(DefaultConfig())
	l.state.IsInitialized.Store(false)
	l.state.ShutdownCalled.Store(false)
	return l
}

// ApplyConfig validates cfg, stops the writers of the previous configuration
// and starts new ones. extra writers are added to the configured ones; the
// logger owns them from then on and closes them on reconfiguration or shutdown.
func (l *Logger) ApplyConfig(cfg *Config, extra ...Writer) error {
	if cfg == nil {
		return fmtErrorf("configuration cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return fmtErrorf("invalid configuration: %w", err)
	}

	l.initMu.Lock()
	defer l.initMu.Unlock()

	return l.applyConfig(cfg.Clone(), extra)
}

// GetConfig returns a copy of current configuration
func (l *Logger) GetConfig() *Config {
	return l.getConfig().Clone()
}

// getConfig returns the current configuration (thread-safe)
func (l *Logger) getConfig() *Config {
	return l.currentConfig.Load().(*Config)
}

// applyConfig assumes initMu is held
func (l *Logger) applyConfig(cfg *Config, extra []Writer) error {
	// The old writers go first, a new file writer may continue their file
	if old := l.pipe.Swap(nil); old != nil {
		l.state.IsInitialized.Store(false)
		if err := old.close(defaultShutdownTimeout); err != nil {
			l.internalLog("failed to stop previous writers: %v\n", err)
		}
	}

	l.currentConfig.Store(cfg)

	p, err := l.buildPipeline(cfg, extra)
	if err != nil {
		return err
	}

	l.pipe.Store(p)
	l.state.ShutdownCalled.Store(false)
	l.state.IsInitialized.Store(true)
	return nil
}

// buildPipeline creates the writers of cfg and, if enabled, starts the
// writing thread
func (l *Logger) buildPipeline(cfg *Config, extra []Writer) (*pipeline, error) {
	renderer, err := NewRenderer(cfg.Format, cfg.TimestampFormat, flagsFromConfig(cfg))
	if err != nil {
		return nil, err
	}

	var writers []Writer
	fail := func(err error) (*pipeline, error) {
		for _, w := range writers {
			_ = w.Close()
		}
		for _, w := range extra {
			_ = w.Close()
		}
		return nil, err
	}

	if cfg.EnableFile {
		switch cfg.FileBackend {
		case "lumberjack":
			w, err := NewLumberjackWriter(LumberjackConfig{
				Filename:   cfg.FilePattern,
				MaxSizeMB:  int(cfg.LumberjackMaxSizeMB),
				MaxBackups: int(cfg.LumberjackMaxBackups),
				MaxAgeDays: int(cfg.LumberjackMaxAgeDays),
				Compress:   cfg.LumberjackCompress,
				LocalTime:  true,
			}, renderer)
			if err != nil {
				return fail(err)
			}
			writers = append(writers, w)
		default:
			w, err := NewFileWriter(FileWriterConfig{
				Pattern:    cfg.FilePattern,
				Charset:    cfg.Charset,
				Policies:   cfg.PolicyList(),
				BufferSize: int(cfg.FileBufferSize),
				Renderer:   renderer,
			})
			if err != nil {
				return fail(err)
			}
			writers = append(writers, w)
		}
	}

	if cfg.EnableConsole {
		w, err := NewConsoleWriter(cfg.ConsoleTarget, renderer)
		if err != nil {
			return fail(err)
		}
		writers = append(writers, w)
	}

	for _, w := range extra {
		if w != nil {
			writers = append(writers, w)
		}
	}

	p := &pipeline{cfg: cfg, writers: writers}
	for _, w := range writers {
		p.fields |= w.RequiredFields()
	}

	if cfg.WritingThread {
		p.thread = NewWritingThread(int(cfg.QueueSize), l.reportAsync(p))
		p.thread.Start()
	}
	return p, nil
}

// close stops the thread, if any, and closes the writers
func (p *pipeline) close(timeout time.Duration) error {
	if p.thread != nil {
		p.thread.Shutdown()
		if err := p.thread.Join(timeout); err != nil {
			// The thread still owns the writers
			return err
		}
	} else {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.closed {
			return nil
		}
		p.closed = true
	}

	var err error
	for _, w := range p.writers {
		if closeErr := w.Close(); closeErr != nil {
			err = combineErrors(err, fmtErrorf("failed to close writer: %w", closeErr))
		}
	}
	return err
}

// Trace logs a message at trace level
func (l *Logger) Trace(args ...any) {
	l.log(0, LevelTrace, "", nil, args)
}

// Debug logs a message at debug level
func (l *Logger) Debug(args ...any) {
	l.log(0, LevelDebug, "", nil, args)
}

// Info logs a message at info level
func (l *Logger) Info(args ...any) {
	l.log(0, LevelInfo, "", nil, args)
}

// Warn logs a message at warning level
func (l *Logger) Warn(args ...any) {
	l.log(0, LevelWarn, "", nil, args)
}

// Error logs a message at error level
func (l *Logger) Error(args ...any) {
	l.log(0, LevelError, "", nil, args)
}

// Log logs a message at an arbitrary numeric level
func (l *Logger) Log(level int64, args ...any) {
	l.log(0, level, "", nil, args)
}

// Tag returns a front-end whose records carry tag
func (l *Logger) Tag(tag string) *Tagged {
	return &Tagged{logger: l, tag: tag}
}

// With returns an untagged front-end whose records carry the context entry
func (l *Logger) With(key, value string) *Tagged {
	return (&Tagged{logger: l}).With(key, value)
}

// Enabled reports whether records of level would be written
func (l *Logger) Enabled(level int64) bool {
	p := l.pipe.Load()
	return p != nil && l.state.IsInitialized.Load() && level >= p.cfg.Level
}

// Tagged logs records with a fixed tag and context. It is immutable and safe
// for concurrent use.
type Tagged struct {
	logger  *Logger
	tag     string
	context map[string]string
}

// With returns a copy that adds key=value to the context
func (t *Tagged) With(key, value string) *Tagged {
	ctx := make(map[string]string, len(t.context)+1)
	for k, v := range t.context {
		ctx[k] = v
	}
	ctx[key] = value
	return &Tagged{logger: t.logger, tag: t.tag, context: ctx}
}

// Trace logs a message at trace level
func (t *Tagged) Trace(args ...any) {
	t.logger.log(0, LevelTrace, t.tag, t.context, args)
}

// Debug logs a message at debug level
func (t *Tagged) Debug(args ...any) {
	t.logger.log(0, LevelDebug, t.tag, t.context, args)
}

// Info logs a message at info level
func (t *Tagged) Info(args ...any) {
	t.logger.log(0, LevelInfo, t.tag, t.context, args)
}

// Warn logs a message at warning level
func (t *Tagged) Warn(args ...any) {
	t.logger.log(0, LevelWarn, t.tag, t.context, args)
}

// Error logs a message at error level
func (t *Tagged) Error(args ...any) {
	t.logger.log(0, LevelError, t.tag, t.context, args)
}

// Log logs a message at an arbitrary numeric level
func (t *Tagged) Log(level int64, args ...any) {
	t.logger.log(0, level, t.tag, t.context, args)
}

// internalLog handles writing internal logger diagnostics to stderr, if enabled
func (l *Logger) internalLog(format string, args ...any) {
	cfg := l.getConfig()
	if !cfg.InternalErrorsToStderr {
		return
	}

	if !strings.HasPrefix(format, "rotlog: ") {
		format = "rotlog: " + format
	}
	fmt.Fprintf(os.Stderr, format, args...)
}
