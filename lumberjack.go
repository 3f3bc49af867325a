package rotlog

import (
	"gopkg.in/natefinch/lumberjack.v2"
)

// LumberjackConfig configures a LumberjackWriter
type LumberjackConfig struct {
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	LocalTime  bool
}

// LumberjackWriter writes rendered records to a size rotated file with
// numbered backups, as an alternative to FileWriter for deployments that
// expect lumberjack's file layout
type LumberjackWriter struct {
	logger   *lumberjack.Logger
	renderer Renderer
	scratch  []byte
}

// NewLumberjackWriter creates a lumberjack backed writer
func NewLumberjackWriter(cfg LumberjackConfig, renderer Renderer) (*LumberjackWriter, error) {
	if cfg.Filename == "" {
		return nil, fmtErrorf("lumberjack filename cannot be empty")
	}
	if cfg.MaxSizeMB < 0 || cfg.MaxBackups < 0 || cfg.MaxAgeDays < 0 {
		return nil, fmtErrorf("lumberjack limits cannot be negative")
	}

	return &LumberjackWriter{
		logger: &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
			LocalTime:  cfg.LocalTime,
		},
		renderer: renderer,
		scratch:  make([]byte, 0, 1024),
	}, nil
}

// RequiredFields returns the fields of the renderer
func (w *LumberjackWriter) RequiredFields() FieldSet {
	return w.renderer.RequiredFields()
}

// Log renders r and writes it; lumberjack rotates by size on its own
func (w *LumberjackWriter) Log(r *Record) error {
	w.scratch = w.renderer.Render(w.scratch[:0], r)
	_, err := w.logger.Write(w.scratch)
	return err
}

// Flush does nothing, every Log call is an unbuffered write
func (w *LumberjackWriter) Flush() error {
	return nil
}

// Rotate closes the current file and starts a new one
func (w *LumberjackWriter) Rotate() error {
	return w.logger.Rotate()
}

// Close closes the current file
func (w *LumberjackWriter) Close() error {
	return w.logger.Close()
}
