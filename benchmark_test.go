package rotlog

import (
	"path/filepath"
	"testing"
	"time"
)

// nopWriter discards records
type nopWriter struct{}

func (nopWriter) RequiredFields() FieldSet { return 0 }
func (nopWriter) Log(*Record) error        { return nil }
func (nopWriter) Flush() error             { return nil }
func (nopWriter) Close() error             { return nil }

// BenchmarkLoggerInfo benchmarks the performance of standard Info logging
func BenchmarkLoggerInfo(b *testing.B) {
	logger, _ := createTestLogger(b)
	defer logger.Shutdown()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", i)
	}
}

// BenchmarkLoggerJSON benchmarks the performance of JSON formatted logging
func BenchmarkLoggerJSON(b *testing.B) {
	logger, _ := createTestLogger(b)
	defer logger.Shutdown()

	if err := logger.ApplyConfigString("format=json"); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", i, "key", "value")
	}
}

// BenchmarkLoggerTagged benchmarks logging with a tag and context
func BenchmarkLoggerTagged(b *testing.B) {
	logger, _ := createTestLogger(b)
	defer logger.Shutdown()

	tagged := logger.Tag("db").With("table", "users")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tagged.Info("benchmark", i)
	}
}

// BenchmarkLoggerSynchronous benchmarks logging without a writing thread
func BenchmarkLoggerSynchronous(b *testing.B) {
	logger, _ := createTestLogger(b)
	defer logger.Shutdown()

	if err := logger.ApplyConfigString("writing_thread=false"); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", i)
	}
}

// BenchmarkLoggerFiltered benchmarks records below the configured level
func BenchmarkLoggerFiltered(b *testing.B) {
	logger, _ := createTestLogger(b)
	defer logger.Shutdown()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Debug("filtered", i)
	}
}

// BenchmarkConcurrentLogging benchmarks the logger's performance under concurrent load
func BenchmarkConcurrentLogging(b *testing.B) {
	logger, _ := createTestLogger(b)
	defer logger.Shutdown()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			logger.Info("concurrent", i)
			i++
		}
	})
}

// BenchmarkFileWriter benchmarks rendering and buffered writes with size rotation
func BenchmarkFileWriter(b *testing.B) {
	r, err := NewRenderer("txt", time.RFC3339, FlagShowLevel)
	if err != nil {
		b.Fatal(err)
	}
	w, err := NewFileWriter(FileWriterConfig{
		Pattern:  filepath.Join(b.TempDir(), "log_{count}.log"),
		Policies: []string{"size: 1MB"},
		Renderer: r,
	})
	if err != nil {
		b.Fatal(err)
	}
	defer w.Close()

	rec := &Record{Level: LevelInfo, Message: "benchmark message", Args: []any{42}}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := w.Log(rec); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkWritingThread benchmarks queue handoff to a writer that does nothing
func BenchmarkWritingThread(b *testing.B) {
	thread := NewWritingThread(DefaultQueueSize, nil)
	thread.Start()

	rec := &Record{Level: LevelInfo, Message: "benchmark message"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		thread.Enqueue(nopWriter{}, rec)
	}
	thread.Shutdown()
	if err := thread.Join(10 * time.Second); err != nil {
		b.Fatal(err)
	}
}
