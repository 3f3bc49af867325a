package main

import (
	"context"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/lixenwraith/rotlog"
)

const (
	configFile = "stress_config.toml"
	logsDir    = "./logs"

	producers      = 64
	recordsPerRun  = 200_000
	maxMessageSize = 4096
	flushEvery     = 25_000
)

// Rotation is forced often: a new file per start, per 1MB and per 5000 records
var tomlContent = `
[log]
  level = -4
  format = "txt"
  show_thread = true
  file_pattern = "./logs/{date: yyyy-MM-dd}/stress_{count}.log"
  policies = "startup, size: 1MB, count: 5000"
  file_buffer_size = 65536
  writing_thread = true
  queue_size = 512
  internal_errors_to_stderr = true
`

var levels = []int64{
	rotlog.LevelDebug,
	rotlog.LevelInfo,
	rotlog.LevelWarn,
	rotlog.LevelError,
}

func randomMessage(rng *rand.Rand) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "
	size := rng.Intn(maxMessageSize) + 10
	var sb strings.Builder
	sb.Grow(size)
	for i := 0; i < size; i++ {
		sb.WriteByte(chars[rng.Intn(len(chars))])
	}
	return sb.String()
}

// produce logs until the shared budget is spent or ctx is cancelled
func produce(ctx context.Context, logger *rotlog.Logger, id int, budget *atomic.Int64) {
	rng := rand.New(rand.NewSource(int64(id)))
	tagged := logger.Tag("stress").With("producer", fmt.Sprint(id))
	for seq := 0; ctx.Err() == nil; seq++ {
		n := budget.Add(-1)
		if n < 0 {
			return
		}
		tagged.Log(levels[rng.Intn(len(levels))], randomMessage(rng), "seq", seq)
		if n%flushEvery == 0 {
			if err := logger.Flush(5 * time.Second); err != nil {
				fmt.Fprintf(os.Stderr, "\nflush: %v\n", err)
			}
			fmt.Printf("\rRemaining: %8d", n)
		}
	}
}

// summarize counts the files and bytes written below dir
func summarize(dir string) (files int, bytes int64) {
	_ = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			files++
			bytes += info.Size()
		}
		return nil
	})
	return files, bytes
}

func main() {
	fmt.Println("--- Logger Stress Test ---")

	if err := os.WriteFile(configFile, []byte(tomlContent), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
		os.Exit(1)
	}
	_ = os.RemoveAll(logsDir)

	cfg, err := rotlog.NewConfigFromFile(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := rotlog.NewLogger()
	if err := logger.ApplyConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("%d producers, %d records, queue of %d. Ctrl+C stops early.\n",
		producers, recordsPerRun, cfg.QueueSize)

	var budget atomic.Int64
	budget.Store(recordsPerRun)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			produce(ctx, logger, id, &budget)
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(start)

	fmt.Println("\nShutting down logger (allowing up to 10s)...")
	if err := logger.Shutdown(10 * time.Second); err != nil {
		fmt.Fprintf(os.Stderr, "Logger shutdown error: %v\n", err)
	}

	stats := logger.Stats()
	files, size := summarize(logsDir)
	fmt.Printf("Accepted %d records in %v (%.0f/s), internal errors: %d\n",
		stats.TotalRecords, elapsed.Round(time.Millisecond),
		float64(stats.TotalRecords)/elapsed.Seconds(), stats.InternalErrors)
	fmt.Printf("Wrote %d files, %.1f MB, under %s\n", files, float64(size)/(1<<20), logsDir)
}
