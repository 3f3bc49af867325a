package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/lixenwraith/rotlog"
	"github.com/lixenwraith/rotlog/compat"
	"github.com/valyala/fasthttp"
)

func main() {
	// Create and configure logger
	logger := rotlog.NewLogger()
	err := logger.ApplyConfigString(
		"file_pattern=/var/log/fasthttp/access_{count}.log",
		"policies=startup, size: 20MB",
		"level=0",
		"format=txt",
		"file_buffer_size=2048",
	)
	if err != nil {
		panic(err)
	}
	defer logger.Shutdown()

	// Create fasthttp adapter with custom level detection
	fasthttpAdapter := compat.NewFastHTTPAdapter(
		logger,
		compat.WithDefaultLevel(rotlog.LevelInfo),
		compat.WithLevelDetector(customLevelDetector),
	)

	// Configure fasthttp server
	server := &fasthttp.Server{
		Handler: requestHandler,
		Logger:  fasthttpAdapter,

		// Other server settings
		Name:              "MyServer",
		Concurrency:       fasthttp.DefaultConcurrency,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		TCPKeepalive:      true,
		ReduceMemoryUsage: true,
	}

	// Start server
	fmt.Println("Starting server on :8080")
	if err := server.ListenAndServe(":8080"); err != nil {
		panic(err)
	}
}

func requestHandler(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("text/plain")
	fmt.Fprintf(ctx, "Hello, world! Path: %s\n", ctx.Path())
}

func customLevelDetector(msg string) (int64, bool) {
	// Inspect specific fasthttp message patterns first
	if strings.Contains(msg, "connection cannot be served") {
		return rotlog.LevelWarn, true
	}
	if strings.Contains(msg, "error when serving connection") {
		return rotlog.LevelError, true
	}

	// Use default detection
	return compat.DetectLogLevel(msg)
}
