package main

import (
	"fmt"
	"time"

	"github.com/lixenwraith/rotlog"
)

// TestPayload defines a struct for testing complex type serialization.
type TestPayload struct {
	RequestID uint64
	User      string
	Metrics   map[string]float64
}

func main() {
	fmt.Println("--- Logger Raw Format Test ---")

	byteRecord := []byte("binary\ndata\twith\x00null")

	structRecord := TestPayload{
		RequestID: 9223372036854775807,
		User:      "test_user",
		Metrics: map[string]float64{
			"latency_ms":  15.7,
			"cpu_percent": 88.2,
		},
	}

	// --- 1. Raw output on the console only ---
	// Raw lines carry no timestamp or level and dump composite values in full
	fmt.Println("\n[1] Raw output on stdout")
	logger1, err := rotlog.NewBuilder().
		Format("raw").
		DisableFile(true).
		EnableConsole(true).
		ConsoleTarget("stdout").
		WritingThread(false).
		Build()
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		return
	}
	logger1.Info("Byte Record ->", byteRecord)
	logger1.Info("Struct Record ->", structRecord)
	logger1.Shutdown()

	// --- 2. The same records as text and json, for comparison ---
	for _, format := range []string{"txt", "json"} {
		fmt.Printf("\n[2] Format %q on stdout\n", format)
		logger2 := rotlog.NewLogger()
		err = logger2.ApplyConfigString(
			"enable_file=false",
			"enable_console=true",
			"console_target=stdout",
			"format="+format,
		)
		if err != nil {
			fmt.Printf("Failed to initialize logger: %v\n", err)
			return
		}
		logger2.Tag("raw").Info("Byte Record ->", byteRecord)
		logger2.Tag("raw").Info("Struct Record ->", structRecord)
		logger2.Shutdown(100 * time.Millisecond)
	}

	fmt.Println("\n--- Test Complete ---")
}
