package main

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/lixenwraith/rotlog"
)

const configFile = "simple_config.toml"

// Example TOML content
var tomlContent = `
# Example simple_config.toml
[log]
  level = -4 # Debug
  format = "txt"
  show_timestamp = true
  show_level = true
  show_source = true
  file_pattern = "./simple_logs/app_{count}.log"
  policies = "count: 100"
  writing_thread = false # Every record is on disk when the call returns
  enable_console = true
  console_target = "stderr"
`

func main() {
	if err := os.WriteFile(configFile, []byte(tomlContent), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
		os.Exit(1)
	}
	defer os.Remove(configFile)

	if err := rotlog.InitFromFile(configFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := rotlog.Shutdown(time.Second); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		}
	}()

	rotlog.Info("Application starting", "pid", os.Getpid())
	rotlog.Debug("Loaded configuration", configFile)

	db := rotlog.Tag("db")
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			q := db.With("query", fmt.Sprint(id))
			q.Info("Query started")
			time.Sleep(10 * time.Millisecond)
			if id == 2 {
				q.Error("Query failed", errors.New("connection reset"))
				return
			}
			q.Info("Query finished")
		}(i)
	}
	wg.Wait()

	rotlog.Warn("Application stopping")
	fmt.Println("Log files are in ./simple_logs")
}
