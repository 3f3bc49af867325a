package main

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/rotlog"
)

// Simulate rapid reconfiguration
func main() {
	var count atomic.Int64

	logger := rotlog.NewLogger()

	err := logger.ApplyConfigString("file_pattern=./reconfig_logs/{date: yyyy-MM-dd_HH-mm}_{count}.log")
	if err != nil {
		fmt.Printf("Initial config error: %v\n", err)
		return
	}

	// Log something constantly
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			logger.Info("Test log", i)
			count.Add(1)
			time.Sleep(time.Millisecond)
		}
	}()

	// Trigger multiple reconfigurations rapidly; each one drains the old
	// writing thread and continues the latest file
	for i := 0; i < 10; i++ {
		queueSize := fmt.Sprintf("queue_size=%d", 100*(i+1))
		format := "format=txt"
		if i%2 == 1 {
			format = "format=json"
		}
		if err := logger.ApplyConfigString(queueSize, format); err != nil {
			fmt.Printf("Reconfig error: %v\n", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(500 * time.Millisecond)
	close(stop)
	<-done

	stats := logger.Stats()
	fmt.Printf("Attempted: %d, accepted: %d, internal errors: %d\n",
		count.Load(), stats.TotalRecords, stats.InternalErrors)

	if err := logger.Shutdown(time.Second); err != nil {
		fmt.Printf("Shutdown error: %v\n", err)
	}
}
