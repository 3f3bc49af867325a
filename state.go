package rotlog

import (
	"sync"
	"sync/atomic"
	"time"
)

// State encapsulates the runtime state of the logger
type State struct {
	IsInitialized  atomic.Bool
	ShutdownCalled atomic.Bool

	// Counters
	TotalRecords   atomic.Uint64 // Records that passed the level check
	InternalErrors atomic.Uint64 // Problems reported by writers or the writing thread

	flushMutex sync.Mutex // Serializes Flush calls
}

// Stats is a snapshot of the logger counters
type Stats struct {
	Initialized    bool
	TotalRecords   uint64
	InternalErrors uint64
}

// Stats returns the current counters
func (l *Logger) Stats() Stats {
	return Stats{
		Initialized:    l.state.IsInitialized.Load(),
		TotalRecords:   l.state.TotalRecords.Load(),
		InternalErrors: l.state.InternalErrors.Load(),
	}
}

// Shutdown stops the logger. With a writing thread, records logged before the
// call are written, the writers flushed, and then closed. If the thread does
// not exit within the timeout (default 5s) the writers are left open and
// ErrShutdownTimeout is returned.
func (l *Logger) Shutdown(timeout ...time.Duration) error {
	if !l.state.ShutdownCalled.CompareAndSwap(false, true) {
		return nil
	}

	l.initMu.Lock()
	defer l.initMu.Unlock()

	l.state.IsInitialized.Store(false)

	p := l.pipe.Swap(nil)
	if p == nil {
		return nil
	}

	effectiveTimeout := defaultShutdownTimeout
	if len(timeout) > 0 && timeout[0] > 0 {
		effectiveTimeout = timeout[0]
	}
	return p.close(effectiveTimeout)
}

// Flush writes all records logged so far and waits for completion or timeout.
// With a writing thread it waits until the thread has written and flushed
// every record enqueued before the call.
func (l *Logger) Flush(timeout time.Duration) error {
	l.state.flushMutex.Lock()
	defer l.state.flushMutex.Unlock()

	if !l.state.IsInitialized.Load() || l.state.ShutdownCalled.Load() {
		return ErrNotInitialized
	}
	p := l.pipe.Load()
	if p == nil {
		return ErrNotInitialized
	}

	if p.thread == nil {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.closed {
			return ErrNotInitialized
		}
		var err error
		for _, w := range p.writers {
			err = combineErrors(err, w.Flush())
		}
		return err
	}

	confirmChan := p.thread.FlushAsync()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-confirmChan:
		return nil
	case <-p.thread.Done():
		select {
		case <-confirmChan:
			return nil
		default:
			return fmtErrorf("writing thread exited before flush completed")
		}
	case <-timer.C:
		return fmtErrorf("timeout waiting for flush confirmation (%v)", timeout)
	}
}
