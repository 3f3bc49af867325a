package rotlog

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// task is one record bound for one writer, or a flush confirmation when
// confirm is set; the zero task is the shutdown sentinel
type task struct {
	writer  Writer
	record  *Record
	confirm chan struct{}
}

func (t task) isSentinel() bool {
	return t.writer == nil && t.record == nil && t.confirm == nil
}

// WritingThread outputs records on a single background goroutine.
//
// Producers append to a bounded waiting queue. The goroutine swaps it with its
// working queue, writes the batch in order and flushes every writer it has
// seen so far. A producer finding the waiting queue full blocks until the next
// swap, except for diagnostics records which are dropped.
type WritingThread struct {
	queueSize int
	report    func(err error, msg string)

	mu        sync.Mutex
	waiting   []task
	working   []task
	accepting bool
	space     chan struct{} // closed when a full waiting queue is swapped out

	wake    chan struct{}
	done    chan struct{}
	started atomic.Bool

	// Owned by the worker goroutine
	writers []Writer
	seen    map[Writer]struct{}
}

// NewWritingThread creates a stopped writing thread with a waiting queue of
// queueSize tasks. report receives errors of writers; it is called from the
// writing goroutine and may be nil.
func NewWritingThread(queueSize int, report func(err error, msg string)) *WritingThread {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &WritingThread{
		queueSize: queueSize,
		report:    report,
		waiting:   make([]task, 0, queueSize),
		working:   make([]task, 0, queueSize),
		accepting: true,
		space:     make(chan struct{}),
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
		seen:      make(map[Writer]struct{}),
	}
}

// Start launches the writing goroutine. Further calls do nothing.
func (t *WritingThread) Start() {
	if t.started.CompareAndSwap(false, true) {
		go t.run()
	}
}

// Enqueue adds a record for w to the end of the waiting queue. It blocks while
// the queue is full unless r is a diagnostics record, which is dropped then.
// Records enqueued after Shutdown are dropped.
func (t *WritingThread) Enqueue(w Writer, r *Record) {
	if w == nil || r == nil {
		return
	}
	t.enqueue(task{writer: w, record: r})
}

// FlushAsync enqueues a flush request. The returned channel is closed once
// every record enqueued before it has been written and its writer flushed.
func (t *WritingThread) FlushAsync() <-chan struct{} {
	confirm := make(chan struct{})
	t.enqueue(task{confirm: confirm})
	return confirm
}

// Shutdown enqueues the shutdown sentinel. Records enqueued before it are
// still written. It does not wait for the goroutine; use Join or Done.
func (t *WritingThread) Shutdown() {
	t.enqueue(task{})
}

// Done is closed when the writing goroutine has exited
func (t *WritingThread) Done() <-chan struct{} {
	return t.done
}

// Join waits up to timeout for the writing goroutine to exit
func (t *WritingThread) Join(timeout time.Duration) error {
	if !t.started.Load() {
		return nil
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-t.done:
		return nil
	case <-timer.C:
		return ErrShutdownTimeout
	}
}

func (t *WritingThread) enqueue(tk task) {
	diagnostic := tk.record.isDiagnostic()

	for {
		t.mu.Lock()
		if !t.accepting {
			t.mu.Unlock()
			return
		}

		if len(t.waiting) < t.queueSize {
			t.waiting = append(t.waiting, tk)
			if tk.isSentinel() {
				t.accepting = false
			}
			first := len(t.waiting) == 1
			t.mu.Unlock()

			if first {
				select {
				case t.wake <- struct{}{}:
				default:
				}
			}
			return
		}

		if diagnostic {
			t.mu.Unlock()
			return
		}
		space := t.space
		t.mu.Unlock()
		<-space
	}
}

// run is the writing goroutine
func (t *WritingThread) run() {
	defer close(t.done)

	for {
		tasks := t.swap()
		if len(tasks) == 0 {
			<-t.wake
			continue
		}

		stop, regular := false, false
		var confirms []chan struct{}
		for _, tk := range tasks {
			if tk.isSentinel() {
				stop = true
				break
			}
			if tk.confirm != nil {
				confirms = append(confirms, tk.confirm)
				continue
			}
			regular = regular || !tk.record.isDiagnostic()
			t.deliver(tk)
		}

		// Flush errors after a diagnostics only batch would feed themselves
		t.flushAll(regular)
		for _, c := range confirms {
			close(c)
		}
		if stop {
			return
		}
	}
}

// swap exchanges the queues and releases producers blocked on a full queue
func (t *WritingThread) swap() []task {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.waiting) == 0 {
		return nil
	}

	clear(t.working)
	batch := t.waiting
	t.waiting = t.working[:0]
	t.working = batch

	if len(batch) >= t.queueSize {
		close(t.space)
		t.space = make(chan struct{})
	}
	return batch
}

// deliver writes one record, containing errors and panics of the writer
func (t *WritingThread) deliver(tk task) {
	if _, ok := t.seen[tk.writer]; !ok {
		t.seen[tk.writer] = struct{}{}
		t.writers = append(t.writers, tk.writer)
	}

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic in writer: %v", r)
			}
		}()
		return tk.writer.Log(tk.record)
	}()

	if err != nil && !tk.record.isDiagnostic() {
		t.reportError(err, "failed to write log entry")
	}
}

// flushAll flushes every writer that has received a record so far
func (t *WritingThread) flushAll(report bool) {
	for _, w := range t.writers {
		err := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("panic in writer: %v", r)
				}
			}()
			return w.Flush()
		}()
		if err != nil && report {
			t.reportError(err, "failed to flush writer")
		}
	}
}

func (t *WritingThread) reportError(err error, msg string) {
	if t.report != nil {
		t.report(err, msg)
	}
}
