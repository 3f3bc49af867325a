package rotlog

import (
	"time"
)

// log handles the core logging logic. skip counts wrapper frames between the
// caller and the public logging method.
func (l *Logger) log(skip int, level int64, tag string, ctx map[string]string, args []any) {
	if !l.state.IsInitialized.Load() {
		return
	}
	p := l.pipe.Load()
	if p == nil || level < p.cfg.Level {
		return
	}
	l.state.TotalRecords.Add(1)

	msg, rest, err := splitArgs(args)
	record := &Record{
		Timestamp: time.Now(),
		Tag:       tag,
		Level:     level,
		Message:   msg,
		Args:      rest,
		Err:       err,
	}
	if p.fields.Has(FieldContext) {
		record.Context = ctx
	}
	if p.fields.Has(FieldThread) {
		record.Thread = goroutineID()
	}
	if p.fields.Has(FieldSource) {
		const skipSource = 2 // log.Info -> log -> callerSource
		record.Source = callerSource(skipSource + skip)
	}

	l.dispatch(p, record)
}

// LogRecord hands a copy of a prepared record to the writers, so r stays
// untouched and may be reused. Records below the configured level are
// ignored. Fields no writer needs may be left empty.
func (l *Logger) LogRecord(r *Record) {
	if r == nil || !l.state.IsInitialized.Load() {
		return
	}
	p := l.pipe.Load()
	if p == nil || r.Level < p.cfg.Level {
		return
	}
	l.state.TotalRecords.Add(1)
	rec := *r
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	l.dispatch(p, &rec)
}

// splitArgs takes a leading string as the message and a trailing error as the
// exception of the record
func splitArgs(args []any) (string, []any, error) {
	var err error
	if n := len(args); n > 0 {
		if e, ok := args[n-1].(error); ok {
			err = e
			args = args[:n-1]
		}
	}

	var msg string
	if len(args) > 0 {
		if s, ok := args[0].(string); ok {
			msg = s
			args = args[1:]
		}
	}
	if len(args) == 0 {
		args = nil
	}
	return msg, args, err
}

// dispatch hands r to every writer, through the writing thread if there is one
func (l *Logger) dispatch(p *pipeline, r *Record) {
	if p.thread != nil {
		for _, w := range p.writers {
			p.thread.Enqueue(w, r)
		}
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	report := !r.isDiagnostic()
	for _, w := range p.writers {
		if err := w.Log(r); err != nil {
			if report {
				l.reportSync(p, err, "failed to write log entry")
			}
			continue
		}
		if err := w.Flush(); err != nil && report {
			l.reportSync(p, err, "failed to flush writer")
		}
	}
}

// diagnosticRecord describes a problem of the pipeline itself
func diagnosticRecord(err error, msg string) *Record {
	return &Record{
		Timestamp: time.Now(),
		Tag:       DiagnosticsTag,
		Level:     LevelError,
		Message:   msg,
		Err:       err,
	}
}

// reportAsync returns the error callback of the writing thread of p. It runs
// on the writing goroutine, where enqueueing a diagnostics record never blocks.
func (l *Logger) reportAsync(p *pipeline) func(error, string) {
	return func(err error, msg string) {
		l.state.InternalErrors.Add(1)
		l.internalLog("%s: %v\n", msg, err)
		if !p.cfg.InternalErrorsToWriters {
			return
		}
		r := diagnosticRecord(err, msg)
		for _, w := range p.writers {
			p.thread.Enqueue(w, r)
		}
	}
}

// reportSync writes a diagnostics record to the writers; p.mu must be held.
// Failures while writing it are not reported again.
func (l *Logger) reportSync(p *pipeline, err error, msg string) {
	l.state.InternalErrors.Add(1)
	l.internalLog("%s: %v\n", msg, err)
	if !p.cfg.InternalErrorsToWriters {
		return
	}
	r := diagnosticRecord(err, msg)
	for _, w := range p.writers {
		if w.Log(r) == nil {
			_ = w.Flush()
		}
	}
}
