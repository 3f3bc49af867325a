package rotlog

import "time"

// Source is the code location a record was logged from
type Source struct {
	File     string
	Line     int
	Function string
}

// Record is one finished log entry. It is created once per logging call and
// never modified afterwards, so it can be shared by all writers.
type Record struct {
	Timestamp time.Time
	Thread    string
	Context   map[string]string
	Source    Source
	Tag       string
	Level     int64
	Message   string
	Args      []any
	Err       error
}

// isDiagnostic reports whether r is an internal diagnostics record
func (r *Record) isDiagnostic() bool {
	return r != nil && r.Tag == DiagnosticsTag
}

// FieldSet is a set of record fields a writer outputs. The front-end skips
// populating fields no writer needs, such as the caller location.
type FieldSet uint32

// Field is a FieldSet with a single member
type Field = FieldSet

const (
	FieldTimestamp Field = 1 << iota
	FieldThread
	FieldContext
	FieldSource
	FieldTag
	FieldLevel
	FieldMessage
	FieldException
)

// Has reports whether all fields of other are in s
func (s FieldSet) Has(other FieldSet) bool {
	return s&other == other
}
