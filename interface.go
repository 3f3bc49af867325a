package rotlog

// Writer is a log sink. Writers are not safe for concurrent use: they are
// owned either by one writing thread or by a logger that serializes calls.
type Writer interface {
	// RequiredFields returns the record fields the writer outputs
	RequiredFields() FieldSet
	// Log writes one record, possibly buffered
	Log(r *Record) error
	// Flush writes buffered data
	Flush() error
	// Close flushes and releases resources; it is the last call on the writer
	Close() error
}

// Renderer turns records into bytes
type Renderer interface {
	// Render appends the rendered record to buf and returns the result
	Render(buf []byte, r *Record) []byte
	// RequiredFields returns the record fields the output contains
	RequiredFields() FieldSet
}
