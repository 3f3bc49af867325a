package rotlog

import (
	"bufio"
	"io"
	"os"
)

// ConsoleWriter writes rendered records to stdout, stderr or any io.Writer
type ConsoleWriter struct {
	out      *bufio.Writer
	renderer Renderer
	scratch  []byte
}

// NewConsoleWriter creates a writer for target "stdout" or "stderr"
func NewConsoleWriter(target string, renderer Renderer) (*ConsoleWriter, error) {
	switch target {
	case "", "stdout":
		return NewStreamWriter(os.Stdout, renderer), nil
	case "stderr":
		return NewStreamWriter(os.Stderr, renderer), nil
	default:
		return nil, fmtErrorf("invalid console_target: '%s' (use stdout or stderr)", target)
	}
}

// NewStreamWriter creates a console style writer for w
func NewStreamWriter(w io.Writer, renderer Renderer) *ConsoleWriter {
	return &ConsoleWriter{
		out:      bufio.NewWriterSize(w, 4096),
		renderer: renderer,
		scratch:  make([]byte, 0, 512),
	}
}

// RequiredFields returns the fields of the renderer
func (c *ConsoleWriter) RequiredFields() FieldSet {
	return c.renderer.RequiredFields()
}

// Log renders r into the stream buffer
func (c *ConsoleWriter) Log(r *Record) error {
	c.scratch = c.renderer.Render(c.scratch[:0], r)
	_, err := c.out.Write(c.scratch)
	return err
}

// Flush writes buffered output
func (c *ConsoleWriter) Flush() error {
	return c.out.Flush()
}

// Close flushes; the underlying stream stays open
func (c *ConsoleWriter) Close() error {
	return c.out.Flush()
}
