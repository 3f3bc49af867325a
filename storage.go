package rotlog

import (
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/lixenwraith/rotlog/bufferedfile"
	"github.com/lixenwraith/rotlog/path"
	"github.com/lixenwraith/rotlog/policy"
)

// FileWriterConfig configures a FileWriter
type FileWriterConfig struct {
	// Pattern is the dynamic path pattern, e.g. "logs/{date: yyyy-MM-dd}_{count}.log"
	Pattern string
	// Charset of the file content, UTF-8 if empty
	Charset string
	// Policies are rollover policy definitions such as "size: 10MB"; none means endless
	Policies []string
	// BufferSize is the chunk size of the buffered file
	BufferSize int
	// Renderer turns records into text; nil selects a default txt renderer
	Renderer Renderer
	// Clock provides the time for paths and date policies; nil means time.Now
	Clock func() time.Time
}

// FileWriter writes rendered records to rolling log files. On creation it
// continues the latest file of its pattern if the policies allow it, and it
// starts a new file whenever the policies reject an entry.
type FileWriter struct {
	path       *path.DynamicPath
	policy     policy.Policy
	charset    *charset
	renderer   Renderer
	clock      func() time.Time
	bufferSize int

	file    *bufferedfile.File
	scratch []byte
}

// NewFileWriter creates a file writer and opens its first file
func NewFileWriter(cfg FileWriterConfig) (*FileWriter, error) {
	if strings.TrimSpace(cfg.Pattern) == "" {
		return nil, fmtErrorf("file pattern cannot be empty")
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultFileBufferSize
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Renderer == nil {
		r, err := NewRenderer("txt", time.RFC3339Nano, FlagDefault)
		if err != nil {
			return nil, err
		}
		cfg.Renderer = r
	}

	dp, err := path.NewDynamicPath(cfg.Pattern)
	if err != nil {
		return nil, fmtErrorf("invalid file pattern: %w", err)
	}
	cs, err := newCharset(cfg.Charset)
	if err != nil {
		return nil, err
	}
	pol, err := policy.NewBundle(cfg.Policies, policy.WithClock(cfg.Clock), policy.WithEncoding(cs.encoding))
	if err != nil {
		return nil, fmtErrorf("invalid policies: %w", err)
	}

	w := &FileWriter{
		path:       dp,
		policy:     pol,
		charset:    cs,
		renderer:   cfg.Renderer,
		clock:      cfg.Clock,
		bufferSize: cfg.BufferSize,
		scratch:    make([]byte, 0, 1024),
	}

	latest, found, err := dp.LatestPath()
	if err != nil {
		return nil, fmtErrorf("failed to find latest log file: %w", err)
	}
	if found {
		continued, err := pol.CanContinueFile(latest)
		if err != nil {
			return nil, fmtErrorf("failed to check log file '%s': %w", latest, err)
		}
		if continued {
			if err := w.open(latest, true); err != nil {
				return nil, err
			}
			return w, nil
		}
	}

	if err := w.openNew(); err != nil {
		return nil, err
	}
	return w, nil
}

// RequiredFields returns the fields of the renderer
func (w *FileWriter) RequiredFields() FieldSet {
	return w.renderer.RequiredFields()
}

// Path returns the path of the current file, empty if none is open
func (w *FileWriter) Path() string {
	if w.file == nil {
		return ""
	}
	return w.file.Path()
}

// Log renders and encodes r, rotating first if the policies reject the entry
func (w *FileWriter) Log(r *Record) error {
	w.scratch = w.renderer.Render(w.scratch[:0], r)
	data, err := w.charset.encode(w.scratch)
	if err != nil {
		return fmtErrorf("failed to encode log entry as %s: %w", w.charset.name, err)
	}

	if w.file == nil {
		// A previous rotation failed to open a file
		if err := w.openNew(); err != nil {
			return err
		}
		w.policy.CanAcceptLogEntry(len(data))
	} else if !w.policy.CanAcceptLogEntry(len(data)) {
		if err := w.rotate(); err != nil {
			return err
		}
		w.policy.CanAcceptLogEntry(len(data))
	}

	if _, err := w.file.Write(data); err != nil {
		return err
	}
	return nil
}

// Flush writes buffered data to the current file
func (w *FileWriter) Flush() error {
	if w.file == nil {
		return nil
	}
	return w.file.Flush()
}

// Close flushes and closes the current file
func (w *FileWriter) Close() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// rotate closes the current file and starts a new one
func (w *FileWriter) rotate() error {
	closeErr := w.file.Close()
	w.file = nil
	if err := w.openNew(); err != nil {
		return combineErrors(closeErr, err)
	}
	return closeErr
}

func (w *FileWriter) openNew() error {
	p, err := w.path.NewPath(w.clock())
	if err != nil {
		return fmtErrorf("failed to resolve new log file path: %w", err)
	}
	return w.open(p, false)
}

// open opens p, binds the policies to it and writes the byte order mark into
// new files
func (w *FileWriter) open(p string, appendMode bool) error {
	f, err := bufferedfile.Open(p, w.bufferSize, appendMode)
	if err != nil {
		return fmtErrorf("failed to open log file: %w", err)
	}
	if err := w.policy.Init(p); err != nil {
		return combineErrors(fmtErrorf("failed to initialize policies for '%s': %w", p, err), f.Close())
	}
	if f.IsNew() && len(w.charset.bom) > 0 {
		if _, err := f.Write(w.charset.bom); err != nil {
			return combineErrors(err, f.Close())
		}
	}
	w.file = f
	return nil
}

// charset encodes rendered UTF-8 text for a file
type charset struct {
	name     string
	bom      []byte
	encoding encoding.Encoding // nil for UTF-8
	encoder  *encoding.Encoder
}

// newCharset resolves a charset name. UTF-16 means big endian with a byte
// order mark; other IANA names replace characters they cannot represent.
func newCharset(name string) (*charset, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "UTF-8", "UTF8":
		return &charset{name: "UTF-8"}, nil
	case "UTF-16":
		enc := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
		return &charset{name: "UTF-16", bom: []byte{0xFE, 0xFF}, encoding: enc, encoder: enc.NewEncoder()}, nil
	case "UTF-16BE":
		enc := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
		return &charset{name: "UTF-16BE", encoding: enc, encoder: enc.NewEncoder()}, nil
	case "UTF-16LE":
		enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
		return &charset{name: "UTF-16LE", encoding: enc, encoder: enc.NewEncoder()}, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmtErrorf("unsupported charset '%s'", name)
	}
	return &charset{name: name, encoding: enc, encoder: encoding.ReplaceUnsupported(enc.NewEncoder())}, nil
}

func (c *charset) encode(data []byte) ([]byte, error) {
	if c.encoder == nil {
		return data, nil
	}
	return c.encoder.Bytes(data)
}
