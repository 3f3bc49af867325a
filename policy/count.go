package policy

import (
	"bytes"
	"io"
	"os"

	"golang.org/x/text/encoding"
)

// Count rotates after a maximum number of log entries. The entries of an
// existing file are counted as its line breaks, decoded with the file's
// encoding, so this matches the entry count only for formats that end every
// entry with exactly one line break (txt and json do; raw does not).
type Count struct {
	max      int64
	count    int64
	encoding encoding.Encoding // nil for UTF-8
}

// NewCount creates a count policy for files of at most max entries
func NewCount(max int64) (*Count, error) {
	if max <= 0 {
		return nil, fmtErrorf("maximum entry count must be positive: %d", max)
	}
	return &Count{max: max}, nil
}

// WithEncoding sets the encoding existing files are decoded with before their
// line breaks are counted
func (p *Count) WithEncoding(enc encoding.Encoding) *Count {
	p.encoding = enc
	return p
}

// CanContinueFile continues existing files with fewer than max lines
func (p *Count) CanContinueFile(path string) (bool, error) {
	info, err := statFile(path)
	if err != nil || info == nil {
		return false, err
	}
	lines, err := countLines(path, p.encoding)
	if err != nil {
		return false, err
	}
	return lines < p.max, nil
}

// Init counts the lines of an existing file
func (p *Count) Init(path string) error {
	info, err := statFile(path)
	if err != nil {
		return err
	}
	p.count = 0
	if info == nil {
		return nil
	}
	lines, err := countLines(path, p.encoding)
	if err != nil {
		return err
	}
	p.count = lines
	return nil
}

// CanAcceptLogEntry accepts entries until the maximum is reached
func (p *Count) CanAcceptLogEntry(_ int) bool {
	if p.count >= p.max {
		return false
	}
	p.count++
	return true
}

func countLines(path string, enc encoding.Encoding) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmtErrorf("failed to open '%s': %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if enc != nil {
		r = enc.NewDecoder().Reader(f)
	}

	var lines int64
	buf := make([]byte, 64*1024)
	for {
		n, err := r.Read(buf)
		lines += int64(bytes.Count(buf[:n], []byte{'\n'}))
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return 0, fmtErrorf("failed to read '%s': %w", path, err)
		}
	}
}
