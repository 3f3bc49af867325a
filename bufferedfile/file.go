// Package bufferedfile wraps one log file with a fixed-capacity write buffer.
//
// Writes are collected in a chunk of C bytes. A full chunk is written in one
// system call and payloads larger than the chunk bypass the buffer in whole
// C-sized pieces, so the file content is identical to what unbuffered writes of
// the same byte sequence would produce, however the input is split.
package bufferedfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File is a buffered, append-only log file. It is not safe for concurrent use.
type File struct {
	path  string
	file  io.WriteCloser
	isNew bool

	chunk    []byte // len == capacity
	size     int    // bytes pending in chunk
	limit    int    // flush threshold for the current chunk, 1..capacity
	capacity int

	written int64 // bytes handed to the OS
}

// Open opens the file at path for appending, creating missing parent
// directories. When appendMode is false an existing file is deleted first.
func Open(path string, capacity int, appendMode bool) (*File, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("bufferedfile: capacity must be positive: %d", capacity)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("bufferedfile: failed to create directory '%s': %w", dir, err)
		}
	}

	if !appendMode {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("bufferedfile: failed to delete '%s': %w", path, err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("bufferedfile: failed to open '%s': %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("bufferedfile: failed to stat '%s': %w", path, err)
	}

	length := info.Size()
	return &File{
		path:     path,
		file:     f,
		isNew:    length == 0,
		chunk:    make([]byte, capacity),
		limit:    capacity - int(length%int64(capacity)),
		capacity: capacity,
		written:  length,
	}, nil
}

// Path returns the path the file was opened with
func (f *File) Path() string {
	return f.path
}

// IsNew reports whether the file was empty when it was opened
func (f *File) IsNew() bool {
	return f.isNew
}

// Size returns the logical file size including buffered bytes
func (f *File) Size() int64 {
	return f.written + int64(f.size)
}

// Write buffers p. Whenever the current chunk reaches its limit the chunk is
// written out, whole chunks of the remaining input go straight to the file and
// the tail is kept in the buffer.
func (f *File) Write(p []byte) (int, error) {
	total := len(p)

	n := copy(f.chunk[f.size:f.limit], p)
	f.size += n
	p = p[n:]

	if f.size < f.limit {
		return total, nil
	}

	if err := f.writeBuffered(); err != nil {
		return total - len(p), err
	}

	if whole := len(p) / f.capacity * f.capacity; whole > 0 {
		n, err := f.writeDirect(p[:whole])
		if err != nil {
			return total - len(p) + n, err
		}
		p = p[whole:]
	}

	f.size = copy(f.chunk, p)
	return total, nil
}

// Flush writes all buffered bytes without closing the file. The next chunk
// limit shrinks by the flushed amount so later full chunks stay aligned.
func (f *File) Flush() error {
	if f.size == 0 {
		return nil
	}
	return f.writeBuffered()
}

// Close flushes pending bytes and releases the file handle
func (f *File) Close() error {
	flushErr := f.Flush()
	if err := f.file.Close(); err != nil {
		if flushErr != nil {
			return fmt.Errorf("%v; bufferedfile: failed to close '%s': %w", flushErr, f.path, err)
		}
		return fmt.Errorf("bufferedfile: failed to close '%s': %w", f.path, err)
	}
	return flushErr
}

// writeBuffered writes the buffered bytes. Whatever reached the file leaves
// the chunk, so after a partial write only the unwritten tail stays buffered.
func (f *File) writeBuffered() error {
	n, err := f.writeDirect(f.chunk[:f.size])
	if n > 0 {
		f.size = copy(f.chunk, f.chunk[n:f.size])
		f.limit -= n
		if f.limit <= 0 {
			f.limit = f.capacity
		}
	}
	return err
}

func (f *File) writeDirect(p []byte) (int, error) {
	n, err := f.file.Write(p)
	f.written += int64(n)
	if err != nil {
		return n, fmt.Errorf("bufferedfile: failed to write '%s': %w", f.path, err)
	}
	return n, nil
}
