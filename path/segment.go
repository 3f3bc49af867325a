// Package path renders dynamic log file paths from a tree of segments and finds
// the most recently generated file for a pattern, so that a restarted process
// can continue writing to it.
//
// A pattern such as "logs/app_{date: yyyy-MM-dd}_{count}.log" is parsed into a
// Bundle of Static, DateTime and Count segments. Every segment can render its
// part for a point in time and can look up its part of the latest existing path
// in the directory named by the already rendered prefix.
package path

import (
	"os"
	"strings"
	"time"
)

// Segment is one part of a dynamic path
type Segment interface {
	// Resolve appends the rendered segment to b, which already holds the
	// rendered path prefix. All segments of one path share the same date.
	Resolve(b *strings.Builder, date time.Time) error

	// FindLatest returns the text this segment contributes to the latest
	// existing path starting with prefix. The boolean is false if no matching
	// file system entry exists.
	FindLatest(prefix string) (string, bool, error)
}

// Static is a segment with fixed text
type Static struct {
	text string
}

// NewStatic creates a static segment
func NewStatic(text string) *Static {
	return &Static{text: text}
}

// Text returns the fixed text
func (s *Static) Text() string {
	return s.text
}

// Resolve appends the fixed text
func (s *Static) Resolve(b *strings.Builder, _ time.Time) error {
	b.WriteString(s.text)
	return nil
}

// FindLatest returns the fixed text
func (s *Static) FindLatest(_ string) (string, bool, error) {
	return s.text, true, nil
}

// Bundle renders a sequence of segments against one shared date
type Bundle struct {
	segments []Segment
}

// NewBundle creates a bundle of the passed segments in order
func NewBundle(segments ...Segment) *Bundle {
	return &Bundle{segments: segments}
}

// Segments returns the child segments
func (s *Bundle) Segments() []Segment {
	return s.segments
}

// Resolve renders all children in order with the same date
func (s *Bundle) Resolve(b *strings.Builder, date time.Time) error {
	for _, segment := range s.segments {
		if err := segment.Resolve(b, date); err != nil {
			return err
		}
	}
	return nil
}

// FindLatest chains the children, each one searching below the prefix
// extended by the results of its predecessors
func (s *Bundle) FindLatest(prefix string) (string, bool, error) {
	var found strings.Builder
	for _, segment := range s.segments {
		text, ok, err := segment.FindLatest(prefix + found.String())
		if err != nil || !ok {
			return "", false, err
		}
		found.WriteString(text)
	}
	return found.String(), true, nil
}

// splitPrefix separates a rendered path prefix into the directory to scan and
// the file name prefix that entries must start with
func splitPrefix(prefix string) (dir string, name string) {
	i := strings.LastIndexAny(prefix, separators)
	if i < 0 {
		return ".", prefix
	}
	return prefix[:i+1], prefix[i+1:]
}

// listNames returns the entry names of dir; a missing directory has no entries
func listNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmtErrorf("failed to read directory '%s': %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

// leadingDigits returns the longest prefix of s consisting of ASCII digits
func leadingDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}
