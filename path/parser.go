package path

import (
	"sort"
	"strings"
	"sync"
)

// SegmentBuilder creates a segment for a placeholder. The argument is the
// trimmed text after the colon, empty if the placeholder has none.
type SegmentBuilder func(argument string) (Segment, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]SegmentBuilder{
		"date":  buildDateTime,
		"count": buildCount,
		"pid":   buildProcessID,
	}
)

// RegisterSegment makes a placeholder name available to Parse. A later
// registration of the same name replaces the earlier one.
func RegisterSegment(name string, builder SegmentBuilder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = builder
}

// Segments returns the registered placeholder names in sorted order
func Segments() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupSegment(name string) (SegmentBuilder, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	builder, ok := registry[strings.ToLower(name)]
	return builder, ok
}

// Parse builds the segment tree for a path pattern. Placeholders are written as
// "{name}" or "{name: argument}". Text in single quotes is taken literally and
// two single quotes produce one quote character.
func Parse(pattern string) (Segment, error) {
	if pattern == "" {
		return nil, fmtErrorf("empty path pattern")
	}

	var (
		segments []Segment
		text     strings.Builder
	)

	flushText := func() {
		if text.Len() > 0 {
			segments = append(segments, NewStatic(text.String()))
			text.Reset()
		}
	}

	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; c {
		case '\'':
			if i+1 < len(pattern) && pattern[i+1] == '\'' {
				text.WriteByte('\'')
				i++
				continue
			}
			end := strings.IndexByte(pattern[i+1:], '\'')
			if end < 0 {
				return nil, fmtErrorf("missing closing quote in path pattern '%s'", pattern)
			}
			text.WriteString(pattern[i+1 : i+1+end])
			i += end + 1

		case '{':
			end := strings.IndexAny(pattern[i+1:], "{}")
			if end < 0 || pattern[i+1+end] != '}' {
				return nil, fmtErrorf("unbalanced '{' at position %d in path pattern '%s'", i, pattern)
			}
			segment, err := buildPlaceholder(pattern[i+1 : i+1+end])
			if err != nil {
				return nil, err
			}
			flushText()
			segments = append(segments, segment)
			i += end + 1

		case '}':
			return nil, fmtErrorf("unbalanced '}' at position %d in path pattern '%s'", i, pattern)

		default:
			text.WriteByte(c)
		}
	}
	flushText()

	if len(segments) == 1 {
		return segments[0], nil
	}
	return NewBundle(segments...), nil
}

// buildPlaceholder resolves "name" or "name: argument" through the registry
func buildPlaceholder(placeholder string) (Segment, error) {
	name, argument, _ := strings.Cut(placeholder, ":")
	name = strings.TrimSpace(name)
	argument = strings.TrimSpace(argument)

	builder, ok := lookupSegment(name)
	if !ok {
		return nil, fmtErrorf("%w: '%s'", ErrUnknownSegment, name)
	}
	segment, err := builder(argument)
	if err != nil {
		return nil, fmtErrorf("invalid placeholder '{%s}': %w", placeholder, err)
	}
	return segment, nil
}

func buildDateTime(argument string) (Segment, error) {
	return NewDateTime(argument)
}

func buildCount(argument string) (Segment, error) {
	if argument != "" {
		return nil, fmtErrorf("count takes no argument")
	}
	return NewCount(), nil
}

func buildProcessID(argument string) (Segment, error) {
	if argument != "" {
		return nil, fmtErrorf("pid takes no argument")
	}
	return NewProcessID(), nil
}
