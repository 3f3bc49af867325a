// Package formatter turns the parts of a log entry into one txt, json or raw line.
package formatter

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/lixenwraith/rotlog/sanitizer"
)

// Flags select the optional parts of a line
const (
	FlagRaw int64 = 1 << iota
	FlagShowTimestamp
	FlagShowLevel
	FlagShowTag
	FlagShowThread
	FlagShowSource
	FlagShowContext
	FlagDefault = FlagShowTimestamp | FlagShowLevel | FlagShowTag | FlagShowContext
)

// Entry holds the already extracted parts of a log record
type Entry struct {
	Time    time.Time
	Level   int64
	Tag     string
	Thread  string
	Source  string
	Context map[string]string
	Message string
	Args    []any
	Err     error
}

// Formatter renders entries in one line format. A Formatter holds no
// per-call state and can be shared.
type Formatter struct {
	format          string
	timestampFormat string
	enc             *sanitizer.Encoder
}

// New creates a formatter for "txt", "json" or "raw"
func New(format string) (*Formatter, error) {
	switch format {
	case "txt", "json", "raw":
	default:
		return nil, fmt.Errorf("formatter: invalid format '%s' (use txt, json, or raw)", format)
	}
	return &Formatter{
		format:          format,
		timestampFormat: time.RFC3339Nano,
		enc:             sanitizer.NewEncoder(format, nil),
	}, nil
}

// TimestampFormat sets the time layout; an empty layout keeps the current one
func (f *Formatter) TimestampFormat(layout string) *Formatter {
	if layout != "" {
		f.timestampFormat = layout
	}
	return f
}

// Sanitizer replaces the default sanitizer of the format
func (f *Formatter) Sanitizer(s *sanitizer.Sanitizer) *Formatter {
	f.enc = sanitizer.NewEncoder(f.format, s)
	return f
}

// Format returns the line format name
func (f *Formatter) Format() string {
	return f.format
}

// Append renders e and appends the line to buf
func (f *Formatter) Append(buf []byte, flags int64, e *Entry) []byte {
	if flags&FlagRaw != 0 || f.format == "raw" {
		return f.appendRaw(buf, e)
	}
	if f.format == "json" {
		return f.appendJSON(buf, flags, e)
	}
	return f.appendTxt(buf, flags, e)
}

// LevelToString converts a level to its name
func LevelToString(level int64) string {
	switch level {
	case -8:
		return "TRACE"
	case -4:
		return "DEBUG"
	case 0:
		return "INFO"
	case 4:
		return "WARN"
	case 8:
		return "ERROR"
	default:
		return "LEVEL(" + strconv.FormatInt(level, 10) + ")"
	}
}

func (f *Formatter) appendRaw(buf []byte, e *Entry) []byte {
	start := len(buf)
	if e.Message != "" {
		buf = append(buf, e.Message...)
	}
	for _, arg := range e.Args {
		if len(buf) > start {
			buf = append(buf, ' ')
		}
		buf = f.appendValue(buf, arg)
	}
	if e.Err != nil {
		if len(buf) > start {
			buf = append(buf, ' ')
		}
		buf = append(buf, e.Err.Error()...)
	}
	return buf
}

func (f *Formatter) appendTxt(buf []byte, flags int64, e *Entry) []byte {
	start := len(buf)
	space := func() {
		if len(buf) > start {
			buf = append(buf, ' ')
		}
	}

	if flags&FlagShowTimestamp != 0 {
		buf = e.Time.AppendFormat(buf, f.timestampFormat)
	}
	if flags&FlagShowLevel != 0 {
		space()
		buf = append(buf, LevelToString(e.Level)...)
	}
	if flags&FlagShowTag != 0 && e.Tag != "" {
		space()
		buf = append(buf, '[')
		buf = f.enc.AppendText(buf, e.Tag)
		buf = append(buf, ']')
	}
	if flags&FlagShowThread != 0 && e.Thread != "" {
		space()
		buf = f.enc.AppendString(buf, e.Thread)
	}
	if flags&FlagShowSource != 0 && e.Source != "" {
		space()
		buf = f.enc.AppendString(buf, e.Source)
	}
	if e.Message != "" {
		space()
		buf = f.enc.AppendText(buf, e.Message)
	}
	for _, arg := range e.Args {
		space()
		buf = f.appendValue(buf, arg)
	}
	if flags&FlagShowContext != 0 {
		for _, key := range sortedKeys(e.Context) {
			space()
			buf = f.enc.AppendText(buf, key)
			buf = append(buf, '=')
			buf = f.enc.AppendString(buf, e.Context[key])
		}
	}
	if e.Err != nil {
		space()
		buf = append(buf, "error="...)
		buf = f.enc.AppendString(buf, e.Err.Error())
	}

	return append(buf, '\n')
}

func (f *Formatter) appendJSON(buf []byte, flags int64, e *Entry) []byte {
	buf = append(buf, '{')
	comma := false
	key := func(name string) {
		if comma {
			buf = append(buf, ',')
		}
		buf = append(buf, '"')
		buf = append(buf, name...)
		buf = append(buf, '"', ':')
		comma = true
	}

	if flags&FlagShowTimestamp != 0 {
		key("time")
		buf = append(buf, '"')
		buf = e.Time.AppendFormat(buf, f.timestampFormat)
		buf = append(buf, '"')
	}
	if flags&FlagShowLevel != 0 {
		key("level")
		buf = append(buf, '"')
		buf = append(buf, LevelToString(e.Level)...)
		buf = append(buf, '"')
	}
	if flags&FlagShowTag != 0 && e.Tag != "" {
		key("tag")
		buf = f.enc.AppendString(buf, e.Tag)
	}
	if flags&FlagShowThread != 0 && e.Thread != "" {
		key("thread")
		buf = f.enc.AppendString(buf, e.Thread)
	}
	if flags&FlagShowSource != 0 && e.Source != "" {
		key("source")
		buf = f.enc.AppendString(buf, e.Source)
	}
	if e.Message != "" {
		key("message")
		buf = f.enc.AppendString(buf, e.Message)
	}
	if len(e.Args) > 0 {
		key("fields")
		buf = append(buf, '[')
		for i, arg := range e.Args {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = f.appendValue(buf, arg)
		}
		buf = append(buf, ']')
	}
	if flags&FlagShowContext != 0 && len(e.Context) > 0 {
		key("context")
		buf = append(buf, '{')
		for i, k := range sortedKeys(e.Context) {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = f.enc.AppendString(buf, k)
			buf = append(buf, ':')
			buf = f.enc.AppendString(buf, e.Context[k])
		}
		buf = append(buf, '}')
	}
	if e.Err != nil {
		key("error")
		buf = f.enc.AppendString(buf, e.Err.Error())
	}

	return append(buf, '}', '\n')
}

// AppendValue appends a single argument value
func (f *Formatter) AppendValue(buf []byte, v any) []byte {
	return f.appendValue(buf, v)
}

func (f *Formatter) appendValue(buf []byte, v any) []byte {
	switch val := v.(type) {
	case string:
		return f.enc.AppendString(buf, val)
	case []byte:
		return f.enc.AppendString(buf, string(val))
	case int:
		return strconv.AppendInt(buf, int64(val), 10)
	case int32:
		return strconv.AppendInt(buf, int64(val), 10)
	case int64:
		return strconv.AppendInt(buf, val, 10)
	case uint:
		return strconv.AppendUint(buf, uint64(val), 10)
	case uint32:
		return strconv.AppendUint(buf, uint64(val), 10)
	case uint64:
		return strconv.AppendUint(buf, val, 10)
	case float32:
		return strconv.AppendFloat(buf, float64(val), 'f', -1, 32)
	case float64:
		return strconv.AppendFloat(buf, val, 'f', -1, 64)
	case bool:
		return strconv.AppendBool(buf, val)
	case nil:
		return f.enc.AppendNil(buf)
	case time.Time:
		return f.enc.AppendString(buf, val.Format(f.timestampFormat))
	case time.Duration:
		return f.enc.AppendString(buf, val.String())
	case error:
		return f.enc.AppendString(buf, val.Error())
	case fmt.Stringer:
		return f.enc.AppendString(buf, val.String())
	default:
		return f.enc.AppendComplex(buf, val)
	}
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
