// Package sanitizer cleans untrusted text before it is written into log lines
// and encodes strings and values for the txt, json and raw line formats.
package sanitizer

import (
	"bytes"
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/davecgh/go-spew/spew"
)

// Filter flags select the runes a rule applies to
const (
	FilterNonPrintable uint64 = 1 << iota // not printable per strconv.IsPrint
	FilterControl                         // unicode.IsControl
	FilterLineBreak                       // '\n' and '\r'
	FilterWhitespace                      // unicode.IsSpace
)

// Transform flags decide what happens to a filtered rune
const (
	TransformStrip     uint64 = 1 << iota // drop the rune
	TransformHexEncode                    // write the UTF-8 bytes as "<xx..>"
	TransformEscape                       // write a backslash escape such as "\n" or "\u001b"
)

// Rule pairs a filter mask with a transform
type Rule struct {
	Filter    uint64
	Transform uint64
}

// Sanitizer applies rules rune by rune; the first matching rule wins
type Sanitizer struct {
	rules []Rule
}

// New creates a sanitizer with the passed rules. Without rules it passes text through.
func New(rules ...Rule) *Sanitizer {
	return &Sanitizer{rules: rules}
}

// ForFormat returns the default sanitizer of a line format. Text lines hex
// encode non-printable runes. Json and raw pass text through; json strings
// are escaped by the encoder.
func ForFormat(format string) *Sanitizer {
	switch format {
	case "txt":
		return New(Rule{Filter: FilterNonPrintable, Transform: TransformHexEncode})
	default:
		return New()
	}
}

// With returns a copy of the sanitizer with an additional rule
func (s *Sanitizer) With(filter, transform uint64) *Sanitizer {
	rules := make([]Rule, len(s.rules), len(s.rules)+1)
	copy(rules, s.rules)
	return &Sanitizer{rules: append(rules, Rule{Filter: filter, Transform: transform})}
}

// Append appends the sanitized form of str to buf
func (s *Sanitizer) Append(buf []byte, str string) []byte {
	if len(s.rules) == 0 {
		return append(buf, str...)
	}

	for _, r := range str {
		matched := false
		for _, rl := range s.rules {
			if matches(r, rl.Filter) {
				buf = transform(buf, r, rl.Transform)
				matched = true
				break
			}
		}
		if !matched {
			buf = utf8.AppendRune(buf, r)
		}
	}
	return buf
}

// String returns the sanitized form of str
func (s *Sanitizer) String(str string) string {
	return string(s.Append(nil, str))
}

func matches(r rune, filter uint64) bool {
	switch {
	case filter&FilterNonPrintable != 0 && !strconv.IsPrint(r):
		return true
	case filter&FilterControl != 0 && unicode.IsControl(r):
		return true
	case filter&FilterLineBreak != 0 && (r == '\n' || r == '\r'):
		return true
	case filter&FilterWhitespace != 0 && unicode.IsSpace(r):
		return true
	}
	return false
}

func transform(buf []byte, r rune, t uint64) []byte {
	switch {
	case t&TransformStrip != 0:
		return buf

	case t&TransformHexEncode != 0:
		var b [utf8.UTFMax]byte
		n := utf8.EncodeRune(b[:], r)
		buf = append(buf, '<')
		for _, c := range b[:n] {
			buf = append(buf, hexDigits[c>>4], hexDigits[c&0x0f])
		}
		return append(buf, '>')

	case t&TransformEscape != 0:
		return appendEscaped(buf, r)
	}
	return utf8.AppendRune(buf, r)
}

const hexDigits = "0123456789abcdef"

func appendEscaped(buf []byte, r rune) []byte {
	switch r {
	case '\n':
		return append(buf, '\\', 'n')
	case '\r':
		return append(buf, '\\', 'r')
	case '\t':
		return append(buf, '\\', 't')
	case '\b':
		return append(buf, '\\', 'b')
	case '\f':
		return append(buf, '\\', 'f')
	case '"', '\\':
		return append(buf, '\\', byte(r))
	}
	if r < 0x20 || r == 0x7f {
		return fmt.Appendf(buf, "\\u%04x", r)
	}
	return utf8.AppendRune(buf, r)
}

// Encoder writes strings and values in the syntax of one line format
type Encoder struct {
	format    string
	sanitizer *Sanitizer
}

// NewEncoder creates an encoder for "txt", "json" or "raw"; a nil sanitizer
// selects the format default
func NewEncoder(format string, san *Sanitizer) *Encoder {
	if san == nil {
		san = ForFormat(format)
	}
	return &Encoder{format: format, sanitizer: san}
}

// Format returns the line format of the encoder
func (e *Encoder) Format() string {
	return e.format
}

// AppendString appends a string value. Text lines quote strings that would be
// ambiguous, json always quotes and escapes.
func (e *Encoder) AppendString(buf []byte, s string) []byte {
	switch e.format {
	case "json":
		buf = append(buf, '"')
		for _, r := range e.sanitizer.String(s) {
			if r < 0x20 || r == '"' || r == '\\' || r == 0x7f {
				buf = appendEscaped(buf, r)
			} else {
				buf = utf8.AppendRune(buf, r)
			}
		}
		return append(buf, '"')

	case "txt":
		start := len(buf)
		buf = e.sanitizer.Append(buf, s)
		if !NeedsQuotes(string(buf[start:])) {
			return buf
		}
		sanitized := string(buf[start:])
		buf = append(buf[:start], '"')
		for i := 0; i < len(sanitized); i++ {
			if sanitized[i] == '"' || sanitized[i] == '\\' {
				buf = append(buf, '\\')
			}
			buf = append(buf, sanitized[i])
		}
		return append(buf, '"')

	default:
		return e.sanitizer.Append(buf, s)
	}
}

// AppendText appends text that is never quoted, such as a log message in a
// text line. Json still gets a quoted string.
func (e *Encoder) AppendText(buf []byte, s string) []byte {
	if e.format == "json" {
		return e.AppendString(buf, s)
	}
	return e.sanitizer.Append(buf, s)
}

// AppendNil appends the representation of a nil value
func (e *Encoder) AppendNil(buf []byte) []byte {
	if e.format == "raw" {
		return append(buf, "nil"...)
	}
	return append(buf, "null"...)
}

// AppendComplex appends structs, maps, slices and other composite values. Raw
// lines get a full spew dump, the other formats a compact %+v string.
func (e *Encoder) AppendComplex(buf []byte, v any) []byte {
	if e.format == "raw" {
		var b bytes.Buffer
		dumper.Fdump(&b, v)
		return append(buf, bytes.TrimSpace(b.Bytes())...)
	}
	return e.AppendString(buf, fmt.Sprintf("%+v", v))
}

var dumper = &spew.ConfigState{
	Indent:                  " ",
	MaxDepth:                10,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// NeedsQuotes reports whether a string must be quoted in a text line
func NeedsQuotes(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return true
		}
		switch r {
		case '"', '\'', '\\', '=', '[', ']', '{', '}', '<', '>', '`', '$', ';', '|', '&':
			return true
		}
	}
	return false
}
