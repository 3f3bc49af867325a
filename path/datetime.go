package path

import (
	"strconv"
	"strings"
	"time"
)

// DefaultDatePattern is used by "{date}" placeholders without an argument
const DefaultDatePattern = "yyyy-MM-dd_HH-mm-ss"

// DateTime renders the path date with a date pattern such as "yyyy-MM-dd"
type DateTime struct {
	pattern  string
	tokens   []dateToken
	layout   string // layout elements joined by elementSeparator
	location *time.Location
}

// dateToken is either literal text or a single time layout element
type dateToken struct {
	text    string
	literal bool
}

const (
	// elementSeparator joins layout elements; it never occurs in a layout
	elementSeparator = "\x00"
	// maxElementWidth bounds the text a single layout element can match
	maxElementWidth = 16
)

// NewDateTime creates a date segment from a date pattern in the usual
// letter notation (yyyy, MM, dd, HH, mm, ss, SSS, ...). Quoted text is literal.
func NewDateTime(pattern string) (*DateTime, error) {
	if pattern == "" {
		pattern = DefaultDatePattern
	}
	tokens, err := tokensFromPattern(pattern)
	if err != nil {
		return nil, err
	}

	var elements []string
	for _, tk := range tokens {
		if !tk.literal {
			elements = append(elements, tk.text)
		}
	}
	return &DateTime{
		pattern:  pattern,
		tokens:   tokens,
		layout:   strings.Join(elements, elementSeparator),
		location: time.Local,
	}, nil
}

// WithLocation returns a copy of the segment that renders and parses in loc
func (s *DateTime) WithLocation(loc *time.Location) *DateTime {
	c := *s
	c.location = loc
	return &c
}

// Pattern returns the date pattern
func (s *DateTime) Pattern() string {
	return s.pattern
}

// Resolve appends the formatted date. Each layout element is formatted on its
// own so literal text is never read as part of a layout.
func (s *DateTime) Resolve(b *strings.Builder, date time.Time) error {
	date = date.In(s.location)
	for _, tk := range s.tokens {
		if tk.literal {
			b.WriteString(tk.text)
		} else {
			b.WriteString(date.Format(tk.text))
		}
	}
	return nil
}

// FindLatest returns the date text of the sibling with the newest date. The
// longest prefix after the file name prefix that parses as a date counts.
// Entries without a parsable date fall back to their leading integer; dated
// entries always rank above such fallbacks.
func (s *DateTime) FindLatest(prefix string) (string, bool, error) {
	dir, name := splitPrefix(prefix)
	names, err := listNames(dir)
	if err != nil {
		return "", false, err
	}

	var (
		latest     string
		latestTime time.Time
		hasTime    bool
		latestInt  int64 = -1
	)

	for _, entry := range names {
		if !strings.HasPrefix(entry, name) {
			continue
		}
		rest := entry[len(name):]

		if text, t, ok := s.parseLongest(rest); ok {
			if !hasTime || t.After(latestTime) {
				latest, latestTime, hasTime = text, t, true
			}
			continue
		}

		if hasTime {
			continue
		}
		digits := leadingDigits(rest)
		if digits == "" {
			continue
		}
		if value, err := strconv.ParseInt(digits, 10, 64); err == nil && value > latestInt {
			latest, latestInt = digits, value
		}
	}

	return latest, hasTime || latestInt >= 0, nil
}

// parseLongest finds the longest prefix of s that parses with the pattern
func (s *DateTime) parseLongest(str string) (string, time.Time, bool) {
	for n := len(str); n > 0; n-- {
		if t, ok := s.parse(str[:n]); ok {
			return str[:n], t, true
		}
	}
	return "", time.Time{}, false
}

// parse matches text against the tokens. Literals must match exactly; every
// layout element takes the text it parses on its own, and the collected
// element texts are then parsed together.
func (s *DateTime) parse(text string) (time.Time, bool) {
	var (
		values []string
		result time.Time
	)

	var match func(i int, rest string) bool
	match = func(i int, rest string) bool {
		if i == len(s.tokens) {
			if rest != "" {
				return false
			}
			t, err := time.ParseInLocation(s.layout, strings.Join(values, elementSeparator), s.location)
			if err != nil {
				return false
			}
			result = t
			return true
		}

		tk := s.tokens[i]
		if tk.literal {
			return strings.HasPrefix(rest, tk.text) && match(i+1, rest[len(tk.text):])
		}
		for n := min(len(rest), maxElementWidth); n > 0; n-- {
			if _, err := time.Parse(tk.text, rest[:n]); err != nil {
				continue
			}
			values = append(values, rest[:n])
			if match(i+1, rest[n:]) {
				return true
			}
			values = values[:len(values)-1]
		}
		return false
	}

	if !match(0, text) {
		return time.Time{}, false
	}
	return result, true
}

// tokensFromPattern translates a letter based date pattern into literal text
// and time layout elements
func tokensFromPattern(pattern string) ([]dateToken, error) {
	var tokens []dateToken
	literal := func(text string) {
		if n := len(tokens); n > 0 && tokens[n-1].literal {
			tokens[n-1].text += text
			return
		}
		tokens = append(tokens, dateToken{text: text, literal: true})
	}
	element := func(layout string) {
		tokens = append(tokens, dateToken{text: layout})
	}

	for i := 0; i < len(pattern); {
		c := pattern[i]

		if c == '\'' {
			end := i + 1
			var quoted strings.Builder
			for {
				if end >= len(pattern) {
					return nil, fmtErrorf("missing closing quote in date pattern '%s'", pattern)
				}
				if pattern[end] == '\'' {
					if end+1 < len(pattern) && pattern[end+1] == '\'' {
						quoted.WriteByte('\'')
						end += 2
						continue
					}
					break
				}
				quoted.WriteByte(pattern[end])
				end++
			}
			if end == i+1 {
				quoted.WriteByte('\'') // '' outside of quoted text
			}
			literal(quoted.String())
			i = end + 1
			continue
		}

		if !isLetter(c) {
			literal(string(c))
			i++
			continue
		}

		n := 1
		for i+n < len(pattern) && pattern[i+n] == c {
			n++
		}

		switch c {
		case 'y', 'u':
			if n == 2 {
				element("06")
			} else {
				element("2006")
			}
		case 'M', 'L':
			switch {
			case n == 1:
				element("1")
			case n == 2:
				element("01")
			case n == 3:
				element("Jan")
			default:
				element("January")
			}
		case 'd':
			if n == 1 {
				element("2")
			} else {
				element("02")
			}
		case 'D':
			element("002")
		case 'H':
			element("15")
		case 'h':
			if n == 1 {
				element("3")
			} else {
				element("03")
			}
		case 'm':
			if n == 1 {
				element("4")
			} else {
				element("04")
			}
		case 's':
			if n == 1 {
				element("5")
			} else {
				element("05")
			}
		case 'S':
			// The separator belongs to the fraction element
			last := len(tokens) - 1
			if last < 0 || !tokens[last].literal || (!strings.HasSuffix(tokens[last].text, ".") && !strings.HasSuffix(tokens[last].text, ",")) {
				return nil, fmtErrorf("fraction of second must follow '.' or ',' in date pattern '%s'", pattern)
			}
			prev := tokens[last].text
			sep := prev[len(prev)-1:]
			if len(prev) == 1 {
				tokens = tokens[:last]
			} else {
				tokens[last].text = prev[:len(prev)-1]
			}
			element(sep + strings.Repeat("0", n))
		case 'a':
			element("PM")
		case 'E':
			if n <= 3 {
				element("Mon")
			} else {
				element("Monday")
			}
		case 'z':
			element("MST")
		case 'Z':
			element("-0700")
		case 'X':
			switch n {
			case 1:
				element("Z07")
			case 2:
				element("Z0700")
			default:
				element("Z07:00")
			}
		case 'x':
			switch n {
			case 1:
				element("-07")
			case 2:
				element("-0700")
			default:
				element("-07:00")
			}
		default:
			return nil, fmtErrorf("unsupported letter '%c' in date pattern '%s'", c, pattern)
		}
		i += n
	}

	return tokens, nil
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
