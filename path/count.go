package path

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Count is a sequence counter segment. A new path gets the number following
// the highest count among the existing siblings, starting at 0.
type Count struct{}

// NewCount creates a count segment
func NewCount() *Count {
	return &Count{}
}

// Resolve appends the next free count. The counter wraps to 0 after
// math.MaxInt64.
func (s *Count) Resolve(b *strings.Builder, _ time.Time) error {
	latest, ok, err := s.FindLatest(b.String())
	if err != nil {
		return err
	}

	var next int64
	if ok {
		value, err := strconv.ParseInt(latest, 10, 64)
		if err != nil {
			return fmtErrorf("invalid count '%s': %w", latest, err)
		}
		if value < math.MaxInt64 {
			next = value + 1
		}
	}

	b.WriteString(strconv.FormatInt(next, 10))
	return nil
}

// FindLatest returns the digits of the sibling with the highest count
func (s *Count) FindLatest(prefix string) (string, bool, error) {
	dir, name := splitPrefix(prefix)
	names, err := listNames(dir)
	if err != nil {
		return "", false, err
	}

	var latest string
	var max int64 = -1
	for _, entry := range names {
		if !strings.HasPrefix(entry, name) {
			continue
		}
		digits := leadingDigits(entry[len(name):])
		if digits == "" {
			continue
		}
		value, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			continue // out of range
		}
		if value > max {
			max = value
			latest = digits
		}
	}

	return latest, max >= 0, nil
}
