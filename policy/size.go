package policy

import (
	"strconv"
	"strings"
)

// Size rotates before the file would exceed a maximum number of bytes
type Size struct {
	max  int64
	size int64
}

// NewSize creates a size policy for files of at most max bytes
func NewSize(max int64) (*Size, error) {
	if max <= 0 {
		return nil, fmtErrorf("maximum file size must be positive: %d", max)
	}
	return &Size{max: max}, nil
}

// Max returns the maximum file size in bytes
func (p *Size) Max() int64 {
	return p.max
}

// CanContinueFile continues existing files smaller than the maximum
func (p *Size) CanContinueFile(path string) (bool, error) {
	info, err := statFile(path)
	if err != nil || info == nil {
		return false, err
	}
	return info.Size() < p.max, nil
}

// Init starts counting from the current size of the file
func (p *Size) Init(path string) error {
	info, err := statFile(path)
	if err != nil {
		return err
	}
	p.size = 0
	if info != nil {
		p.size = info.Size()
	}
	return nil
}

// CanAcceptLogEntry accepts entries while the file stays within the maximum
func (p *Size) CanAcceptLogEntry(size int) bool {
	if p.size+int64(size) > p.max {
		return false
	}
	p.size += int64(size)
	return true
}

var sizeUnits = []struct {
	suffix string
	factor int64
}{
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// ParseSize parses sizes like "512", "64 KB" or "10MB" with binary units
func ParseSize(s string) (int64, error) {
	text := strings.ToUpper(strings.TrimSpace(s))
	factor := int64(1)
	for _, unit := range sizeUnits {
		if strings.HasSuffix(text, unit.suffix) {
			text = strings.TrimSpace(strings.TrimSuffix(text, unit.suffix))
			factor = unit.factor
			break
		}
	}

	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmtErrorf("invalid size '%s'", s)
	}
	if value <= 0 {
		return 0, fmtErrorf("size must be positive: '%s'", s)
	}
	if value > (1<<63-1)/factor {
		return 0, fmtErrorf("size out of range: '%s'", s)
	}
	return value * factor, nil
}
