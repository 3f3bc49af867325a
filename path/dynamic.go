package path

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DynamicPath is a parsed path pattern that renders new file paths and finds
// the latest existing one
type DynamicPath struct {
	pattern string
	root    Segment
}

// NewDynamicPath parses pattern into a dynamic path
func NewDynamicPath(pattern string) (*DynamicPath, error) {
	root, err := Parse(pattern)
	if err != nil {
		return nil, err
	}
	return &DynamicPath{pattern: pattern, root: root}, nil
}

// Pattern returns the pattern the path was parsed from
func (p *DynamicPath) Pattern() string {
	return p.pattern
}

// LatestPath returns the latest existing regular file matching the pattern
func (p *DynamicPath) LatestPath() (string, bool, error) {
	latest, ok, err := p.root.FindLatest("")
	if err != nil || !ok {
		return "", false, err
	}

	info, err := os.Stat(latest)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmtErrorf("failed to stat '%s': %w", latest, err)
	}
	if !info.Mode().IsRegular() {
		return "", false, nil
	}
	return latest, true, nil
}

// NewPath renders a new path for date and creates its parent directories
func (p *DynamicPath) NewPath(date time.Time) (string, error) {
	var b strings.Builder
	if err := p.root.Resolve(&b, date); err != nil {
		return "", err
	}

	path := b.String()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmtErrorf("failed to create directory '%s': %w", dir, err)
		}
	}
	return path, nil
}
