package path

import (
	"errors"
	"fmt"
	"os"
)

// ErrUnknownSegment is returned when a pattern names a placeholder that has no
// registered builder
var ErrUnknownSegment = errors.New("path: unknown segment")

// separators are the characters that end a directory name in a rendered path
var separators = "/" + string(os.PathSeparator)

// fmtErrorf wraps fmt.Errorf with a "path: " prefix
func fmtErrorf(format string, args ...any) error {
	return fmt.Errorf("path: "+format, args...)
}
