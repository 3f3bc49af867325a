package path

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ProcessID renders the id of the current process
type ProcessID struct {
	pid string
}

// NewProcessID creates a process id segment
func NewProcessID() *ProcessID {
	return &ProcessID{pid: strconv.Itoa(os.Getpid())}
}

// Resolve appends the process id
func (s *ProcessID) Resolve(b *strings.Builder, _ time.Time) error {
	b.WriteString(s.pid)
	return nil
}

// FindLatest returns the process id; files of other processes are never continued
func (s *ProcessID) FindLatest(_ string) (string, bool, error) {
	return s.pid, true, nil
}
