// Package policy decides when a log file is rotated.
//
// A Policy is bound to one physical file at a time. The file writer asks it
// whether the latest file from a previous run can be continued, initializes it
// for every file it opens and asks it before each write whether the current
// file still accepts the entry.
package policy

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrUnknownPolicy is returned for policy names without a registered builder
var ErrUnknownPolicy = errors.New("policy: unknown policy")

// Policy is a rollover condition for log files
type Policy interface {
	// CanContinueFile reports whether an existing log file can be continued
	CanContinueFile(path string) (bool, error)

	// Init binds the policy to the file at path, which may or may not exist
	Init(path string) error

	// CanAcceptLogEntry reports whether an entry of size bytes can be written
	// to the current file. Accepted entries are counted.
	CanAcceptLogEntry(size int) bool
}

// Clock returns the current time
type Clock func() time.Time

// fmtErrorf wraps fmt.Errorf with a "policy: " prefix
func fmtErrorf(format string, args ...any) error {
	return fmt.Errorf("policy: "+format, args...)
}

// statFile returns the file info of path, or nil if it does not exist
func statFile(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmtErrorf("failed to stat '%s': %w", path, err)
	}
	return info, nil
}

// Endless never rotates
type Endless struct{}

// NewEndless creates an endless policy
func NewEndless() *Endless {
	return &Endless{}
}

// CanContinueFile always continues
func (p *Endless) CanContinueFile(_ string) (bool, error) {
	return true, nil
}

// Init does nothing
func (p *Endless) Init(_ string) error {
	return nil
}

// CanAcceptLogEntry always accepts
func (p *Endless) CanAcceptLogEntry(_ int) bool {
	return true
}

// Startup starts a new file on every process start
type Startup struct{}

// NewStartup creates a startup policy
func NewStartup() *Startup {
	return &Startup{}
}

// CanContinueFile never continues
func (p *Startup) CanContinueFile(_ string) (bool, error) {
	return false, nil
}

// Init does nothing
func (p *Startup) Init(_ string) error {
	return nil
}

// CanAcceptLogEntry always accepts
func (p *Startup) CanAcceptLogEntry(_ int) bool {
	return true
}
