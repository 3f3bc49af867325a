package rotlog

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

var (
	// ErrNotInitialized is returned by operations that need an applied configuration
	ErrNotInitialized = errors.New("rotlog: logger not initialized")
	// ErrShutdownTimeout is returned when the writing thread does not exit in time
	ErrShutdownTimeout = errors.New("rotlog: writing thread did not exit within timeout")
)

// fmtErrorf wrapper
func fmtErrorf(format string, args ...any) error {
	if !strings.HasPrefix(format, "rotlog: ") {
		format = "rotlog: " + format
	}
	return fmt.Errorf(format, args...)
}

// combineErrors helper
func combineErrors(err1, err2 error) error {
	if err1 == nil {
		return err2
	}
	if err2 == nil {
		return err1
	}
	return fmt.Errorf("%v; %w", err1, err2)
}

// combineConfigErrors combines multiple configuration errors into a single error
func combineConfigErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	var sb strings.Builder
	sb.WriteString("rotlog: multiple configuration errors:")
	for i, err := range errs {
		sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, strings.TrimPrefix(err.Error(), "rotlog: ")))
	}
	return errors.New(sb.String())
}

// parseKeyValue splits a "key=value" string
func parseKeyValue(arg string) (string, string, error) {
	key, value, found := strings.Cut(strings.TrimSpace(arg), "=")
	if !found {
		return "", "", fmtErrorf("invalid format in override string '%s', expected key=value", arg)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", fmtErrorf("key cannot be empty in override string '%s'", arg)
	}
	return key, strings.TrimSpace(value), nil
}

// Level converts a level name or number to its numeric value
func Level(levelStr string) (int64, error) {
	s := strings.ToLower(strings.TrimSpace(levelStr))
	switch s {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	return 0, fmtErrorf("invalid level string: '%s' (use trace, debug, info, warn, error)", levelStr)
}

// callerSource returns the location of the frame skip levels above the caller
func callerSource(skip int) Source {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Source{File: "(unknown)"}
	}

	function := "(unknown)"
	if fn := runtime.FuncForPC(pc); fn != nil {
		function = filepath.Base(fn.Name())
	}
	return Source{File: filepath.Base(file), Line: line, Function: function}
}

// goroutineID returns the id of the calling goroutine as shown in stack traces
func goroutineID() string {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// "goroutine 18 [running]:"
	fields := strings.Fields(string(buf[:n]))
	if len(fields) < 2 {
		return ""
	}
	return "goroutine-" + fields[1]
}
