package compat

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lixenwraith/rotlog"
)

// keyValuePattern detects structured verbs like "key=%v" or "key: %d"
var keyValuePattern = regexp.MustCompile(`(\w+)\s*[:=]\s*%[vsdqxXeEfFgGpbcU]`)

// parseFormat splits a printf-style call into a message and context entries
// for every "key=%v" verb. Unless every verb is such a pair, the call is
// rendered as a plain message.
func parseFormat(format string, args []any) (string, map[string]string) {
	matches := keyValuePattern.FindAllStringSubmatchIndex(format, -1)
	if len(matches) == 0 || len(matches) != len(args) || strings.Count(format, "%") != len(matches) {
		return fmt.Sprintf(format, args...), nil
	}

	fields := make(map[string]string, len(matches))
	var msg strings.Builder
	lastEnd := 0
	for i, match := range matches {
		msg.WriteString(format[lastEnd:match[0]])
		fields[format[match[2]:match[3]]] = fmt.Sprint(args[i])
		lastEnd = match[1]
	}
	msg.WriteString(format[lastEnd:])

	return strings.Trim(strings.Join(strings.Fields(msg.String()), " "), " ,;"), fields
}

// StructuredGnetAdapter provides enhanced structured logging for gnet
type StructuredGnetAdapter struct {
	*GnetAdapter
	extractFields bool
}

// NewStructuredGnetAdapter creates a gnet adapter with structured field extraction
func NewStructuredGnetAdapter(logger *rotlog.Logger, opts ...GnetOption) *StructuredGnetAdapter {
	return &StructuredGnetAdapter{
		GnetAdapter:   NewGnetAdapter(logger, opts...),
		extractFields: true,
	}
}

// structured returns the front-end carrying the fields of format
func (a *StructuredGnetAdapter) structured(format string, args []any) (*rotlog.Tagged, string) {
	msg, fields := parseFormat(format, args)
	t := a.tagged
	for k, v := range fields {
		t = t.With(k, v)
	}
	return t, msg
}

// Debugf logs with structured field extraction
func (a *StructuredGnetAdapter) Debugf(format string, args ...any) {
	if !a.extractFields {
		a.GnetAdapter.Debugf(format, args...)
		return
	}
	t, msg := a.structured(format, args)
	t.Debug(msg)
}

// Infof logs with structured field extraction
func (a *StructuredGnetAdapter) Infof(format string, args ...any) {
	if !a.extractFields {
		a.GnetAdapter.Infof(format, args...)
		return
	}
	t, msg := a.structured(format, args)
	t.Info(msg)
}

// Warnf logs with structured field extraction
func (a *StructuredGnetAdapter) Warnf(format string, args ...any) {
	if !a.extractFields {
		a.GnetAdapter.Warnf(format, args...)
		return
	}
	t, msg := a.structured(format, args)
	t.Warn(msg)
}

// Errorf logs with structured field extraction
func (a *StructuredGnetAdapter) Errorf(format string, args ...any) {
	if !a.extractFields {
		a.GnetAdapter.Errorf(format, args...)
		return
	}
	t, msg := a.structured(format, args)
	t.Error(msg)
}
