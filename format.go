package rotlog

import (
	"strconv"

	"github.com/lixenwraith/rotlog/formatter"
)

// Render flags, shared with the formatter package
const (
	FlagRaw           = formatter.FlagRaw
	FlagShowTimestamp = formatter.FlagShowTimestamp
	FlagShowLevel     = formatter.FlagShowLevel
	FlagShowTag       = formatter.FlagShowTag
	FlagShowThread    = formatter.FlagShowThread
	FlagShowSource    = formatter.FlagShowSource
	FlagShowContext   = formatter.FlagShowContext
	FlagDefault       = formatter.FlagDefault
)

// lineRenderer renders records as txt, json or raw lines
type lineRenderer struct {
	formatter *formatter.Formatter
	flags     int64
	fields    FieldSet
}

// NewRenderer creates a renderer for format "txt", "json" or "raw". flags
// select the optional parts of each line.
func NewRenderer(format, timestampFormat string, flags int64) (Renderer, error) {
	f, err := formatter.New(format)
	if err != nil {
		return nil, fmtErrorf("%w", err)
	}
	f.TimestampFormat(timestampFormat)

	fields := FieldMessage | FieldException
	if flags&FlagRaw == 0 && format != "raw" {
		if flags&FlagShowTimestamp != 0 {
			fields |= FieldTimestamp
		}
		if flags&FlagShowLevel != 0 {
			fields |= FieldLevel
		}
		if flags&FlagShowTag != 0 {
			fields |= FieldTag
		}
		if flags&FlagShowThread != 0 {
			fields |= FieldThread
		}
		if flags&FlagShowSource != 0 {
			fields |= FieldSource
		}
		if flags&FlagShowContext != 0 {
			fields |= FieldContext
		}
	}

	return &lineRenderer{formatter: f, flags: flags, fields: fields}, nil
}

// Render appends the rendered record to buf
func (r *lineRenderer) Render(buf []byte, rec *Record) []byte {
	entry := formatter.Entry{
		Time:    rec.Timestamp,
		Level:   rec.Level,
		Tag:     rec.Tag,
		Thread:  rec.Thread,
		Context: rec.Context,
		Message: rec.Message,
		Args:    rec.Args,
		Err:     rec.Err,
	}
	if r.fields.Has(FieldSource) && rec.Source.File != "" {
		entry.Source = rec.Source.File + ":" + strconv.Itoa(rec.Source.Line)
	}
	return r.formatter.Append(buf, r.flags, &entry)
}

// RequiredFields returns the fields the selected flags output
func (r *lineRenderer) RequiredFields() FieldSet {
	return r.fields
}

// flagsFromConfig derives render flags from the configuration
func flagsFromConfig(cfg *Config) int64 {
	var flags int64
	if cfg.ShowTimestamp {
		flags |= FlagShowTimestamp
	}
	if cfg.ShowLevel {
		flags |= FlagShowLevel
	}
	if cfg.ShowTag {
		flags |= FlagShowTag
	}
	if cfg.ShowThread {
		flags |= FlagShowThread
	}
	if cfg.ShowSource {
		flags |= FlagShowSource
	}
	if cfg.ShowContext {
		flags |= FlagShowContext
	}
	return flags
}
