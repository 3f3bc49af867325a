package compat

import (
	"fmt"

	"github.com/lixenwraith/rotlog"
)

// Builder provides a flexible way to create configured logger adapters for gnet and fasthttp
// It can use an existing *rotlog.Logger instance or create a new one from a *rotlog.Config
type Builder struct {
	logger *rotlog.Logger
	logCfg    *rotlog.Config
	overrides []string
	err       error
}

// NewBuilder creates a new adapter builder
func NewBuilder() *Builder {
	return &Builder{}
}

// WithLogger specifies an existing logger to use for the adapters
// If this is set WithConfig is ignored
func (b *Builder) WithLogger(l *rotlog.Logger) *Builder {
	if l == nil {
		b.err = fmt.Errorf("rotlog/compat: provided logger cannot be nil")
		return b
	}
	b.logger = l
	return b
}

// WithConfig provides a configuration for a new logger instance
// If neither WithLogger nor WithConfig is used, a default logger will be created
func (b *Builder) WithConfig(cfg *rotlog.Config) *Builder {
	b.logCfg = cfg
	return b
}

// WithOverrides applies "key=value" strings on top of the configuration of a
// new logger
func (b *Builder) WithOverrides(overrides ...string) *Builder {
	b.overrides = append(b.overrides, overrides...)
	return b
}

// getLogger resolves the logger to be used, creating one if necessary
func (b *Builder) getLogger() (*rotlog.Logger, error) {
	if b.err != nil {
		return nil, b.err
	}

	if b.logger != nil {
		return b.logger, nil
	}

	l := rotlog.NewLogger()
	cfg := rotlog.DefaultConfig()
	if b.logCfg != nil {
		cfg = b.logCfg.Clone()
	}
	if err := cfg.Override(b.overrides...); err != nil {
		return nil, err
	}

	if err := l.ApplyConfig(cfg); err != nil {
		return nil, err
	}

	// Cache the newly created logger for subsequent builds with this builder
	b.logger = l
	return l, nil
}

// BuildGnet creates a gnet adapter
func (b *Builder) BuildGnet(opts ...GnetOption) (*GnetAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewGnetAdapter(l, opts...), nil
}

// BuildStructuredGnet creates a gnet adapter that extracts "key=%v" pairs
// into the record context
func (b *Builder) BuildStructuredGnet(opts ...GnetOption) (*StructuredGnetAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewStructuredGnetAdapter(l, opts...), nil
}

// BuildFastHTTP creates a fasthttp adapter
func (b *Builder) BuildFastHTTP(opts ...FastHTTPOption) (*FastHTTPAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewFastHTTPAdapter(l, opts...), nil
}

// GetLogger returns the underlying *rotlog.Logger instance
// If a logger has not been provided or created yet, it will be initialized
func (b *Builder) GetLogger() (*rotlog.Logger, error) {
	return b.getLogger()
}

// --- Example Usage ---
//
//	appLogger, err := rotlog.NewBuilder().
//		FilePattern("logs/{date: yyyy-MM-dd}/server_{count}.log").
//		Policies("daily: 00:00", "size: 100MB").
//		LevelString("debug").
//		Build()
//	if err != nil { /* handle error */ }
//
//	builder := compat.NewBuilder().WithLogger(appLogger)
//
//	gnetLogger, err := builder.BuildGnet()
//	if err != nil { /* handle error */ }
//	go gnet.Run(events, "tcp://:9000", gnet.WithLogger(gnetLogger))
//
//	fasthttpLogger, err := builder.BuildFastHTTP()
//	if err != nil { /* handle error */ }
//	server := &fasthttp.Server{Handler: handler, Logger: fasthttpLogger}
//	go server.ListenAndServe(":8080")
