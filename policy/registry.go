package policy

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/encoding"
)

// Options are passed to policy builders
type Options struct {
	Clock Clock
	// Encoding of the log files, nil for UTF-8
	Encoding encoding.Encoding
}

// Option configures policy construction
type Option func(*Options)

// WithClock sets the clock used by date based policies
func WithClock(clock Clock) Option {
	return func(o *Options) {
		if clock != nil {
			o.Clock = clock
		}
	}
}

// WithEncoding sets the encoding policies use to read existing files
func WithEncoding(enc encoding.Encoding) Option {
	return func(o *Options) {
		o.Encoding = enc
	}
}

// Builder creates a policy from the argument of a policy definition. The
// argument is empty if the definition has none.
type Builder func(argument string, opts Options) (Policy, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Builder{
		"endless": buildEndless,
		"startup": buildStartup,
		"size":    buildSize,
		"count":   buildCount,
		"daily":   buildDaily,
		"weekly":  buildWeekly,
		"monthly": buildMonthly,
	}
)

// Register makes a policy name available to New and NewBundle. A later
// registration of the same name replaces the earlier one.
func Register(name string, builder Builder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = builder
}

// Names returns the registered policy names in sorted order
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds a policy from a definition of the form "name" or "name: argument"
func New(definition string, opts ...Option) (Policy, error) {
	o := Options{Clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	name, argument, _ := strings.Cut(definition, ":")
	name = strings.ToLower(strings.TrimSpace(name))
	argument = strings.TrimSpace(argument)

	registryMu.RLock()
	builder, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmtErrorf("%w: '%s'", ErrUnknownPolicy, name)
	}

	p, err := builder(argument, o)
	if err != nil {
		return nil, fmtErrorf("invalid policy '%s': %w", definition, err)
	}
	return p, nil
}

// NewBundle builds all definitions. No definitions yield an endless policy and
// a single definition yields that policy unwrapped.
func NewBundle(definitions []string, opts ...Option) (Policy, error) {
	policies := make([]Policy, 0, len(definitions))
	for _, definition := range definitions {
		if strings.TrimSpace(definition) == "" {
			continue
		}
		p, err := New(definition, opts...)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}

	switch len(policies) {
	case 0:
		return NewEndless(), nil
	case 1:
		return policies[0], nil
	default:
		return NewBundleOf(policies...), nil
	}
}

func buildEndless(argument string, _ Options) (Policy, error) {
	if argument != "" {
		return nil, fmtErrorf("endless takes no argument")
	}
	return NewEndless(), nil
}

func buildStartup(argument string, _ Options) (Policy, error) {
	if argument != "" {
		return nil, fmtErrorf("startup takes no argument")
	}
	return NewStartup(), nil
}

func buildSize(argument string, _ Options) (Policy, error) {
	max, err := ParseSize(argument)
	if err != nil {
		return nil, err
	}
	return NewSize(max)
}

func buildCount(argument string, o Options) (Policy, error) {
	max, err := strconv.ParseInt(argument, 10, 64)
	if err != nil {
		return nil, fmtErrorf("invalid count '%s'", argument)
	}
	p, err := NewCount(max)
	if err != nil {
		return nil, err
	}
	return p.WithEncoding(o.Encoding), nil
}

func buildDaily(argument string, o Options) (Policy, error) {
	hour, minute, loc, err := parseTime(argument)
	if err != nil {
		return nil, err
	}
	return NewDaily(hour, minute, loc, o.Clock), nil
}

func buildWeekly(argument string, o Options) (Policy, error) {
	day, hour, minute, loc, err := parseWeekly(argument)
	if err != nil {
		return nil, err
	}
	return NewWeekly(day, hour, minute, loc, o.Clock), nil
}

func buildMonthly(argument string, o Options) (Policy, error) {
	hour, minute, loc, err := parseTime(argument)
	if err != nil {
		return nil, err
	}
	return NewMonthly(hour, minute, loc, o.Clock), nil
}
