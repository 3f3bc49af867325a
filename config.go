package rotlog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/lixenwraith/config"

	"github.com/lixenwraith/rotlog/path"
	"github.com/lixenwraith/rotlog/policy"
)

// Config holds all logger configuration values
type Config struct {
	// Basic settings
	Level  int64  `toml:"level"`
	Format string `toml:"format"` // "txt", "raw", or "json"

	// Formatting
	TimestampFormat string `toml:"timestamp_format"` // Time layout for log timestamps
	ShowTimestamp   bool   `toml:"show_timestamp"`
	ShowLevel       bool   `toml:"show_level"`
	ShowTag         bool   `toml:"show_tag"`
	ShowThread      bool   `toml:"show_thread"`
	ShowSource      bool   `toml:"show_source"` // Caller lookup costs a stack walk per record
	ShowContext     bool   `toml:"show_context"`

	// File output
	EnableFile     bool   `toml:"enable_file"`
	FileBackend    string `toml:"file_backend"` // "rolling" or "lumberjack"
	FilePattern    string `toml:"file_pattern"` // Dynamic path, e.g. "logs/{date: yyyy-MM-dd}_{count}.log"
	Charset        string `toml:"charset"`
	Policies       string `toml:"policies"` // Comma separated, e.g. "startup, size: 10MB"
	FileBufferSize int64  `toml:"file_buffer_size"`

	// Lumberjack backend
	LumberjackMaxSizeMB  int64 `toml:"lumberjack_max_size_mb"`
	LumberjackMaxBackups int64 `toml:"lumberjack_max_backups"`
	LumberjackMaxAgeDays int64 `toml:"lumberjack_max_age_days"`
	LumberjackCompress   bool  `toml:"lumberjack_compress"`

	// Console output
	EnableConsole bool   `toml:"enable_console"`
	ConsoleTarget string `toml:"console_target"` // "stdout" or "stderr"

	// Asynchronous output
	WritingThread bool  `toml:"writing_thread"`
	QueueSize     int64 `toml:"queue_size"`

	// Internal error handling
	InternalErrorsToStderr  bool `toml:"internal_errors_to_stderr"`
	InternalErrorsToWriters bool `toml:"internal_errors_to_writers"`
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	Level:  LevelInfo,
	Format: "txt",

	TimestampFormat: time.RFC3339Nano,
	ShowTimestamp:   true,
	ShowLevel:       true,
	ShowTag:         true,
	ShowThread:      false,
	ShowSource:      false,
	ShowContext:     true,

	EnableFile:     true,
	FileBackend:    "rolling",
	FilePattern:    "logs/log_{count}.log",
	Charset:        "UTF-8",
	Policies:       "size: 10MB",
	FileBufferSize: DefaultFileBufferSize,

	LumberjackMaxSizeMB:  100,
	LumberjackMaxBackups: 5,
	LumberjackMaxAgeDays: 30,
	LumberjackCompress:   false,

	EnableConsole: false,
	ConsoleTarget: "stdout",

	WritingThread: true,
	QueueSize:     DefaultQueueSize,

	InternalErrorsToStderr:  false,
	InternalErrorsToWriters: true,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads configuration from the [log] table of a TOML file.
// A missing file yields the defaults.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	loader := config.New()
	if err := loader.RegisterStruct("log.", *cfg); err != nil {
		return nil, fmtErrorf("failed to register config struct: %w", err)
	}

	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmtErrorf("failed to load config from %s: %w", path, err)
	}

	if err := extractConfig(loader, "log.", cfg); err != nil {
		return nil, fmtErrorf("failed to extract config values: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewConfigFromDefaults creates a Config with default values and applies overrides
func NewConfigFromDefaults(overrides map[string]any) (*Config, error) {
	cfg := DefaultConfig()

	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, fmtErrorf("failed to apply overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// extractConfig copies the values found by the loader into cfg
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		val, found := loader.Get(prefix + tomlTag)
		if !found {
			continue
		}

		if err := setFieldValue(v.Field(i), val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}
	return nil
}

// applyOverrides applies a map of toml keys to values
func applyOverrides(cfg *Config, overrides map[string]any) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	fieldMap := make(map[string]reflect.Value, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if tomlTag := t.Field(i).Tag.Get("toml"); tomlTag != "" {
			fieldMap[tomlTag] = v.Field(i)
		}
	}

	for key, value := range overrides {
		fieldValue, exists := fieldMap[key]
		if !exists {
			return fmt.Errorf("unknown config key: %s", key)
		}
		if err := setFieldValue(fieldValue, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		case float64:
			if v != float64(int64(v)) {
				return fmt.Errorf("expected integer, got %v", v)
			}
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}
	return nil
}

// Validate checks the configuration, including that the file pattern and the
// policies can be built
func (c *Config) Validate() error {
	if c.Format != "txt" && c.Format != "json" && c.Format != "raw" {
		return fmtErrorf("invalid format: '%s' (use txt, json, or raw)", c.Format)
	}

	if strings.TrimSpace(c.TimestampFormat) == "" {
		return fmtErrorf("timestamp_format cannot be empty")
	}

	if c.ConsoleTarget != "stdout" && c.ConsoleTarget != "stderr" {
		return fmtErrorf("invalid console_target: '%s' (use stdout or stderr)", c.ConsoleTarget)
	}

	if c.QueueSize <= 0 {
		return fmtErrorf("queue_size must be positive: %d", c.QueueSize)
	}

	if !c.EnableFile {
		return nil
	}

	switch c.FileBackend {
	case "rolling":
		if _, err := path.Parse(c.FilePattern); err != nil {
			return fmtErrorf("invalid file_pattern: %w", err)
		}
		if _, err := policy.NewBundle(c.PolicyList()); err != nil {
			return fmtErrorf("invalid policies: %w", err)
		}
		if _, err := newCharset(c.Charset); err != nil {
			return err
		}
		if c.FileBufferSize <= 0 {
			return fmtErrorf("file_buffer_size must be positive: %d", c.FileBufferSize)
		}

	case "lumberjack":
		if strings.TrimSpace(c.FilePattern) == "" {
			return fmtErrorf("file_pattern cannot be empty")
		}
		if strings.ContainsAny(c.FilePattern, "{}") {
			return fmtErrorf("file_pattern of the lumberjack backend cannot contain placeholders: '%s'", c.FilePattern)
		}
		if c.LumberjackMaxSizeMB < 0 || c.LumberjackMaxBackups < 0 || c.LumberjackMaxAgeDays < 0 {
			return fmtErrorf("lumberjack limits cannot be negative")
		}

	default:
		return fmtErrorf("invalid file_backend: '%s' (use rolling or lumberjack)", c.FileBackend)
	}

	return nil
}

// PolicyList splits the comma separated policy definitions
func (c *Config) PolicyList() []string {
	var list []string
	for _, p := range strings.Split(c.Policies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			list = append(list, p)
		}
	}
	return list
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}
