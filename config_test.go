package rotlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, LevelInfo, cfg.Level)
	assert.Equal(t, "txt", cfg.Format)
	assert.True(t, cfg.ShowTimestamp)
	assert.True(t, cfg.ShowLevel)
	assert.Equal(t, time.RFC3339Nano, cfg.TimestampFormat)
	assert.Equal(t, "logs/log_{count}.log", cfg.FilePattern)
	assert.Equal(t, []string{"size: 10MB"}, cfg.PolicyList())
	assert.Equal(t, "rolling", cfg.FileBackend)
	assert.True(t, cfg.WritingThread)
	assert.Equal(t, int64(DefaultQueueSize), cfg.QueueSize)
	assert.NoError(t, cfg.Validate())

	// Copies are independent
	cfg.Level = LevelError
	assert.Equal(t, LevelInfo, DefaultConfig().Level)
}

func TestConfigClone(t *testing.T) {
	cfg1 := DefaultConfig()
	cfg1.Level = LevelDebug
	cfg1.FilePattern = "/custom/path/{count}.log"

	cfg2 := cfg1.Clone()

	assert.Equal(t, cfg1.Level, cfg2.Level)
	assert.Equal(t, cfg1.FilePattern, cfg2.FilePattern)

	cfg1.Level = LevelError
	assert.Equal(t, LevelDebug, cfg2.Level)
}

func TestConfigPolicyList(t *testing.T) {
	cfg := DefaultConfig()

	cfg.Policies = " startup ,, daily: 03:00 , size: 1MB "
	assert.Equal(t, []string{"startup", "daily: 03:00", "size: 1MB"}, cfg.PolicyList())

	cfg.Policies = ""
	assert.Nil(t, cfg.PolicyList())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantError string
	}{
		{
			name:      "valid config",
			modify:    func(c *Config) {},
			wantError: "",
		},
		{
			name:      "invalid format",
			modify:    func(c *Config) { c.Format = "invalid" },
			wantError: "invalid format",
		},
		{
			name:      "empty timestamp format",
			modify:    func(c *Config) { c.TimestampFormat = " " },
			wantError: "timestamp_format cannot be empty",
		},
		{
			name:      "invalid console target",
			modify:    func(c *Config) { c.ConsoleTarget = "invalid" },
			wantError: "invalid console_target",
		},
		{
			name:      "zero queue size",
			modify:    func(c *Config) { c.QueueSize = 0 },
			wantError: "queue_size must be positive",
		},
		{
			name:      "unbalanced pattern",
			modify:    func(c *Config) { c.FilePattern = "logs/{count.log" },
			wantError: "invalid file_pattern",
		},
		{
			name:      "unknown segment",
			modify:    func(c *Config) { c.FilePattern = "logs/{host}.log" },
			wantError: "invalid file_pattern",
		},
		{
			name:      "unknown policy",
			modify:    func(c *Config) { c.Policies = "hourly" },
			wantError: "invalid policies",
		},
		{
			name:      "invalid size",
			modify:    func(c *Config) { c.Policies = "size: -5MB" },
			wantError: "invalid policies",
		},
		{
			name:      "unsupported charset",
			modify:    func(c *Config) { c.Charset = "klingon" },
			wantError: "unsupported charset",
		},
		{
			name:      "negative buffer size",
			modify:    func(c *Config) { c.FileBufferSize = -1 },
			wantError: "file_buffer_size must be positive",
		},
		{
			name:      "invalid backend",
			modify:    func(c *Config) { c.FileBackend = "syslog" },
			wantError: "invalid file_backend",
		},
		{
			name: "lumberjack placeholders",
			modify: func(c *Config) {
				c.FileBackend = "lumberjack"
			},
			wantError: "cannot contain placeholders",
		},
		{
			name: "lumberjack negative limits",
			modify: func(c *Config) {
				c.FileBackend = "lumberjack"
				c.FilePattern = "logs/app.log"
				c.LumberjackMaxBackups = -1
			},
			wantError: "cannot be negative",
		},
		{
			name: "file checks skipped when disabled",
			modify: func(c *Config) {
				c.EnableFile = false
				c.Policies = "hourly"
			},
			wantError: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.wantError == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
			}
		})
	}
}

func TestNewConfigFromDefaults(t *testing.T) {
	cfg, err := NewConfigFromDefaults(map[string]any{
		"level":          LevelDebug,
		"format":         "json",
		"queue_size":     64,
		"file_pattern":   "var/{date: yyyy-MM}/app_{count}.log",
		"enable_console": true,
		"policies":       "monthly, size: 5MB",
	})
	require.NoError(t, err)

	assert.Equal(t, LevelDebug, cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, int64(64), cfg.QueueSize)
	assert.Equal(t, "var/{date: yyyy-MM}/app_{count}.log", cfg.FilePattern)
	assert.True(t, cfg.EnableConsole)
	assert.Equal(t, []string{"monthly", "size: 5MB"}, cfg.PolicyList())

	_, err = NewConfigFromDefaults(map[string]any{"no_such_key": 1})
	assert.Error(t, err)

	_, err = NewConfigFromDefaults(map[string]any{"queue_size": "large"})
	assert.Error(t, err)

	_, err = NewConfigFromDefaults(map[string]any{"queue_size": 1.5})
	assert.Error(t, err)

	_, err = NewConfigFromDefaults(map[string]any{"format": "xml"})
	assert.Error(t, err)
}

func TestNewConfigFromFile(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := NewConfigFromFile(filepath.Join(t.TempDir(), "absent.toml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("log table", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.toml")
		content := `
[log]
level = -4
format = "json"
file_pattern = "logs/{date: yyyy-MM-dd}_{count}.log"
policies = "startup, daily: 03:00"
writing_thread = false
queue_size = 256
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		cfg, err := NewConfigFromFile(path)
		require.NoError(t, err)

		assert.Equal(t, LevelDebug, cfg.Level)
		assert.Equal(t, "json", cfg.Format)
		assert.Equal(t, "logs/{date: yyyy-MM-dd}_{count}.log", cfg.FilePattern)
		assert.Equal(t, []string{"startup", "daily: 03:00"}, cfg.PolicyList())
		assert.False(t, cfg.WritingThread)
		assert.Equal(t, int64(256), cfg.QueueSize)
		// Untouched keys keep their defaults
		assert.True(t, cfg.ShowLevel)
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte("[log]\npolicies = \"fortnightly\"\n"), 0644))

		_, err := NewConfigFromFile(path)
		assert.Error(t, err)
	})
}

func TestConfigOverride(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Override(
		"level=warn",
		"show_source=true",
		"queue_size=32",
		"policies=startup, size: 2MB",
	)
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, cfg.Level)
	assert.True(t, cfg.ShowSource)
	assert.Equal(t, int64(32), cfg.QueueSize)
	assert.Equal(t, []string{"startup", "size: 2MB"}, cfg.PolicyList())

	// Valid entries are applied, every invalid one is reported
	cfg = DefaultConfig()
	err = cfg.Override("format=json", "nokey", "queue_size=many", "colour=blue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue_size")
	assert.Contains(t, err.Error(), "colour")
	assert.Equal(t, "json", cfg.Format)
}
