package compat

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/rotlog"
)

// createTestCompatBuilder creates a standard setup for compatibility adapter tests
func createTestCompatBuilder(t *testing.T) (*Builder, *rotlog.Logger, string) {
	t.Helper()
	tmpDir := t.TempDir()
	appLogger, err := rotlog.NewBuilder().
		FilePattern(filepath.Join(tmpDir, "app.log")).
		Format("json").
		LevelString("debug").
		Build()
	require.NoError(t, err)

	builder := NewBuilder().WithLogger(appLogger)
	return builder, appLogger, tmpDir
}

// readLogLines shuts the logger down and returns the decoded lines of app.log
func readLogLines(t *testing.T, logger *rotlog.Logger, dir string) []map[string]any {
	t.Helper()
	require.NoError(t, logger.Shutdown(time.Second))

	f, err := os.Open(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	defer f.Close()

	var entries []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry), "Failed to parse log line: %s", scanner.Text())
		entries = append(entries, entry)
	}
	require.NoError(t, scanner.Err())
	return entries
}

// TestCompatBuilder verifies the compatibility builder can be initialized correctly
func TestCompatBuilder(t *testing.T) {
	t.Run("with existing logger", func(t *testing.T) {
		builder, logger, _ := createTestCompatBuilder(t)
		defer logger.Shutdown()

		gnetAdapter, err := builder.BuildGnet()
		require.NoError(t, err)
		assert.NotNil(t, gnetAdapter)
		assert.Equal(t, logger, gnetAdapter.logger)
	})

	t.Run("with config", func(t *testing.T) {
		logCfg := rotlog.DefaultConfig()
		logCfg.FilePattern = filepath.Join(t.TempDir(), "server_{count}.log")

		builder := NewBuilder().WithConfig(logCfg)
		fasthttpAdapter, err := builder.BuildFastHTTP()
		require.NoError(t, err)
		assert.NotNil(t, fasthttpAdapter)

		logger1, err := builder.GetLogger()
		require.NoError(t, err)
		defer logger1.Shutdown()

		// The created logger is reused
		logger2, err := builder.GetLogger()
		require.NoError(t, err)
		assert.Same(t, logger1, logger2)
	})

	t.Run("with overrides", func(t *testing.T) {
		logCfg := rotlog.DefaultConfig()
		logCfg.FilePattern = filepath.Join(t.TempDir(), "server.log")

		builder := NewBuilder().WithConfig(logCfg).WithOverrides("format=json", "level=debug")
		logger, err := builder.GetLogger()
		require.NoError(t, err)
		defer logger.Shutdown()

		assert.Equal(t, "json", logger.GetConfig().Format)
		assert.Equal(t, rotlog.LevelDebug, logger.GetConfig().Level)
		// The passed config is not modified
		assert.Equal(t, "txt", logCfg.Format)

		_, err = NewBuilder().WithOverrides("colour=blue").GetLogger()
		assert.Error(t, err)
	})

	t.Run("nil logger", func(t *testing.T) {
		_, err := NewBuilder().WithLogger(nil).BuildGnet()
		assert.Error(t, err)
	})

	t.Run("invalid config", func(t *testing.T) {
		logCfg := rotlog.DefaultConfig()
		logCfg.Policies = "sometimes"
		_, err := NewBuilder().WithConfig(logCfg).BuildStructuredGnet()
		assert.Error(t, err)
	})
}

// TestGnetAdapter tests the gnet adapter's logging output and format
func TestGnetAdapter(t *testing.T) {
	builder, logger, tmpDir := createTestCompatBuilder(t)

	var fatalMsg string
	adapter, err := builder.BuildGnet(WithFatalHandler(func(msg string) {
		fatalMsg = msg
	}))
	require.NoError(t, err)

	adapter.Debugf("gnet debug id=%d", 1)
	adapter.Infof("gnet info id=%d", 2)
	adapter.Warnf("gnet warn id=%d", 3)
	adapter.Errorf("gnet error id=%d", 4)
	adapter.Fatalf("gnet fatal id=%d", 5)

	entries := readLogLines(t, logger, tmpDir)

	expected := []struct{ level, msg string }{
		{"DEBUG", "gnet debug id=1"},
		{"INFO", "gnet info id=2"},
		{"WARN", "gnet warn id=3"},
		{"ERROR", "gnet error id=4"},
		{"ERROR", "gnet fatal id=5"},
	}
	require.Len(t, entries, len(expected))

	for i, entry := range entries {
		assert.Equal(t, expected[i].level, entry["level"])
		assert.Equal(t, expected[i].msg, entry["message"])
		assert.Equal(t, "gnet", entry["tag"])
	}
	assert.Equal(t, map[string]any{"fatal": "true"}, entries[4]["context"])
	assert.Equal(t, "gnet fatal id=5", fatalMsg, "Custom fatal handler should have been called")
}

// TestGnetAdapterTag verifies the tag option
func TestGnetAdapterTag(t *testing.T) {
	builder, logger, tmpDir := createTestCompatBuilder(t)

	adapter, err := builder.BuildGnet(WithGnetTag("edge"))
	require.NoError(t, err)
	adapter.Infof("tagged")

	entries := readLogLines(t, logger, tmpDir)
	require.Len(t, entries, 1)
	assert.Equal(t, "edge", entries[0]["tag"])
}

// TestStructuredGnetAdapter tests the gnet adapter with structured field extraction
func TestStructuredGnetAdapter(t *testing.T) {
	builder, logger, tmpDir := createTestCompatBuilder(t)

	adapter, err := builder.BuildStructuredGnet()
	require.NoError(t, err)

	adapter.Infof("request served status=%d client_ip=%s", 200, "127.0.0.1")
	adapter.Warnf("event loop %d is busy", 3)

	entries := readLogLines(t, logger, tmpDir)
	require.Len(t, entries, 2)

	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "request served", entries[0]["message"])
	assert.Equal(t, map[string]any{"status": "200", "client_ip": "127.0.0.1"}, entries[0]["context"])

	// Verbs without a key stay in the message
	assert.Equal(t, "event loop 3 is busy", entries[1]["message"])
	assert.NotContains(t, entries[1], "context")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		args       []any
		wantMsg    string
		wantFields map[string]string
	}{
		{"pairs", "conn opened fd=%d, addr: %s", []any{7, "10.0.0.1:80"}, "conn opened", map[string]string{"fd": "7", "addr": "10.0.0.1:80"}},
		{"no pairs", "listening on %s", []any{":9000"}, "listening on :9000", nil},
		{"mixed verbs", "loop %d fd=%d", []any{1, 2}, "loop 1 fd=2", nil},
		{"escaped percent", "load=%d%%", []any{90}, "load=90%", nil},
		{"missing args", "fd=%d", nil, "fd=%!d(MISSING)", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, fields := parseFormat(tt.format, tt.args)
			assert.Equal(t, tt.wantMsg, msg)
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

// TestFastHTTPAdapter tests the fasthttp adapter's logging output and level detection
func TestFastHTTPAdapter(t *testing.T) {
	builder, logger, tmpDir := createTestCompatBuilder(t)

	adapter, err := builder.BuildFastHTTP()
	require.NoError(t, err)

	testMessages := []string{
		"this is some informational message",
		"a debug message for the developers",
		"warning: something might be wrong",
		"an error occurred while processing",
	}
	for _, msg := range testMessages {
		adapter.Printf("%s", msg)
	}

	entries := readLogLines(t, logger, tmpDir)
	expectedLevels := []string{"INFO", "DEBUG", "WARN", "ERROR"}
	require.Len(t, entries, 4, "Should have 4 fasthttp log lines")

	for i, entry := range entries {
		assert.Equal(t, expectedLevels[i], entry["level"])
		assert.Equal(t, testMessages[i], entry["message"])
		assert.Equal(t, "fasthttp", entry["tag"])
	}
}

// TestFastHTTPAdapterOptions covers the default level and a custom detector
func TestFastHTTPAdapterOptions(t *testing.T) {
	builder, logger, tmpDir := createTestCompatBuilder(t)

	plain, err := builder.BuildFastHTTP(WithDefaultLevel(rotlog.LevelWarn), WithLevelDetector(nil))
	require.NoError(t, err)
	plain.Printf("error words do not matter")

	custom, err := builder.BuildFastHTTP(WithLevelDetector(func(msg string) (int64, bool) {
		return rotlog.LevelDebug, msg == "noisy"
	}))
	require.NoError(t, err)
	custom.Printf("noisy")
	custom.Printf("regular")

	entries := readLogLines(t, logger, tmpDir)
	require.Len(t, entries, 3)
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, "DEBUG", entries[1]["level"])
	assert.Equal(t, "INFO", entries[2]["level"])
}
