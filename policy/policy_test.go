package policy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

// fakeClock is a settable clock for date policies
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func missingFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.log")
}

func TestSizePolicy(t *testing.T) {
	t.Run("accepts until maximum", func(t *testing.T) {
		p, err := NewSize(10)
		require.NoError(t, err)
		require.NoError(t, p.Init(missingFile(t)))

		assert.True(t, p.CanAcceptLogEntry(1))
		assert.True(t, p.CanAcceptLogEntry(9))
		assert.False(t, p.CanAcceptLogEntry(1))
	})

	t.Run("init counts existing bytes", func(t *testing.T) {
		p, err := NewSize(10)
		require.NoError(t, err)
		require.NoError(t, p.Init(writeFile(t, "12345678")))

		assert.True(t, p.CanAcceptLogEntry(2))
		assert.False(t, p.CanAcceptLogEntry(1))
	})

	t.Run("continue", func(t *testing.T) {
		path := writeFile(t, "12345")

		p, _ := NewSize(10)
		ok, err := p.CanContinueFile(path)
		require.NoError(t, err)
		assert.True(t, ok)

		p, _ = NewSize(5)
		ok, err = p.CanContinueFile(path)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = p.CanContinueFile(missingFile(t))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("invalid maximum", func(t *testing.T) {
		_, err := NewSize(0)
		assert.Error(t, err)
	})
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"512", 512},
		{"512B", 512},
		{"1 kb", 1024},
		{"64 KB", 64 * 1024},
		{"10MB", 10 * 1024 * 1024},
		{"2gb", 2 * 1024 * 1024 * 1024},
	}
	for _, tt := range tests {
		got, err := ParseSize(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	for _, input := range []string{"", "abc", "-1", "0", "1.5MB", "99999999999999 GB"} {
		_, err := ParseSize(input)
		assert.Error(t, err, input)
	}
}

func TestCountPolicy(t *testing.T) {
	t.Run("accepts until maximum", func(t *testing.T) {
		p, err := NewCount(2)
		require.NoError(t, err)
		require.NoError(t, p.Init(missingFile(t)))

		assert.True(t, p.CanAcceptLogEntry(100))
		assert.True(t, p.CanAcceptLogEntry(100))
		assert.False(t, p.CanAcceptLogEntry(1))
	})

	t.Run("init counts existing lines", func(t *testing.T) {
		p, _ := NewCount(3)
		require.NoError(t, p.Init(writeFile(t, "a\nb\n")))

		assert.True(t, p.CanAcceptLogEntry(1))
		assert.False(t, p.CanAcceptLogEntry(1))
	})

	t.Run("continue", func(t *testing.T) {
		p, _ := NewCount(2)

		ok, err := p.CanContinueFile(writeFile(t, "a\n"))
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = p.CanContinueFile(writeFile(t, "a\nb\n"))
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = p.CanContinueFile(missingFile(t))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("invalid maximum", func(t *testing.T) {
		_, err := NewCount(-1)
		assert.Error(t, err)
	})

	t.Run("decodes utf-16 before counting", func(t *testing.T) {
		// U+0A41 followed by a line break; the first character holds a 0x0A byte
		path := writeFile(t, string([]byte{0x0A, 0x41, 0x00, 0x0A}))

		raw, _ := NewCount(2)
		ok, err := raw.CanContinueFile(path)
		require.NoError(t, err)
		assert.False(t, ok)

		p, err := New("count: 2", WithEncoding(unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)))
		require.NoError(t, err)
		ok, err = p.CanContinueFile(path)
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, p.Init(path))
		assert.True(t, p.CanAcceptLogEntry(1))
		assert.False(t, p.CanAcceptLogEntry(1))
	})
}

func TestStartupAndEndless(t *testing.T) {
	path := writeFile(t, "x\n")

	ok, err := NewStartup().CanContinueFile(path)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, NewStartup().CanAcceptLogEntry(1<<30))

	ok, err = NewEndless().CanContinueFile(path)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, NewEndless().CanAcceptLogEntry(1<<30))
}

func TestDailyPolicy(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)}
	p, err := New("daily: 03:00@UTC", WithClock(clock.Now))
	require.NoError(t, err)

	path := writeFile(t, "x\n")
	require.NoError(t, p.Init(path))
	assert.Equal(t, time.Date(2024, 3, 11, 3, 0, 0, 0, time.UTC), p.(*Date).NextRollover())

	assert.True(t, p.CanAcceptLogEntry(1))
	clock.now = time.Date(2024, 3, 11, 2, 59, 59, 0, time.UTC)
	assert.True(t, p.CanAcceptLogEntry(1))
	clock.now = time.Date(2024, 3, 11, 3, 0, 0, 0, time.UTC)
	assert.False(t, p.CanAcceptLogEntry(1))

	t.Run("continue depends on modification time", func(t *testing.T) {
		clock.now = time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)

		recent := time.Date(2024, 3, 10, 4, 0, 0, 0, time.UTC)
		require.NoError(t, os.Chtimes(path, recent, recent))
		ok, err := p.CanContinueFile(path)
		require.NoError(t, err)
		assert.True(t, ok)

		old := time.Date(2024, 3, 10, 2, 0, 0, 0, time.UTC)
		require.NoError(t, os.Chtimes(path, old, old))
		ok, err = p.CanContinueFile(path)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestWeeklyPolicy(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"mid week", time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC), time.Date(2024, 3, 18, 4, 0, 0, 0, time.UTC)},
		{"rollover day before time", time.Date(2024, 3, 11, 3, 0, 0, 0, time.UTC), time.Date(2024, 3, 11, 4, 0, 0, 0, time.UTC)},
		{"rollover day after time", time.Date(2024, 3, 11, 4, 0, 0, 0, time.UTC), time.Date(2024, 3, 18, 4, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{now: tt.now}
			p, err := New("weekly: MON 04:00 UTC", WithClock(clock.Now))
			require.NoError(t, err)
			require.NoError(t, p.Init(missingFile(t)))
			assert.Equal(t, tt.want, p.(*Date).NextRollover())
		})
	}
}

func TestParseWeekly(t *testing.T) {
	day, hour, minute, loc, err := parseWeekly("")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, day)
	assert.Equal(t, 0, hour)
	assert.Equal(t, 0, minute)
	assert.Equal(t, time.Local, loc)

	day, hour, minute, loc, err = parseWeekly("friday 23:30@UTC")
	require.NoError(t, err)
	assert.Equal(t, time.Friday, day)
	assert.Equal(t, 23, hour)
	assert.Equal(t, 30, minute)
	assert.Equal(t, time.UTC, loc)

	for _, arg := range []string{"MON 25:00", "MON 04:00 UTC extra", "MON 04:00 Nowhere/City"} {
		_, _, _, _, err := parseWeekly(arg)
		assert.Error(t, err, arg)
	}
}

func TestMonthlyPolicy(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 12, 15, 8, 0, 0, 0, time.UTC)}
	p, err := New("monthly: 0@UTC", WithClock(clock.Now))
	require.NoError(t, err)
	require.NoError(t, p.Init(missingFile(t)))
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), p.(*Date).NextRollover())
}

// recordingPolicy records calls and answers with fixed results
type recordingPolicy struct {
	continues bool
	accepts   bool
	initErr   error
	accepted  int
}

func (p *recordingPolicy) CanContinueFile(string) (bool, error) { return p.continues, nil }
func (p *recordingPolicy) Init(string) error                    { return p.initErr }
func (p *recordingPolicy) CanAcceptLogEntry(int) bool {
	p.accepted++
	return p.accepts
}

func TestBundlePolicy(t *testing.T) {
	t.Run("all must agree", func(t *testing.T) {
		first := &recordingPolicy{continues: true, accepts: false}
		second := &recordingPolicy{continues: false, accepts: true}
		b := NewBundleOf(first, second)

		ok, err := b.CanContinueFile("x")
		require.NoError(t, err)
		assert.False(t, ok)

		assert.False(t, b.CanAcceptLogEntry(1))
		assert.Equal(t, 1, first.accepted)
		assert.Equal(t, 1, second.accepted, "every policy must see the entry")
	})

	t.Run("all accept", func(t *testing.T) {
		b := NewBundleOf(&recordingPolicy{continues: true, accepts: true}, &recordingPolicy{continues: true, accepts: true})
		ok, err := b.CanContinueFile("x")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, b.CanAcceptLogEntry(1))
	})

	t.Run("init errors are joined", func(t *testing.T) {
		errA := errors.New("a")
		errB := errors.New("b")
		b := NewBundleOf(&recordingPolicy{initErr: errA}, &recordingPolicy{}, &recordingPolicy{initErr: errB})

		err := b.Init("x")
		assert.ErrorIs(t, err, errA)
		assert.ErrorIs(t, err, errB)
	})
}

func TestRegistry(t *testing.T) {
	t.Run("builds known policies", func(t *testing.T) {
		p, err := New("size: 10 KB")
		require.NoError(t, err)
		require.IsType(t, &Size{}, p)
		assert.Equal(t, int64(10*1024), p.(*Size).Max())

		p, err = New("  Startup ")
		require.NoError(t, err)
		assert.IsType(t, &Startup{}, p)
	})

	t.Run("unknown policy", func(t *testing.T) {
		_, err := New("hourly")
		assert.ErrorIs(t, err, ErrUnknownPolicy)
	})

	t.Run("bad arguments", func(t *testing.T) {
		for _, definition := range []string{"count: x", "count: 0", "size", "daily: 25:00", "startup: now", "monthly: 3@Nowhere/City"} {
			_, err := New(definition)
			assert.Error(t, err, definition)
		}
	})

	t.Run("bundle shapes", func(t *testing.T) {
		p, err := NewBundle(nil)
		require.NoError(t, err)
		assert.IsType(t, &Endless{}, p)

		p, err = NewBundle([]string{"startup", " "})
		require.NoError(t, err)
		assert.IsType(t, &Startup{}, p)

		p, err = NewBundle([]string{"startup", "count: 5"})
		require.NoError(t, err)
		require.IsType(t, &Bundle{}, p)
		assert.Len(t, p.(*Bundle).Policies(), 2)

		_, err = NewBundle([]string{"startup", "nope"})
		assert.ErrorIs(t, err, ErrUnknownPolicy)
	})

	t.Run("custom policy", func(t *testing.T) {
		Register("never", func(string, Options) (Policy, error) {
			return &recordingPolicy{}, nil
		})
		assert.Contains(t, Names(), "never")

		p, err := New("never")
		require.NoError(t, err)
		assert.False(t, p.CanAcceptLogEntry(1))
	})
}
