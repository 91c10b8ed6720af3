package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freezeTime(t *testing.T, at time.Time) func(d time.Duration) {
	t.Helper()
	current := at
	timeNow = func() time.Time { return current }
	t.Cleanup(func() { timeNow = time.Now })
	return func(d time.Duration) { current = current.Add(d) }
}

func TestCacheSetGet(t *testing.T) {
	freezeTime(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	c := New[string]()
	c.Set("analysis_f1", "result", time.Hour)

	got, ok := c.Get("analysis_f1")
	require.True(t, ok)
	assert.Equal(t, "result", got)

	_, ok = c.Get("analysis_f2")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	advance := freezeTime(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	c := New[int]()
	c.Set("k", 42, time.Hour)

	advance(59 * time.Minute)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, got)

	advance(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry is reclaimed on read")
}

func TestCacheOverwriteResetsTTL(t *testing.T) {
	advance := freezeTime(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	c := New[string]()
	c.Set("k", "old", time.Hour)

	advance(50 * time.Minute)
	c.Set("k", "new", time.Hour)

	advance(30 * time.Minute)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "new", got)
}

func TestCacheDelete(t *testing.T) {
	freezeTime(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	c := New[string]()
	c.Set("k", "v", time.Hour)
	c.Delete("k")

	_, ok := c.Get("k")
	assert.False(t, ok)

	c.Delete("missing")
}

func TestCacheSweep(t *testing.T) {
	advance := freezeTime(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	c := New[string]()
	c.Set("a", "1", 30*time.Minute)
	c.Set("b", "2", time.Hour)
	c.Set("c", "3", 2*time.Hour)

	advance(45 * time.Minute)
	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 2, c.Len())

	_, ok := c.Get("b")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)

	assert.Equal(t, 0, c.Sweep(), "second sweep finds nothing new")
}

func TestKeyFamilies(t *testing.T) {
	assert.Equal(t, "analysis_f1", AnalysisKey("f1"))
	assert.Equal(t, "image_f1_image/png", ImageKey("f1", "image/png"))
	assert.NotEqual(t, ImageKey("f1", "image/png"), ImageKey("f1", "image/tiff"),
		"mime types keep their own converted entries")
	assert.NotEqual(t, AnalysisKey("f1"), ImageKey("f1", "image/png"))
}
