package infra

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheGetSet(t *testing.T) {
	c := NewCache[int](time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", 42)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	c.Set("a", 7)
	v, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 7, v)
}

func TestCacheExpiry(t *testing.T) {
	now := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	c := NewCache[string](time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	c.SetWithTTL("short", "s", time.Second)

	now = now.Add(2 * time.Second)
	_, ok := c.Get("short")
	assert.False(t, ok, "short entry should have expired")
	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	assert.Equal(t, 1, c.Cleanup())
	assert.Equal(t, 1, c.Len())

	now = now.Add(time.Hour)
	assert.Equal(t, 1, c.Cleanup())
	assert.Equal(t, 0, c.Len())
	assert.Zero(t, c.Cleanup())
}

func TestCacheCleanupBoundsGrowth(t *testing.T) {
	now := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	c := NewCache[int](time.Second)
	c.now = func() time.Time { return now }

	for i := range 500 {
		c.Set(fmt.Sprintf("T%d", i), i)
		now = now.Add(10 * time.Millisecond)
	}
	require.Equal(t, 500, c.Len())

	// first 400 entries are older than the TTL
	assert.Equal(t, 400, c.Cleanup())
	assert.Equal(t, 100, c.Len())
	_, ok := c.Get("T450")
	assert.True(t, ok)
}
