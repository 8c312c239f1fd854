package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGetDelete(t *testing.T) {
	c := New(time.Minute, time.Minute)

	_, ok := c.Get("k")
	assert.False(t, ok)

	c.Set("k", "v1", time.Minute)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v1", v)

	// Set always replaces wholesale.
	c.Set("k", "v2", time.Minute)
	v, ok = c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", v)

	c.Delete("k")
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	c := New(time.Minute, time.Minute)

	c.Set("k", "v", 10*time.Millisecond)
	_, ok := c.Get("k")
	require.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok := c.Get("k")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestMemoryCacheClear(t *testing.T) {
	c := New(time.Minute, time.Minute)
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)

	c.Clear()

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestNoopCacheStoresNothing(t *testing.T) {
	c := Noop()
	c.Set("k", "v", time.Minute)
	_, ok := c.Get("k")
	assert.False(t, ok)
}
