package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(time.Minute, time.Hour)

	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	c.Set(ctx, "orgs", []int{1, 2})
	v, ok := c.Get(ctx, "orgs")
	assert.True(t, ok)
	assert.Equal(t, []int{1, 2}, v)

	current = current.Add(time.Minute)
	_, ok = c.Get(ctx, "orgs")
	assert.False(t, ok, "entry expires at its TTL")
	assert.Equal(t, 1, c.Len())

	c.evictExpired()
	assert.Equal(t, 0, c.Len())
}

func TestInMemoryCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(time.Minute, time.Hour)

	c.Set(ctx, "k", "v")
	c.Delete(ctx, "k")

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestStopCleanupIsIdempotent(t *testing.T) {
	c := NewInMemoryCache(time.Minute, 10*time.Millisecond)
	c.StartCleanup(context.Background())

	c.StopCleanup()
	c.StopCleanup()
}
