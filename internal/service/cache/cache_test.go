package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	c := NewTTLCache(10)
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetBytes(ctx, "k", []byte("v"), time.Minute))
	b, ok, err := c.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), b)

	now = now.Add(2 * time.Minute)
	_, ok, err = c.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTTLCache_MaxEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	c := NewTTLCache(2)
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetBytes(ctx, "short", []byte("1"), time.Second))
	require.NoError(t, c.SetBytes(ctx, "long", []byte("2"), time.Hour))
	require.NoError(t, c.SetBytes(ctx, "new", []byte("3"), time.Hour))

	assert.Equal(t, 2, c.Len())
	_, ok, _ := c.GetBytes(ctx, "short")
	assert.False(t, ok, "entry closest to expiry is evicted")
	_, ok, _ = c.GetBytes(ctx, "long")
	assert.True(t, ok)

	// overwriting an existing key never evicts
	require.NoError(t, c.SetBytes(ctx, "long", []byte("4"), time.Hour))
	assert.Equal(t, 2, c.Len())
}

func TestKeyAndBucket(t *testing.T) {
	t1 := time.Date(2026, 10, 14, 12, 0, 10, 0, time.UTC)
	t2 := time.Date(2026, 10, 14, 12, 0, 50, 0, time.UTC)
	ttl := time.Minute

	assert.Equal(t, Bucket(t1, ttl), Bucket(t2, ttl))
	assert.Equal(t, t1, Bucket(t1, 0))
	assert.Equal(t,
		Key("history", Bucket(t1, ttl), "milk", "30"),
		Key("history", Bucket(t2, ttl), "milk", "30"),
	)
	// the store sees the raw value, so the key must too
	assert.NotEqual(t, Key("history", t1, "milk ", "30"), Key("history", t1, "milk", "30"))
	assert.NotEqual(t, Key("history", t1, "Milk", "30"), Key("history", t1, "milk", "30"))
	assert.NotEqual(t, Key("history", t1, "milk", "30"), Key("history", t1, "milk", "31"))
}
