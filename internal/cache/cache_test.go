package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	TouristID string   `json:"touristId"`
	Triggers  []string `json:"triggers"`
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute, time.Minute)

	var got entry
	hit, err := c.Get(ctx, "T1", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	original := entry{TouristID: "T1", Triggers: []string{"Profile Completion"}}
	require.NoError(t, c.Set(ctx, "T1", original, time.Minute))

	hit, err = c.Get(ctx, "T1", &got)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, original, got)

	// Reads are copies: mutating one must not leak into the next read.
	got.Triggers[0] = "changed"
	var again entry
	_, err = c.Get(ctx, "T1", &again)
	require.NoError(t, err)
	assert.Equal(t, "Profile Completion", again.Triggers[0])

	require.NoError(t, c.Delete(ctx, "T1"))
	hit, err = c.Get(ctx, "T1", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute, time.Minute)

	require.NoError(t, c.Set(ctx, "short", entry{TouristID: "T2"}, 10*time.Millisecond))
	assert.Equal(t, 1, c.ItemCount())

	require.Eventually(t, func() bool {
		var got entry
		hit, err := c.Get(ctx, "short", &got)
		return err == nil && !hit
	}, time.Second, 5*time.Millisecond)
}
