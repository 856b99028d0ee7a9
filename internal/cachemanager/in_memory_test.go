package cachemanager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemory[map[string]any]("test")

	_, found := cache.Get(ctx, "missing")
	assert.False(t, found)

	cache.Set(ctx, "tpl", map[string]any{"tier": 1})
	got, found := cache.Get(ctx, "tpl")
	require.True(t, found)
	assert.Equal(t, map[string]any{"tier": 1}, got)

	cache.Flush(ctx)
	_, found = cache.Get(ctx, "tpl")
	assert.False(t, found)
}
