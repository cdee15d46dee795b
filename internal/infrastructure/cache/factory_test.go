package cache

import (
	"context"
	"testing"

	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestConnect(t *testing.T) {
	ctx := context.Background()
	unreachable := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

	t.Run("disabled returns no client", func(t *testing.T) {
		client, err := Connect(ctx, config.RedisConfig{Enabled: false})
		require.NoError(t, err)
		assert.Nil(t, client)
	})

	t.Run("unreachable falls back", func(t *testing.T) {
		client, err := Connect(ctx, unreachable, WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		assert.Nil(t, client)
	})

	t.Run("unreachable without fallback fails", func(t *testing.T) {
		client, err := Connect(ctx, unreachable, WithInMemoryFallback(false))
		require.Error(t, err)
		assert.Nil(t, client)
		assert.Contains(t, err.Error(), "127.0.0.1:1")
	})
}

func TestNewIdempotencyStore_InMemoryWithoutClient(t *testing.T) {
	store := NewIdempotencyStore(nil)
	defer store.Close()
	_, ok := store.(*InMemoryIdempotencyStore)
	assert.True(t, ok)
}
