package auth

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/internal/testutil"
)

func TestRedisBlacklist(t *testing.T) {
	addr := testutil.StartRedis(t)
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()
	bl := NewRedisBlacklist(client)

	t.Run("unknown token", func(t *testing.T) {
		revoked, err := bl.IsBlacklisted(ctx, "jti-1")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("revoked token", func(t *testing.T) {
		require.NoError(t, bl.Revoke(ctx, "jti-1", time.Minute))

		revoked, err := bl.IsBlacklisted(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)

		ttl, err := client.TTL(ctx, keyPrefix+"jti-1").Result()
		require.NoError(t, err)
		assert.LessOrEqual(t, ttl, time.Minute)
	})

	t.Run("expired token is not stored", func(t *testing.T) {
		require.NoError(t, bl.Revoke(ctx, "jti-2", 0))

		revoked, err := bl.IsBlacklisted(ctx, "jti-2")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("empty id", func(t *testing.T) {
		assert.Error(t, bl.Revoke(ctx, "", time.Minute))
	})
}

func TestRedisBlacklist_Unavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	defer client.Close()

	_, err := NewRedisBlacklist(client).IsBlacklisted(context.Background(), "jti")
	assert.Error(t, err)
}
