// Package auth keeps the set of revoked bearer tokens.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "bookshelf:revoked:"

// RedisBlacklist stores revoked token ids until the token itself would have
// expired.
type RedisBlacklist struct {
	client redis.Cmdable
}

func NewRedisBlacklist(client redis.Cmdable) *RedisBlacklist {
	return &RedisBlacklist{client: client}
}

// Revoke marks jti as revoked for ttl. A non-positive ttl is a no-op since
// the token has already expired.
func (b *RedisBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return errors.New("empty token id")
	}
	if ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, keyPrefix+jti, 1, ttl).Err()
}

func (b *RedisBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
