package genre

import (
	"context"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultCacheKey holds the JSON-encoded genre list.
const DefaultCacheKey = "bookshelf:genres:v1"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CachedCatalog serves genre lookups from a Redis copy of the full list.
// Redis errors are logged and fall through to the wrapped catalog.
type CachedCatalog struct {
	next   Catalog
	client redis.Cmdable
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedCatalog(next Catalog, client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *CachedCatalog {
	return &CachedCatalog{
		next:   next,
		client: client,
		key:    DefaultCacheKey,
		ttl:    ttl,
		logger: logger.Named("genre_cache"),
	}
}

func (c *CachedCatalog) ListAll(ctx context.Context) ([]Genre, error) {
	if genres, ok := c.load(ctx); ok {
		return genres, nil
	}
	genres, err := c.next.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, genres)
	return genres, nil
}

func (c *CachedCatalog) Exists(ctx context.Context, id int64) (bool, error) {
	genres, err := c.ListAll(ctx)
	if err != nil {
		return false, err
	}
	for _, g := range genres {
		if g.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (c *CachedCatalog) Missing(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	genres, err := c.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return missingFrom(genres, ids), nil
}

// Invalidate drops the cached list so the next read goes to the source.
func (c *CachedCatalog) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}

// InvalidateCache drops the shared genre list from client. Run it after
// migrations change the genres table.
func InvalidateCache(ctx context.Context, client redis.Cmdable) error {
	return client.Del(ctx, DefaultCacheKey).Err()
}

func (c *CachedCatalog) load(ctx context.Context) ([]Genre, bool) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("genre cache read failed", zap.String("key", c.key), zap.Error(err))
		return nil, false
	}
	var genres []Genre
	if err := json.Unmarshal(raw, &genres); err != nil {
		c.logger.Warn("genre cache entry is corrupt", zap.String("key", c.key), zap.Error(err))
		return nil, false
	}
	return genres, true
}

func (c *CachedCatalog) store(ctx context.Context, genres []Genre) {
	raw, err := json.Marshal(genres)
	if err != nil {
		c.logger.Warn("genre cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("genre cache write failed", zap.String("key", c.key), zap.Error(err))
	}
}
