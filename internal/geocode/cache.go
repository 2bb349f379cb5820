package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const cacheKeyPrefix = "geocode:"

// CachedGeocoder memoises searches in Redis and collapses concurrent identical lookups.
type CachedGeocoder struct {
	next   Searcher
	rdb    *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

// NewCachedGeocoder wraps next. A non-positive ttl caches for a day.
func NewCachedGeocoder(next Searcher, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedGeocoder {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedGeocoder{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

// Search serves from the cache when possible. Cache failures fall through to the upstream.
// Empty results are cached too so repeated misses do not hit the upstream.
func (c *CachedGeocoder) Search(ctx context.Context, query string, limit int) ([]Place, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	key := cacheKeyPrefix + strconv.Itoa(limit) + ":" + normalizeQuery(query)

	if places, ok := c.lookup(ctx, key); ok {
		return places, nil
	}

	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		places, err := c.next.Search(ctx, query, limit)
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, places)
		return places, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("geocode lookup shared", zap.String("query", query))
	}
	return v.([]Place), nil
}

func (c *CachedGeocoder) lookup(ctx context.Context, key string) ([]Place, bool) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("geocode cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var places []Place
	if err := json.Unmarshal(raw, &places); err != nil {
		c.logger.Warn("geocode cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return places, true
}

func (c *CachedGeocoder) store(ctx context.Context, key string, places []Place) {
	raw, err := json.Marshal(places)
	if err != nil {
		c.logger.Warn("geocode cache encode failed", zap.Error(fmt.Errorf("encode places: %w", err)))
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("geocode cache write failed", zap.Error(err))
	}
}
