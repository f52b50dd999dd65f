package sources

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jonathan/job-finder/internal/types"
)

// DefaultCacheTTL bounds how long raw provider responses are reused.
const DefaultCacheTTL = 15 * time.Minute

// cacheClient is the subset of redis.Client the decorator uses.
type cacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Cached decorates an Adapter with a Redis-backed raw-record cache keyed by
// source and query. Cache failures are non-fatal: the adapter falls through
// to a live fetch, so Redis being down only costs latency.
type Cached struct {
	inner  Adapter
	rdb    cacheClient
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCached wraps inner with a cache. A nil client disables caching.
func NewCached(inner Adapter, rdb *redis.Client, ttl time.Duration, logger zerolog.Logger) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c := &Cached{
		inner:  inner,
		ttl:    ttl,
		logger: logger.With().Str("source", string(inner.Source())).Logger(),
	}
	if rdb != nil {
		c.rdb = rdb
	}
	return c
}

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// Source identifies the wrapped provider.
func (c *Cached) Source() types.Source {
	return c.inner.Source()
}

// Fetch serves from cache when a fresh entry exists, otherwise delegates to
// the wrapped adapter and stores its result.
func (c *Cached) Fetch(ctx context.Context, criteria types.SearchCriteria) ([]types.RawRecord, error) {
	if c.rdb == nil {
		return c.inner.Fetch(ctx, criteria)
	}

	key := c.cacheKey(criteria)

	if data, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var records []types.RawRecord
		if err := json.Unmarshal(data, &records); err == nil {
			c.logger.Debug().Int("records", len(records)).Msg("cache hit")
			return records, nil
		}
		// Corrupt entry: drop it and refetch.
		_ = c.rdb.Del(ctx, key).Err()
	}

	records, err := c.inner.Fetch(ctx, criteria)
	if err != nil {
		return records, err
	}

	if data, merr := json.Marshal(records); merr == nil {
		if serr := c.rdb.Set(ctx, key, data, c.ttl).Err(); serr != nil {
			c.logger.Warn().Err(serr).Msg("cache write failed")
		}
	}

	return records, nil
}

func (c *Cached) cacheKey(criteria types.SearchCriteria) string {
	query := strings.ToLower(criteria.Position) + "|" + strings.ToLower(criteria.Location)
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("jobs:raw:%s:%s", c.inner.Source(), hex.EncodeToString(sum[:])[:16])
}
