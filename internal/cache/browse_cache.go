// Package cache fronts the browse facade with a Redis-backed result cache.
// Browse envelopes are pure functions of their inputs until the index
// changes, so short-TTL caching is safe and cheap.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"catalog-browser/internal/browser"
	"catalog-browser/internal/common/database"
	"catalog-browser/internal/common/errors"
	"catalog-browser/internal/common/logger"
	"catalog-browser/internal/common/metrics"
)

const keyPrefix = "browse:"

// Facade is the browse entry point the cache wraps.
type Facade interface {
	Browse(ctx context.Context, pageNumber int, userQueries map[string]string, fixedQueries browser.FixedQueries) (*browser.ResultEnvelope, error)
}

// BrowseCache serves browse envelopes from Redis, falling back to the
// wrapped facade on miss. Cache failures are logged and degrade to a direct
// browse; they never fail the request. Errors from the facade are never
// cached.
type BrowseCache struct {
	inner  Facade
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

// New creates a BrowseCache.
func New(inner Facade, redis *database.RedisClient, ttl time.Duration, log logger.Logger) *BrowseCache {
	return &BrowseCache{
		inner:  inner,
		redis:  redis,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "browse-cache"}),
	}
}

// Browse implements Facade.
func (c *BrowseCache) Browse(ctx context.Context, pageNumber int, userQueries map[string]string, fixedQueries browser.FixedQueries) (*browser.ResultEnvelope, error) {
	key := cacheKey(pageNumber, userQueries, fixedQueries)

	cached, err := c.redis.Get(ctx, key)
	switch {
	case err == nil:
		var envelope browser.ResultEnvelope
		if err := json.Unmarshal([]byte(cached), &envelope); err == nil {
			metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
			return &envelope, nil
		}
		// Corrupt entry: drop it and recompute.
		_ = c.redis.Del(ctx, key)
		c.logger.WithError(errors.NewCacheEntryCorruptError(key)).Warn("dropping corrupt cache entry", nil)
		metrics.CacheRequestsTotal.WithLabelValues("corrupt").Inc()
	case err == redis.Nil:
		metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()
	default:
		c.logger.WithError(errors.NewCacheUnavailableError(err)).Warn("cache lookup failed", map[string]interface{}{"key": key})
		metrics.CacheRequestsTotal.WithLabelValues("error").Inc()
	}

	envelope, err := c.inner.Browse(ctx, pageNumber, userQueries, fixedQueries)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(envelope); err == nil {
		if err := c.redis.Set(ctx, key, string(data), c.ttl); err != nil {
			c.logger.WithError(err).Warn("failed to store browse envelope", map[string]interface{}{"key": key})
		}
	}

	return envelope, nil
}

// cacheKey digests the browse inputs into a stable key. Maps are serialized
// in sorted key order so equivalent requests always share an entry.
func cacheKey(pageNumber int, userQueries map[string]string, fixedQueries browser.FixedQueries) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "page=%d", pageNumber)

	userKeys := make([]string, 0, len(userQueries))
	for k := range userQueries {
		userKeys = append(userKeys, k)
	}
	sort.Strings(userKeys)
	for _, k := range userKeys {
		fmt.Fprintf(&sb, "|u:%s=%s", k, userQueries[k])
	}

	fixedKeys := make([]string, 0, len(fixedQueries))
	for k := range fixedQueries {
		fixedKeys = append(fixedKeys, k)
	}
	sort.Strings(fixedKeys)
	for _, k := range fixedKeys {
		fmt.Fprintf(&sb, "|f:%s=%s", k, strings.Join(fixedQueries[k], ","))
	}

	sum := sha256.Sum256([]byte(sb.String()))
	return keyPrefix + hex.EncodeToString(sum[:])
}
