package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/backstage/services/supplychain/config"
)

// CachedCatalog wraps a ProductCatalog with a Redis read-through
// cache. When Redis is disabled or unavailable every lookup falls
// through to the inner catalog.
type CachedCatalog struct {
	inner   ProductCatalog
	client  *redis.Client
	enabled bool
	ttl     time.Duration
}

// NewCachedCatalog creates a cached catalog client
func NewCachedCatalog(inner ProductCatalog, redisCfg config.RedisConfig, catalogCfg config.CatalogConfig) (*CachedCatalog, error) {
	if !redisCfg.Enabled {
		return &CachedCatalog{inner: inner, enabled: false}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", redisCfg.Host, redisCfg.Port),
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, errors.Wrap(err, "failed to connect to Redis")
	}

	return &CachedCatalog{
		inner:   inner,
		client:  client,
		enabled: true,
		ttl:     catalogCfg.CacheTTL,
	}, nil
}

// ProductName returns the cached display name, looking it up and
// caching it on a miss
func (c *CachedCatalog) ProductName(ctx context.Context, itemID string) (string, error) {
	if !c.enabled {
		return c.inner.ProductName(ctx, itemID)
	}

	key := productNameCacheKey(itemID)

	name, err := c.client.Get(ctx, key).Result()
	if err == nil {
		return name, nil
	}
	if err != redis.Nil {
		log.Warn().Err(err).Str("item_id", itemID).Msg("Product cache read failed")
	}

	name, err = c.inner.ProductName(ctx, itemID)
	if err != nil {
		return "", err
	}

	if err := c.client.Set(ctx, key, name, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("item_id", itemID).Msg("Product cache write failed")
	}

	return name, nil
}

// Close closes the Redis connection
func (c *CachedCatalog) Close() error {
	if !c.enabled || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// productNameCacheKey generates a cache key for product name data
func productNameCacheKey(itemID string) string {
	return fmt.Sprintf("product-name:%s", itemID)
}
