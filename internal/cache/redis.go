package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/amana-asso/delivery-service/internal/config"
)

// ErrMiss is returned when a key is absent; callers fall back to the
// database and repopulate.
var ErrMiss = errors.New("cache miss")

const keyPrefix = "sheet:"

// Collection keys mirror the stored tables. Every write path must
// invalidate the collection it touched.
const (
	CollectionFamilies   = "families"
	CollectionDrivers    = "drivers"
	CollectionSectors    = "sectors"
	CollectionDeliveries = "deliveries"
)

// RedisCache is a read-through cache for table snapshots and geocode
// results. Disabled mode turns every call into a no-op miss so the
// service runs without redis.
type RedisCache struct {
	client  *redis.Client
	enabled bool
}

func NewRedisCache(cfg config.RedisConfig) (*RedisCache, error) {
	if !cfg.Enabled {
		return &RedisCache{enabled: false}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, errors.Wrap(err, "failed to connect to redis")
	}

	return &RedisCache{client: client, enabled: true}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string, value interface{}) error {
	if !c.enabled {
		return ErrMiss
	}

	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return ErrMiss
		}
		return errors.Wrap(err, "failed to get value from redis")
	}

	if err := json.Unmarshal(data, value); err != nil {
		return errors.Wrap(err, "failed to unmarshal cached value")
	}
	return nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.enabled {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "failed to marshal value for caching")
	}

	if err := c.client.Set(ctx, keyPrefix+key, data, ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to set value in redis")
	}
	return nil
}

// Invalidate drops a single collection snapshot.
func (c *RedisCache) Invalidate(ctx context.Context, key string) error {
	if !c.enabled {
		return nil
	}
	if err := c.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return errors.Wrap(err, "failed to invalidate cache key")
	}
	return nil
}

// InvalidateAll drops every key under the service prefix.
func (c *RedisCache) InvalidateAll(ctx context.Context) error {
	if !c.enabled {
		return nil
	}

	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return errors.Wrap(err, "failed to delete cache key")
		}
	}
	if err := iter.Err(); err != nil {
		return errors.Wrap(err, "failed to scan cache keys")
	}
	return nil
}

// GeocodeCacheKey builds the cache key for a geocoded address.
func GeocodeCacheKey(address string) string {
	return "geocode:" + address
}

func (c *RedisCache) Close() error {
	if !c.enabled || c.client == nil {
		return nil
	}
	return c.client.Close()
}
