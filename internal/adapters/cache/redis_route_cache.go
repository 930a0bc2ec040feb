package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hospital-route-service/internal/platform/obs"

	geojson "github.com/paulmach/go.geojson"
	"github.com/redis/go-redis/v9"
)

// RedisRouteCache stores route geometries as GeoJSON with a per-key TTL.
type RedisRouteCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisRouteCache(client *redis.Client, ttl time.Duration) *RedisRouteCache {
	return &RedisRouteCache{Client: client, TTL: ttl}
}

func (c *RedisRouteCache) Get(ctx context.Context, key string) (_ *geojson.Geometry, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.redis.Get")(&err)

	if c.Client == nil {
		return nil, false, errors.New("route cache: redis client is nil")
	}

	b, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: %w", err)
	}

	g, err := geojson.UnmarshalGeometry(b)
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: decode geometry: %w", err)
	}
	return g, true, nil
}

func (c *RedisRouteCache) Put(ctx context.Context, key string, geometry *geojson.Geometry) error {
	if c.Client == nil {
		return errors.New("route cache: redis client is nil")
	}
	if geometry == nil {
		return errors.New("insert route cache: geometry is nil")
	}

	b, err := geometry.MarshalJSON()
	if err != nil {
		return fmt.Errorf("insert route cache: encode geometry: %w", err)
	}

	if err := c.Client.Set(ctx, key, b, c.TTL).Err(); err != nil {
		return fmt.Errorf("insert route cache: %w", err)
	}
	return nil
}
