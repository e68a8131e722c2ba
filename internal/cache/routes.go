// Package cache keeps the list of active routes in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/baharkarakas/approval-backend/internal/models"
)

const activeRoutesKey = "approval:routes:active"

// RouteCache misses are never errors; a broken cache degrades to the
// database.
type RouteCache interface {
	Get(ctx context.Context) ([]models.Route, bool)
	Set(ctx context.Context, routes []models.Route)
	Invalidate(ctx context.Context)
}

type RedisRouteCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func NewRedisRouteCache(rdb *redis.Client, ttl time.Duration, log *slog.Logger) *RedisRouteCache {
	if log == nil {
		log = slog.Default()
	}
	return &RedisRouteCache{rdb: rdb, ttl: ttl, log: log}
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func (c *RedisRouteCache) Get(ctx context.Context) ([]models.Route, bool) {
	raw, err := c.rdb.Get(ctx, activeRoutesKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("route cache read failed", "err", err)
		}
		return nil, false
	}
	var routes []models.Route
	if err := json.Unmarshal(raw, &routes); err != nil {
		c.log.Warn("route cache entry unreadable", "err", err)
		return nil, false
	}
	return routes, true
}

func (c *RedisRouteCache) Set(ctx context.Context, routes []models.Route) {
	raw, err := json.Marshal(routes)
	if err != nil {
		c.log.Warn("route cache encode failed", "err", err)
		return
	}
	if err := c.rdb.Set(ctx, activeRoutesKey, raw, c.ttl).Err(); err != nil {
		c.log.Warn("route cache write failed", "err", err)
	}
}

func (c *RedisRouteCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, activeRoutesKey).Err(); err != nil {
		c.log.Warn("route cache invalidate failed", "err", err)
	}
}

// Nop is used when no Redis is configured.
type Nop struct{}

func (Nop) Get(context.Context) ([]models.Route, bool) { return nil, false }
func (Nop) Set(context.Context, []models.Route)        {}
func (Nop) Invalidate(context.Context)                 {}
