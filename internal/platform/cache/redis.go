package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/badgeworks/variantbadges/pkg/config"
)

// Cache is a thin optional redis front for low-criticality reads. With no
// redis address configured every call is a miss/no-op, and redis failures
// are logged and treated the same way.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.SugaredLogger
}

func New(cfg *cfgpkg.Config, log *zap.SugaredLogger) *Cache {
	c := &Cache{ttl: time.Duration(cfg.Redis.TTLSeconds) * time.Second, log: log}
	if cfg.Redis.Addr == "" {
		log.Infow("redis disabled, cache is a no-op")
		return c
	}
	c.rdb = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	log.Infow("redis cache enabled", "addr", cfg.Redis.Addr, "ttl", c.ttl)
	return c
}

func (c *Cache) Enabled() bool { return c != nil && c.rdb != nil }

// Get returns the cached payload and whether it was present.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if !c.Enabled() {
		return nil, false
	}
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warnw("redis get failed", "key", key, "err", err)
		}
		return nil, false
	}
	return b, true
}

func (c *Cache) Set(ctx context.Context, key string, val []byte) {
	if !c.Enabled() {
		return
	}
	if err := c.rdb.Set(ctx, key, val, c.ttl).Err(); err != nil {
		c.log.Warnw("redis set failed", "key", key, "err", err)
	}
}

// Invalidate drops the given keys, typically after a badge or settings write.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warnw("redis del failed", "err", err)
	}
}

func registerClose(lc fx.Lifecycle, c *Cache) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if !c.Enabled() {
				return nil
			}
			return c.rdb.Close()
		},
	})
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(registerClose),
)
