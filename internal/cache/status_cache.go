// Package cache memoizes derived accounting status. Entries are keyed
// by an explicit order-set version, never by wall-clock time alone; the
// TTL is only a backstop against unbounded growth.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/redis/go-redis/v9"
	accountingdomain "github.com/smallbiznis/platefee/internal/accounting/domain"
	"github.com/smallbiznis/platefee/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type StatusCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewStatusCache builds the cache. Without a configured redis address
// the cache degrades to a no-op and every status read recomputes.
func NewStatusCache(cfg config.Config, log *zap.Logger) *StatusCache {
	var client *redis.Client
	if cfg.RedisAddr != "" {
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
	}

	ttl := time.Duration(cfg.StatusCacheTTLS) * time.Second
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &StatusCache{
		client: client,
		ttl:    ttl,
		log:    log.Named("cache.status"),
	}
}

func (c *StatusCache) Enabled() bool { return c.client != nil }

func (c *StatusCache) Get(ctx context.Context, restaurantID snowflake.ID, version uint64) (*accountingdomain.AccountingStatus, bool) {
	if c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, c.key(restaurantID, version)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("status cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var status accountingdomain.AccountingStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		c.log.Warn("status cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return &status, true
}

func (c *StatusCache) Set(ctx context.Context, restaurantID snowflake.ID, version uint64, status accountingdomain.AccountingStatus) {
	if c.client == nil {
		return
	}

	raw, err := json.Marshal(status)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(restaurantID, version), raw, c.ttl).Err(); err != nil {
		c.log.Warn("status cache write failed", zap.Error(err))
	}
}

func (c *StatusCache) key(restaurantID snowflake.ID, version uint64) string {
	return fmt.Sprintf("platefee:accounting:%s:%016x", restaurantID.String(), version)
}

// Module wires the accounting status cache.
var Module = fx.Module("cache",
	fx.Provide(NewStatusCache),
)
