// internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/chetanfram3/fram3-studio-backend/internal/config"
)

// Cache is a thin optional Redis wrapper. A nil *Cache (or one built from an
// empty config) degrades to a no-op so callers never branch on availability.
type Cache struct {
	client *redis.Client
}

func New(cfg config.RedisConfig) *Cache {
	if !cfg.Enabled() {
		return &Cache{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).Warn("Redis unreachable, running without cache")
		return &Cache{}
	}

	return &Cache{client: client}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// GetJSON loads a key into dest. Returns false on miss, disabled cache, or
// decode failure; cache reads are never an error path.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if !c.Enabled() {
		return false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Dropping undecodable cache entry")
		c.client.Del(ctx, key)
		return false
	}
	return true
}

// SetJSON stores a value best-effort.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if !c.Enabled() {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}

func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logrus.WithError(err).Warn("Cache invalidation failed")
	}
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// BalanceKey namespaces a user's cached credit balance.
func BalanceKey(userID string) string {
	return fmt.Sprintf("credits:balance:%s", userID)
}

// PricingConfigKey caches the active pricing table.
const PricingConfigKey = "billing:pricing_config"
