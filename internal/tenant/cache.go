package tenant

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tablenotify/internal/common/logger"
	"tablenotify/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

// CachedSettings is a Redis read-through decorator around a SettingsReader.
// A send touches settings twice (restaurant-name placeholder and sender
// display name), so a short TTL saves a database round trip per send. Cache
// failures are never surfaced: a miss or a broken cache falls through to the
// underlying reader.
type CachedSettings struct {
	inner  SettingsReader
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedSettings(inner SettingsReader, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedSettings {
	return &CachedSettings{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "settings-cache"}),
	}
}

func settingsCacheKey(ownerKey string) string {
	return fmt.Sprintf("tenant:%s", ownerKey)
}

func (c *CachedSettings) GetSettingsByID(ctx context.Context, ownerKey string) (*Settings, error) {
	key := settingsCacheKey(ownerKey)

	if raw, err := c.client.Get(ctx, key).Result(); err == nil {
		var s Settings
		if err := json.Unmarshal([]byte(raw), &s); err == nil {
			metrics.SettingsCacheHits.WithLabelValues("hit").Inc()
			return &s, nil
		}
	} else if err != redis.Nil {
		c.logger.Warn("cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	metrics.SettingsCacheHits.WithLabelValues("miss").Inc()

	s, err := c.inner.GetSettingsByID(ctx, ownerKey)
	if err != nil {
		return nil, err
	}

	if s != nil {
		if raw, err := json.Marshal(s); err == nil {
			if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
				c.logger.Warn("cache write failed", map[string]interface{}{
					"key":   key,
					"error": err.Error(),
				})
			}
		}
	}
	return s, nil
}
