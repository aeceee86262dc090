package templates

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tablenotify/internal/common/logger"
	"tablenotify/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

// CachedOverrides is a Redis read-through decorator around an
// OverrideRepository. Cache failures are never surfaced: a miss or a broken
// cache falls through to the underlying repository, and writes invalidate
// best-effort.
type CachedOverrides struct {
	inner  OverrideRepository
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedOverrides(inner OverrideRepository, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedOverrides {
	return &CachedOverrides{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "template-cache"}),
	}
}

func cacheKey(tenantKey, templateID string) string {
	return fmt.Sprintf("tpl:%s:%s", tenantKey, templateID)
}

func (c *CachedOverrides) GetOverride(ctx context.Context, tenantKey, templateID string) (*Override, error) {
	key := cacheKey(tenantKey, templateID)

	if raw, err := c.client.Get(ctx, key).Result(); err == nil {
		var o Override
		if err := json.Unmarshal([]byte(raw), &o); err == nil {
			metrics.TemplateCacheHits.WithLabelValues("hit").Inc()
			return &o, nil
		}
	} else if err != redis.Nil {
		c.logger.Warn("cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	metrics.TemplateCacheHits.WithLabelValues("miss").Inc()

	o, err := c.inner.GetOverride(ctx, tenantKey, templateID)
	if err != nil {
		return nil, err
	}

	if o != nil {
		if raw, err := json.Marshal(o); err == nil {
			if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
				c.logger.Warn("cache write failed", map[string]interface{}{
					"key":   key,
					"error": err.Error(),
				})
			}
		}
	}
	return o, nil
}

func (c *CachedOverrides) UpsertOverride(ctx context.Context, tenantKey, templateID, subject, body string) error {
	if err := c.inner.UpsertOverride(ctx, tenantKey, templateID, subject, body); err != nil {
		return err
	}
	if err := c.client.Del(ctx, cacheKey(tenantKey, templateID)).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", map[string]interface{}{
			"tenant":     tenantKey,
			"templateId": templateID,
			"error":      err.Error(),
		})
	}
	return nil
}
