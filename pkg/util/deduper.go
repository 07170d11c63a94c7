package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deduper prevents a redelivered MQ event from being handled twice within
// the TTL window (e.g. sending the same task email again).
type Deduper struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewDeduper(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Deduper {
	return &Deduper{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// AcquireOnce tries to take the dedup lock for handler + entity id.
// Returns true on first processing, false on a duplicate. If Redis is
// unavailable processing is allowed rather than blocked.
func (d *Deduper) AcquireOnce(ctx context.Context, handler, entityID string) bool {
	key := fmt.Sprintf("dedup:%s:%s", handler, entityID)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		if d.logger != nil {
			d.logger.Warn("Redis dedup check failed, allowing processing",
				zap.String("handler", handler),
				zap.String("entity_id", entityID),
				zap.Error(err),
			)
		}
		return true
	}

	if !ok && d.logger != nil {
		d.logger.Info("Skipped duplicated event",
			zap.String("handler", handler),
			zap.String("entity_id", entityID),
			zap.String("dedup_key", key),
		)
	}

	return ok
}
