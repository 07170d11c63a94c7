package redis

import (
	"github.com/redis/go-redis/v9"

	"brokerdash/pkg/config"
)

// NewClient builds a Redis client from config. Callers own the handle;
// there is no package-level singleton.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
