package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "marrfa:chat:"

// Redis is the shared store for multi-instance deployments. Backend errors
// degrade to cache misses.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedis wraps an already-connected client.
func NewRedis(client *redis.Client, log *zap.Logger) *Redis {
	if log == nil {
		log = zap.NewNop()
	}
	return &Redis{client: client, logger: log}
}

func (r *Redis) Get(ctx context.Context, ns Namespace, key string) ([]byte, bool) {
	value, err := r.client.Get(ctx, redisKeyPrefix+string(ns)+":"+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("cache read failed", zap.String("namespace", string(ns)), zap.Error(err))
		}
		return nil, false
	}
	return value, true
}

func (r *Redis) Set(ctx context.Context, ns Namespace, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := r.client.Set(ctx, redisKeyPrefix+string(ns)+":"+key, value, ttl).Err(); err != nil {
		r.logger.Warn("cache write failed", zap.String("namespace", string(ns)), zap.Error(err))
	}
}
