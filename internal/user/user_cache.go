package user

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	OptionsCacheKey = "users:options"
	optionsCacheTTL = time.Hour
)

// OptionsCache keeps the picker list in redis. Concurrent misses share one
// database load. A nil redis client turns it into a pass-through.
type OptionsCache struct {
	rdb    *redis.Client
	sf     singleflight.Group
	logger *zap.Logger
}

func NewOptionsCache(rdb *redis.Client, logger ...*zap.Logger) *OptionsCache {
	l := zap.L().Named("user.cache")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.cache")
	}
	return &OptionsCache{rdb: rdb, logger: l}
}

func (c *OptionsCache) Get(ctx context.Context, load func(ctx context.Context) ([]OptionResponse, error)) ([]OptionResponse, error) {
	if c == nil {
		return load(ctx)
	}

	if c.rdb != nil {
		if cached, err := c.rdb.Get(ctx, OptionsCacheKey).Result(); err == nil {
			var resp []OptionResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := c.sf.Do(OptionsCacheKey, func() (interface{}, error) {
		resp, err := load(ctx)
		if err != nil {
			return nil, err
		}

		if c.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				c.rdb.Set(ctx, OptionsCacheKey, jsonData, optionsCacheTTL)
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]OptionResponse), nil
}

// Invalidate drops the cached list. Failures are logged only; the entry
// expires on its own.
func (c *OptionsCache) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, OptionsCacheKey).Err(); err != nil {
		c.logger.Warn("invalidate user options failed", zap.Error(err))
	}
}
