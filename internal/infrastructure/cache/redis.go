package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"unimarket/internal/config"
	"unimarket/internal/metrics"
	"unimarket/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Redis is a JSON cache that degrades to a pass-through when Redis is unreachable.
type Redis struct {
	client     *redis.Client
	logger     logger.Logger
	defaultTTL time.Duration

	warnedUnavailable atomic.Bool
}

func NewRedis(cfg config.RedisConfig, defaultTTL time.Duration, log logger.Logger) *Redis {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With(logger.String("component", "cache"))

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, bypassing cache", logger.String("addr", cfg.Addr()), logger.Error(err))
		_ = client.Close()
		return &Redis{logger: log, defaultTTL: defaultTTL}
	}

	return &Redis{client: client, logger: log, defaultTTL: defaultTTL}
}

// NewFromClient wraps an existing client without pinging it.
func NewFromClient(client *redis.Client, defaultTTL time.Duration, log logger.Logger) *Redis {
	if log == nil {
		log = logger.Nop()
	}
	return &Redis{client: client, logger: log, defaultTTL: defaultTTL}
}

func (r *Redis) isUnavailable() bool {
	return r == nil || r.client == nil
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r == nil || r.logger == nil {
		return
	}
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.Warn("redis error, cache degraded", logger.Error(err))
	}
}

func (r *Redis) Available() bool {
	return !r.isUnavailable()
}

func (r *Redis) Ping(ctx context.Context) error {
	if r.isUnavailable() {
		return errors.New("redis unavailable")
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	if r.isUnavailable() {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if r.isUnavailable() {
		return false, nil
	}
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheMiss(key)
			return false, nil
		}
		r.warnUnavailableOnce(err)
		return false, err
	}
	if len(b) == 0 {
		metrics.CacheMiss(key)
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	metrics.CacheHit(key)
	return true, nil
}

func (r *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if r.isUnavailable() {
		return nil
	}
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	if ttl <= 0 {
		ttl = config.DefaultCacheTTL
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, b, ttl).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if r.isUnavailable() || len(keys) == 0 {
		return nil
	}
	err := r.client.Del(ctx, keys...).Err()
	for _, k := range keys {
		metrics.CacheInvalidated(k, err == nil)
	}
	if err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

// DeleteByPattern removes every key matching a glob using SCAN, never KEYS.
func (r *Redis) DeleteByPattern(ctx context.Context, pattern string) error {
	if r.isUnavailable() {
		return nil
	}
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil
	}
	err := deleteByPattern(ctx, r.client, r.logger, pattern)
	metrics.CacheInvalidated(pattern, err == nil)
	return err
}

func (r *Redis) SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	if r.isUnavailable() {
		return false, nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	ok, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		r.warnUnavailableOnce(err)
		return false, err
	}
	return ok, nil
}

const scanBatch = 100

// deleteByPattern walks the keyspace with SCAN and deletes matches in batches
// of scanBatch. A failed batch is logged and the walk continues.
func deleteByPattern(ctx context.Context, rdb *redis.Client, log logger.Logger, pattern string) error {
	batch := make([]string, 0, scanBatch)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := rdb.Del(ctx, batch...).Err(); err != nil {
			log.Warn("redis delete failed", logger.String("pattern", pattern), logger.Int("keys", len(batch)), logger.Error(err))
		}
		batch = batch[:0]
	}

	iter := rdb.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			flush()
		}
	}
	flush()
	return iter.Err()
}
