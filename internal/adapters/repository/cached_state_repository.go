package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/habitgrid/internal/core/domain"
)

var _ domain.StateStore = (*CachedStateStore)(nil)

const DefaultCacheTTL = 30 * time.Minute

// CachedStateStore is a read-through redis cache in front of another store.
// Cache failures are logged and fall through to the underlying store.
type CachedStateStore struct {
	next   domain.StateStore
	cache  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedStateStore(next domain.StateStore, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedStateStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedStateStore{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

var errStaleFill = errors.New("cache entry changed during read")

func (r *CachedStateStore) cacheKey(key string) string {
	return "cache:" + key
}

// versionKey counts writes to key. A read only fills the cache when no write
// landed between its version check and the fill.
func (r *CachedStateStore) versionKey(key string) string {
	return "cache:ver:" + key
}

func (r *CachedStateStore) version(ctx context.Context, key string) (string, error) {
	v, err := r.cache.Get(ctx, r.versionKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

func (r *CachedStateStore) invalidate(ctx context.Context, key string) {
	_, err := r.cache.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, r.versionKey(key))
		pipe.Del(ctx, r.cacheKey(key))
		return nil
	})
	if err != nil {
		r.logger.Warn("failed to invalidate cache", zap.String("key", key), zap.Error(err))
	}
}

func (r *CachedStateStore) fill(ctx context.Context, key, seen string, data []byte) {
	vk := r.versionKey(key)
	err := r.cache.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, vk).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != seen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.cacheKey(key), data, r.ttl)
			return nil
		})
		return err
	}, vk)

	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		r.logger.Debug("skipped cache fill after concurrent write", zap.String("key", key))
	default:
		r.logger.Warn("redis set error", zap.Error(err))
	}
}

func (r *CachedStateStore) Get(ctx context.Context, key string) ([]byte, error) {
	ck := r.cacheKey(key)

	val, err := r.cache.Get(ctx, ck).Bytes()
	if err == nil {
		if json.Valid(val) {
			return val, nil
		}

		r.logger.Warn("corrupted cache entry, cleaning up key", zap.String("key", key))
		r.cache.Del(ctx, ck)
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn("redis read error", zap.Error(err))
	}

	seen, verErr := r.version(ctx, key)

	data, err := r.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if verErr == nil {
		r.fill(ctx, key, seen, data)
	}

	return data, nil
}

func (r *CachedStateStore) Set(ctx context.Context, key string, data []byte) error {
	if err := r.next.Set(ctx, key, data); err != nil {
		return err
	}
	r.invalidate(ctx, key)
	return nil
}
