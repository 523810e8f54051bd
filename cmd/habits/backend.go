package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/habitgrid/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/habitgrid/internal/adapters/handler/http"
	"github.com/comitanigiacomo/habitgrid/internal/adapters/repository"
	"github.com/comitanigiacomo/habitgrid/internal/config"
	"github.com/comitanigiacomo/habitgrid/internal/core/domain"
	"github.com/comitanigiacomo/habitgrid/internal/core/services"
)

// backend is the storage stack selected by configuration.
type backend struct {
	store   domain.StateStore
	pinger  adapterHTTP.Pinger
	redis   *redis.Client
	closers []func() error
}

func openBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) (*backend, error) {
	b := &backend{}

	if cfg.UsesRedis() {
		rdb, err := cache.NewRedisClient(ctx, cache.Options{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		b.redis = rdb
		b.closers = append(b.closers, rdb.Close)
	}

	switch cfg.Store {
	case config.StoreMemory:
		b.store = repository.NewInMemoryStateStore()

	case config.StoreRedis:
		rs := repository.NewRedisStateStore(b.redis)
		b.store, b.pinger = rs, rs

	case config.StoreSQLite, config.StorePostgres:
		driver, dsn := repository.DriverSQLite, cfg.SQLitePath
		if cfg.Store == config.StorePostgres {
			driver, dsn = cfg.DB.Driver, cfg.DB.DSN()
		}

		db, err := repository.OpenDB(driver, dsn)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, db.Close)

		ss := repository.NewSQLStateStore(db)
		if err := ss.EnsureSchema(ctx); err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to prepare schema: %w", err)
		}
		b.store, b.pinger = ss, ss

	default:
		b.Close()
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownStore, cfg.Store)
	}

	if cfg.Cache && b.redis != nil && cfg.Store != config.StoreRedis && cfg.Store != config.StoreMemory {
		b.store = repository.NewCachedStateStore(b.store, b.redis, cfg.CacheTTL, logger)
	}

	logger.Debug("storage ready", zap.String("store", cfg.Store), zap.Bool("cache", cfg.Cache))
	return b, nil
}

func (b *backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}

// openBoard is the one-shot path used by the CLI commands.
func openBoard(ctx context.Context) (*services.HabitStore, *backend, error) {
	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	registry := services.NewBoardRegistry(b.store, nil, logger)
	store, err := registry.Board(ctx, cfg.Board)
	if err != nil {
		b.Close()
		return nil, nil, err
	}
	return store, b, nil
}
