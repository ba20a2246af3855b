// Package app assembles the widget host from configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cartsync/internal/config"
	"github.com/noah-isme/cartsync/internal/lock"
	"github.com/noah-isme/cartsync/internal/obs"
	"github.com/noah-isme/cartsync/internal/store"
)

// Dependencies holds the connections and backends shared by the host.
type Dependencies struct {
	Store  store.Backend
	Redis  *redis.Client
	DB     *pgxpool.Pool
	Locker lock.Locker

	closers []func() error
}

// Open connects the store selected by cfg.StoreDriver. Redis is also used
// for locking and rate limiting whenever a REDIS_URL is configured.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{}

	if cfg.RedisURL != "" {
		client, err := openRedis(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		deps.Redis = client
		deps.closers = append(deps.closers, client.Close)
	}

	switch cfg.StoreDriver {
	case config.StoreRedis:
		deps.Store = store.NewRedis(deps.Redis, cfg.CartTTL)
	case config.StorePostgres:
		pool, err := openPostgres(ctx, cfg)
		if err != nil {
			deps.Close()
			return nil, err
		}
		deps.DB = pool
		deps.closers = append(deps.closers, func() error { pool.Close(); return nil })
		deps.Store = store.NewPostgres(pool)
	default:
		deps.Store = store.NewMemory()
	}

	if deps.Redis != nil {
		deps.Locker = lock.Redis{R: deps.Redis, Prefix: "cartsync:lock:"}
	} else {
		deps.Locker = &lock.Local{}
	}
	return deps, nil
}

// Close releases every connection opened by Open, newest first.
func (d *Dependencies) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}

func openRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if cfg.TracingEnabled {
		if err := redisotel.InstrumentTracing(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis tracing")
		}
	}
	if cfg.MetricsEnabled {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func openPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := store.Migrate(cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("migrate cart store: %w", err)
	}
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "cartsync"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
