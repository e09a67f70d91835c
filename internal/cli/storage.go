package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"local-quiz/internal/app"
	"local-quiz/internal/config"
	"local-quiz/internal/infra/memory"
	pgstore "local-quiz/internal/infra/postgres"
	redisstore "local-quiz/internal/infra/redis"
	"local-quiz/internal/infra/sqlite"
)

// openRepository loads config, opens the configured store and seeds the
// default questions when enabled. The returned func releases the store.
func openRepository(ctx context.Context, configPath string) (*app.Repository, config.Config, func(), error) {
	cfg, err := config.LoadOptional(configPath)
	if err != nil {
		return nil, cfg, nil, err
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, cfg, nil, err
	}

	repo := app.NewRepository(store, log.Default())
	if cfg.Quiz.SeedDefaults {
		repo.SeedDefaults(ctx)
	}
	return repo, cfg, closeStore, nil
}

func openStore(ctx context.Context, cfg config.Config) (app.Store, func(), error) {
	cacheTTL := config.TTLDuration(cfg.Storage.CacheTTL, 0)

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return memory.NewStore(), func() {}, nil

	case "", config.BackendSQLite:
		store, err := sqlite.NewStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		return store, func() { _ = store.Close() }, nil

	case config.BackendRedis:
		if cfg.Redis.Addr == "" {
			return nil, nil, fmt.Errorf("redis addr not configured")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return withCache(redisstore.NewStore(client, cfg.Redis.Prefix), cacheTTL), func() { _ = client.Close() }, nil

	case config.BackendPostgres:
		if cfg.Postgres.URL == "" {
			return nil, nil, fmt.Errorf("postgres url not configured")
		}
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return withCache(pgstore.NewStore(pool), cacheTTL), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func withCache(store app.Store, ttl time.Duration) app.Store {
	if ttl <= 0 {
		return store
	}
	return memory.NewCachedStore(store, ttl)
}
