package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"stress-quiz/internal/app"
	"stress-quiz/internal/config"
	"stress-quiz/internal/domain"
	"stress-quiz/internal/engine"
	"stress-quiz/internal/infra/file"
	"stress-quiz/internal/infra/memory"
	"stress-quiz/internal/infra/postgres"
	infraredis "stress-quiz/internal/infra/redis"
	"stress-quiz/internal/infra/remote"
	"stress-quiz/internal/infra/sqlite"
)

const (
	sourcePostgres = "postgres"
	sourceSQLite   = "sqlite"
	sourceHTTP     = "http"
	sourceFile     = "file"
)

// wiring holds the service and whatever must be closed with it.
type wiring struct {
	service *app.Service
	closers []func()
}

func (w *wiring) Close() {
	for i := len(w.closers) - 1; i >= 0; i-- {
		w.closers[i]()
	}
}

// datasetSource picks the loader named by the config, or the first configured one.
func datasetSource(cfg config.Config) string {
	if cfg.Dataset.Source != "" {
		return cfg.Dataset.Source
	}
	switch {
	case cfg.Postgres.URL != "":
		return sourcePostgres
	case cfg.SQLite.Path != "":
		return sourceSQLite
	case cfg.Dataset.URL != "":
		return sourceHTTP
	default:
		return sourceFile
	}
}

func buildService(ctx context.Context, cfg config.Config, logger *zap.Logger) (*wiring, error) {
	w := &wiring{}

	loader, err := openLoader(ctx, cfg, w)
	if err != nil {
		w.Close()
		return nil, err
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		w.closers = append(w.closers, func() { _ = redisClient.Close() })
	}

	datasetTTL := config.TTLDuration(cfg.Dataset.TTL, 10*time.Minute)
	var datasets app.DatasetRepository
	var sessions app.SessionRepository
	if redisClient != nil {
		datasets = infraredis.NewDatasetRepository(redisClient, loader, datasetTTL, logger)
		sessions = infraredis.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 30*time.Minute))
	} else {
		datasets = memory.NewDatasetRepository(loader, datasetTTL)
		sessions = memory.NewSessionStore()
	}

	opts := []app.ServiceOption{
		app.WithServiceLogger(logger),
		app.WithProfile(cfg.Engine.Settings(domain.ModeAnswer)),
		app.WithProfile(cfg.Engine.Settings(domain.ModeJudge)),
	}
	if seed := cfg.Engine.Seed; seed != 0 {
		opts = append(opts, app.WithRandSource(func() engine.Rand { return engine.NewRand(seed) }))
	}
	w.service = app.NewService(sessions, datasets, opts...)

	logger.Info("dataset source", zap.String("source", datasetSource(cfg)), zap.Bool("redis_cache", redisClient != nil))
	return w, nil
}

func openLoader(ctx context.Context, cfg config.Config, w *wiring) (memory.DatasetLoader, error) {
	switch source := datasetSource(cfg); source {
	case sourcePostgres:
		if cfg.Postgres.URL == "" {
			return nil, fmt.Errorf("dataset source %q: postgres url not configured", source)
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		w.closers = append(w.closers, pool.Close)
		return postgres.NewDatasetLoader(pool), nil
	case sourceSQLite:
		if cfg.SQLite.Path == "" {
			return nil, fmt.Errorf("dataset source %q: sqlite path not configured", source)
		}
		store, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		w.closers = append(w.closers, func() { _ = store.Close() })
		return store, nil
	case sourceHTTP:
		if cfg.Dataset.URL == "" {
			return nil, fmt.Errorf("dataset source %q: dataset url not configured", source)
		}
		return remote.NewLoader(cfg.Dataset.URL, nil), nil
	case sourceFile:
		return file.NewLoader(cfg.Dataset.Dir), nil
	default:
		return nil, fmt.Errorf("unknown dataset source %q", source)
	}
}
