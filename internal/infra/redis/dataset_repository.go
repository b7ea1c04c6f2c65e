package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"stress-quiz/internal/domain"
)

// DatasetLoader fetches a dataset from a backing store (files, HTTP, SQL).
type DatasetLoader interface {
	LoadDataset(ctx context.Context, name string) (domain.Dataset, error)
}

// DatasetRepository caches dataset documents in Redis and falls back to a loader on miss.
// Documents are stored as: SET dataset:{name} {json} EX ttl
type DatasetRepository struct {
	client *redis.Client
	loader DatasetLoader
	ttl    time.Duration
	logger *zap.Logger
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewDatasetRepository(client *redis.Client, loader DatasetLoader, ttl time.Duration, logger *zap.Logger) *DatasetRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DatasetRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		logger: logger,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *DatasetRepository) GetDataset(ctx context.Context, name string) (domain.Dataset, error) {
	if ds, ok := r.cached(ctx, name); ok {
		return ds, nil
	}

	result, err, _ := r.sf.Do(name, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if ds, ok := r.cached(ctx, name); ok {
			return ds, nil
		}

		ds, err := r.loader.LoadDataset(ctx, name)
		if err != nil {
			return domain.Dataset{}, err
		}

		raw, err := json.Marshal(ds)
		if err != nil {
			return domain.Dataset{}, fmt.Errorf("encode dataset %q: %w", name, err)
		}
		if err := r.client.Set(ctx, r.key(name), raw, r.ttlWithJitter()).Err(); err != nil {
			// a cache write failure still serves the freshly loaded dataset
			r.logger.Warn("dataset cache write failed", zap.String("dataset", name), zap.Error(err))
		}
		return ds, nil
	})
	if err != nil {
		return domain.Dataset{}, err
	}
	return result.(domain.Dataset), nil
}

// Invalidate drops the cached document.
func (r *DatasetRepository) Invalidate(ctx context.Context, name string) error {
	return r.client.Del(ctx, r.key(name)).Err()
}

func (r *DatasetRepository) cached(ctx context.Context, name string) (domain.Dataset, bool) {
	raw, err := r.client.Get(ctx, r.key(name)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("dataset cache read failed", zap.String("dataset", name), zap.Error(err))
		}
		return domain.Dataset{}, false
	}
	ds, err := domain.DecodeDataset(raw)
	if err != nil {
		r.logger.Warn("dataset cache entry unreadable", zap.String("dataset", name), zap.Error(err))
		return domain.Dataset{}, false
	}
	return ds, true
}

func (r *DatasetRepository) key(name string) string {
	return "dataset:" + name
}

func (r *DatasetRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
