package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"stress-quiz/internal/domain"
)

// DatasetLoader fetches a dataset from a backing store (files, HTTP, SQL).
type DatasetLoader interface {
	LoadDataset(ctx context.Context, name string) (domain.Dataset, error)
}

// DatasetRepository caches datasets with TTL to avoid repeated loads.
type DatasetRepository struct {
	loader DatasetLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedDataset
}

type cachedDataset struct {
	dataset   domain.Dataset
	expiresAt time.Time
}

func NewDatasetRepository(loader DatasetLoader, ttl time.Duration) *DatasetRepository {
	return &DatasetRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedDataset),
	}
}

func (r *DatasetRepository) GetDataset(ctx context.Context, name string) (domain.Dataset, error) {
	if ds, ok := r.cached(name); ok {
		return ds, nil
	}

	result, err, _ := r.sf.Do(name, func() (interface{}, error) {
		if ds, ok := r.cached(name); ok {
			return ds, nil
		}
		ds, err := r.loader.LoadDataset(ctx, name)
		if err != nil {
			return domain.Dataset{}, err
		}

		r.mu.Lock()
		r.cache[name] = cachedDataset{
			dataset:   ds,
			expiresAt: r.clock().Add(r.ttlWithJitterLocked()),
		}
		r.mu.Unlock()
		return ds, nil
	})
	if err != nil {
		return domain.Dataset{}, err
	}
	return result.(domain.Dataset), nil
}

// Invalidate drops a cached dataset so the next read reloads it.
func (r *DatasetRepository) Invalidate(name string) {
	r.mu.Lock()
	delete(r.cache, name)
	r.mu.Unlock()
}

func (r *DatasetRepository) cached(name string) (domain.Dataset, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.cache[name]; ok && entry.expiresAt.After(now) {
		return entry.dataset, true
	}
	return domain.Dataset{}, false
}

func (r *DatasetRepository) ttlWithJitterLocked() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticLoader serves datasets from a map (useful for tests/demos).
type StaticLoader struct {
	datasets map[string]domain.Dataset
}

func NewStaticLoader(datasets map[string]domain.Dataset) *StaticLoader {
	return &StaticLoader{datasets: datasets}
}

func (l *StaticLoader) LoadDataset(_ context.Context, name string) (domain.Dataset, error) {
	if ds, ok := l.datasets[name]; ok {
		return ds, nil
	}
	return domain.Dataset{}, domain.ErrDatasetNotFound
}
