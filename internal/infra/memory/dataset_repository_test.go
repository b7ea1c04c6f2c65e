package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"stress-quiz/internal/domain"
)

func TestDatasetRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		DatasetLoader: NewStaticLoader(map[string]domain.Dataset{
			"questions": sampleDataset(),
		}),
	}
	repo := NewDatasetRepository(loader, time.Minute)

	if _, err := repo.GetDataset(context.Background(), "questions"); err != nil {
		t.Fatalf("get dataset: %v", err)
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls.Load())
	}

	ds, err := repo.GetDataset(context.Background(), "questions")
	if err != nil {
		t.Fatalf("get dataset 2: %v", err)
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls.Load())
	}
	if !ds.HasCourse("HTML") {
		t.Fatalf("expected HTML course in cached dataset")
	}
}

func TestDatasetRepositoryExpires(t *testing.T) {
	loader := &countingLoader{DatasetLoader: NewStaticLoader(map[string]domain.Dataset{"questions": sampleDataset()})}
	repo := NewDatasetRepository(loader, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetDataset(context.Background(), "questions")
	now = now.Add(2 * time.Minute) // beyond ttl + 10% jitter
	_, _ = repo.GetDataset(context.Background(), "questions")

	if loader.calls.Load() != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.calls.Load())
	}

	repo.Invalidate("questions")
	_, _ = repo.GetDataset(context.Background(), "questions")
	if loader.calls.Load() != 3 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.calls.Load())
	}
}

func TestDatasetRepositoryCollapsesConcurrentLoads(t *testing.T) {
	release := make(chan struct{})
	loader := &countingLoader{
		DatasetLoader: NewStaticLoader(map[string]domain.Dataset{"questions": sampleDataset()}),
		gate:          release,
	}
	repo := NewDatasetRepository(loader, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.GetDataset(context.Background(), "questions"); err != nil {
				t.Errorf("get dataset: %v", err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if loader.calls.Load() != 1 {
		t.Fatalf("expected one load for concurrent callers, got %d", loader.calls.Load())
	}
}

func TestDatasetRepositoryDoesNotCacheErrors(t *testing.T) {
	loader := &countingLoader{DatasetLoader: NewStaticLoader(nil)}
	repo := NewDatasetRepository(loader, time.Minute)

	for i := 0; i < 2; i++ {
		_, err := repo.GetDataset(context.Background(), "missing")
		if !errors.Is(err, domain.ErrDatasetNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	}
	if loader.calls.Load() != 2 {
		t.Fatalf("expected failures to retry, loader calls %d", loader.calls.Load())
	}
}

type countingLoader struct {
	DatasetLoader
	calls atomic.Int32
	gate  chan struct{}
}

func (l *countingLoader) LoadDataset(ctx context.Context, name string) (domain.Dataset, error) {
	l.calls.Add(1)
	if l.gate != nil {
		<-l.gate
	}
	return l.DatasetLoader.LoadDataset(ctx, name)
}

func sampleDataset() domain.Dataset {
	return domain.Dataset{
		Courses: map[string]domain.CoursePool{
			"HTML": {ByDifficulty: map[domain.Difficulty][]domain.RoundItem{
				domain.Easy: {{ID: "q1", Prompt: "What does <p> mark up?"}},
			}},
		},
		Curveball: []domain.RoundItem{{ID: "cb1", Prompt: "Name a CSS reset."}},
	}
}
