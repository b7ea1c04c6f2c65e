package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"stress-quiz/internal/domain"
	"stress-quiz/internal/infra/memory"
)

func TestDatasetRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		DatasetLoader: memory.NewStaticLoader(map[string]domain.Dataset{
			"interviewer-questions": sampleDataset(),
		}),
	}
	repo := NewDatasetRepository(client, loader, time.Minute, nil)

	_, err = repo.GetDataset(context.Background(), "interviewer-questions")
	if err != nil {
		t.Fatalf("get dataset: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("dataset:interviewer-questions") {
		t.Fatalf("expected dataset key to be set")
	}
	if ttl := mr.TTL("dataset:interviewer-questions"); ttl < time.Minute || ttl > 66*time.Second {
		t.Fatalf("expected ttl within jitter bounds, got %v", ttl)
	}

	// Second call should hit cache, loader not incremented.
	ds, err := repo.GetDataset(context.Background(), "interviewer-questions")
	if err != nil {
		t.Fatalf("get dataset 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	items := ds.Courses["Web Development"].Resolve(domain.Hard)
	if len(items) != 1 || items[0].SecondaryText != "It blocks cross-origin reads" {
		t.Fatalf("cached dataset lost fields: %+v", items)
	}
}

func TestDatasetRepositoryReloadsAfterExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{DatasetLoader: memory.NewStaticLoader(map[string]domain.Dataset{"questions": sampleDataset()})}
	repo := NewDatasetRepository(newClient(mr), loader, time.Minute, nil)

	_, _ = repo.GetDataset(context.Background(), "questions")
	mr.FastForward(2 * time.Minute)
	_, _ = repo.GetDataset(context.Background(), "questions")
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls=%d", loader.calls)
	}
}

func TestDatasetRepositoryIgnoresCorruptEntry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	if err := mr.Set("dataset:questions", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	loader := &countingLoader{DatasetLoader: memory.NewStaticLoader(map[string]domain.Dataset{"questions": sampleDataset()})}
	repo := NewDatasetRepository(newClient(mr), loader, time.Minute, nil)

	if _, err := repo.GetDataset(context.Background(), "questions"); err != nil {
		t.Fatalf("get dataset: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader fallback, calls=%d", loader.calls)
	}
}

type countingLoader struct {
	memory.DatasetLoader
	calls int
}

func (l *countingLoader) LoadDataset(ctx context.Context, name string) (domain.Dataset, error) {
	l.calls++
	return l.DatasetLoader.LoadDataset(ctx, name)
}

func sampleDataset() domain.Dataset {
	return domain.Dataset{
		Courses: map[string]domain.CoursePool{
			"Web Development": {ByDifficulty: map[domain.Difficulty][]domain.RoundItem{
				domain.Hard: {{ID: "7", Prompt: "What does CORS protect?", SecondaryText: "It blocks cross-origin reads", Time: 40}},
			}},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
