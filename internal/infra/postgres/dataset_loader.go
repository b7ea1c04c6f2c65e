package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"stress-quiz/internal/domain"
)

// DatasetLoader loads dataset JSONB documents from Postgres.
type DatasetLoader struct {
	pool *pgxpool.Pool
}

func NewDatasetLoader(pool *pgxpool.Pool) *DatasetLoader {
	return &DatasetLoader{pool: pool}
}

func (l *DatasetLoader) LoadDataset(ctx context.Context, name string) (domain.Dataset, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM datasets WHERE name=$1`, name).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Dataset{}, fmt.Errorf("%w: %s", domain.ErrDatasetNotFound, name)
	}
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("load dataset: %w", err)
	}
	ds, err := domain.DecodeDataset(raw)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("unmarshal dataset %q: %w", name, err)
	}
	return ds, nil
}
