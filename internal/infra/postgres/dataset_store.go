package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"stress-quiz/internal/domain"
	pgmigrations "stress-quiz/internal/infra/postgres/migrations"
)

// OpenDB opens a bun handle over pgdriver.
func OpenDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, db *bun.DB) ([]string, error) {
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, err
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, err
	}
	var applied []string
	if group != nil {
		for _, m := range group.Migrations {
			applied = append(applied, m.Name)
		}
	}
	return applied, nil
}

type datasetRow struct {
	bun.BaseModel `bun:"table:datasets"`

	Name      string          `bun:"name,pk"`
	Data      json.RawMessage `bun:"data,type:jsonb,notnull"`
	UpdatedAt time.Time       `bun:"updated_at,notnull"`
}

// DatasetStore writes dataset documents; reads go through DatasetLoader.
type DatasetStore struct {
	db  *bun.DB
	now func() time.Time
}

func NewDatasetStore(db *bun.DB) *DatasetStore {
	return &DatasetStore{db: db, now: time.Now}
}

// Save upserts the dataset under name.
func (s *DatasetStore) Save(ctx context.Context, name string, ds domain.Dataset) error {
	data, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("encode dataset %q: %w", name, err)
	}
	row := &datasetRow{Name: name, Data: data, UpdatedAt: s.now().UTC()}
	_, err = s.db.NewInsert().
		Model(row).
		On("CONFLICT (name) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save dataset %q: %w", name, err)
	}
	return nil
}

// Names lists stored datasets.
func (s *DatasetStore) Names(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.NewSelect().
		Model((*datasetRow)(nil)).
		Column("name").
		Order("name ASC").
		Scan(ctx, &names)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	return names, nil
}
