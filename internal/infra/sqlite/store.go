package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"stress-quiz/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS datasets (
    name TEXT PRIMARY KEY,
    data TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
`

// Store keeps dataset documents in a local SQLite file, for offline play.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts the dataset under name.
func (s *Store) Save(ctx context.Context, name string, ds domain.Dataset) error {
	data, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("encode dataset %q: %w", name, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO datasets (name, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		name, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save dataset %q: %w", name, err)
	}
	return nil
}

func (s *Store) LoadDataset(ctx context.Context, name string) (domain.Dataset, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT data FROM datasets WHERE name = ?", name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Dataset{}, fmt.Errorf("%w: %s", domain.ErrDatasetNotFound, name)
	}
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("load dataset: %w", err)
	}
	ds, err := domain.DecodeDataset([]byte(raw))
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("unmarshal dataset %q: %w", name, err)
	}
	return ds, nil
}

// Names lists stored datasets.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM datasets ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
