package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stress-quiz/internal/config"
	"stress-quiz/internal/domain"
	"stress-quiz/internal/infra/file"
	"stress-quiz/internal/infra/postgres"
	"stress-quiz/internal/infra/sqlite"
)

// NewImportCmd loads a JSON or YAML dataset file into the configured database.
func NewImportCmd(configPath *string) *cobra.Command {
	var name, target string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a dataset file into Postgres or SQLite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), *configPath, args[0], name, target)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "dataset name (defaults to the file name without extension)")
	cmd.Flags().StringVar(&target, "to", "", "postgres or sqlite (defaults to whichever is configured)")
	return cmd
}

func runImport(ctx context.Context, configPath, path, name, target string) error {
	cfg, logger, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ds, err := file.Read(path)
	if err != nil {
		return err
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if err := saveDataset(ctx, cfg, logger, target, name, ds); err != nil {
		return err
	}
	logger.Info("dataset imported",
		zap.String("name", name),
		zap.Int("courses", len(ds.Courses)),
		zap.Int("curveballs", len(ds.Curveball)),
	)
	return nil
}

func saveDataset(ctx context.Context, cfg config.Config, logger *zap.Logger, target, name string, ds domain.Dataset) error {
	if target == "" {
		switch {
		case cfg.Postgres.URL != "":
			target = sourcePostgres
		case cfg.SQLite.Path != "":
			target = sourceSQLite
		default:
			return fmt.Errorf("no postgres url or sqlite path configured")
		}
	}

	switch target {
	case sourcePostgres:
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
		db := postgres.OpenDB(cfg.Postgres.URL)
		defer db.Close()
		return postgres.NewDatasetStore(db).Save(ctx, name, ds)
	case sourceSQLite:
		if cfg.SQLite.Path == "" {
			return fmt.Errorf("sqlite path not configured")
		}
		store, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		return store.Save(ctx, name, ds)
	default:
		return fmt.Errorf("unknown import target %q", target)
	}
}
