package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stress-quiz/internal/config"
	"stress-quiz/internal/infra/postgres"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath)
		},
	}
}

func runMigrations(ctx context.Context, configPath string) error {
	cfg, logger, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	return runMigrationsWithConfig(ctx, cfg, logger)
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	db := postgres.OpenDB(cfg.Postgres.URL)
	defer db.Close()

	applied, err := postgres.Migrate(ctx, db)
	if err != nil {
		return err
	}
	logger.Info("migrations applied", zap.Strings("applied", applied))
	return nil
}
