package cli

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stress-quiz/internal/config"
	"stress-quiz/internal/logging"
)

var (
	port       string
	configPath string
	logLevel   string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envPort := os.Getenv("PORT")
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:          "stress-quiz",
		Short:        "Timed flashcard drills and interview practice under pressure",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&port, "port", envPort, "port to listen on (overrides config)")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")
	cmd.AddCommand(NewStartCmd(&configPath, &port))
	cmd.AddCommand(NewPlayCmd(&configPath))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	cmd.AddCommand(NewImportCmd(&configPath))
	return cmd
}

// loadConfig reads the config file and builds the logger it describes.
func loadConfig(path string) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}
