package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stress-quiz/internal/config"
	"stress-quiz/internal/domain"
	"stress-quiz/internal/logging"
	"stress-quiz/internal/tui"
)

// NewPlayCmd runs a session in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var mode, course, logFile string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a session in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), *configPath, mode, course, logFile)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "answer or judge (defaults to engine.mode in config)")
	cmd.Flags().StringVar(&course, "course", "", "course to draw rounds from (defaults to the mode's default course)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs here; the terminal belongs to the game")
	return cmd
}

func runPlay(ctx context.Context, configPath, modeFlag, course, logFile string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	logger := zap.NewNop()
	if logFile != "" {
		if logger, err = logging.NewFile(cfg.Log.Level, cfg.Log.Format, logFile); err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
	}

	if modeFlag == "" {
		modeFlag = cfg.Engine.Mode
	}
	mode, err := domain.ParseMode(modeFlag)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	wired, err := buildService(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer wired.Close()

	return tui.Run(ctx, wired.service, mode, course)
}
