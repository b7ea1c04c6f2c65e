package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger writing to stderr. format "console" gives the
// development encoder, anything else JSON.
func New(level, format string) (*zap.Logger, error) {
	return build(level, format, "stderr")
}

// NewFile is New writing to path, for when the terminal is taken.
func NewFile(level, format, path string) (*zap.Logger, error) {
	return build(level, format, path)
}

func build(level, format, output string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, err)
		}
	}

	var cfg zap.Config
	if strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{output}
	cfg.ErrorOutputPaths = []string{output}
	return cfg.Build()
}
