package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	logger, err := New("debug", "console")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = New("", "json")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("chatty", "json")
	assert.Error(t, err)
}

func TestNewFileWritesToPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "play.log")
	logger, err := NewFile("info", "json", path)
	require.NoError(t, err)

	logger.Info("round started", zap.Int("round", 1))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"round started"`)
	assert.Contains(t, string(data), `"round":1`)
}
