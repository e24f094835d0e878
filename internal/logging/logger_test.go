package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/ongoingwms/internal/config"
)

func TestNewWritesFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(config.LogConfig{Level: "info", Dir: dir})
	require.NoError(t, err)

	logger.Info("hello")
	logger.Debug("hidden")
	_ = logger.Sync()

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.NotContains(t, string(data), "hidden")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "chatty"})
	assert.Error(t, err)
}
