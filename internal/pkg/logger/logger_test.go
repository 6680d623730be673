package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodmap-client/internal/pkg/logger"
)

func TestNew_FallsBackToInfo(t *testing.T) {
	l, err := logger.New("not-a-level")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(0))   // info
	assert.False(t, l.Core().Enabled(-1)) // debug
}

func TestNew_Debug(t *testing.T) {
	l, err := logger.New("debug")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(-1))
}

func TestNewWithRotate_WritesFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "foodmap.log")

	l, err := logger.NewWithRotate("info", logger.FileRotate{Filename: file, MaxSizeMB: 1})
	require.NoError(t, err)

	l.Info("shops loaded")
	_ = l.Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "shops loaded")
}
