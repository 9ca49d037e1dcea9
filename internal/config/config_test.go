package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sgns "github.com/n0madic/go-sgns"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
training:
  embedding_dim: 50
  window_size: 5
  epochs: 3
  keep_partial_batch: true
  seed: 42
server:
  host: "127.0.0.1"
  port: 9000
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Training.EmbeddingDim)
	assert.Equal(t, 5, cfg.Training.WindowSizeOrDefault())
	assert.Equal(t, 3, cfg.Training.Epochs)
	assert.True(t, cfg.Training.KeepPartialBatch)
	assert.Equal(t, int64(42), cfg.Training.Seed)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.False(t, cfg.Debug, "debug should default to false when unset")

	// Unset values fall back to the trainer defaults
	assert.Equal(t, sgns.NEGATIVE_RATE, cfg.Training.NegativeRate)
	assert.Equal(t, sgns.BATCH_SIZE, cfg.Training.BatchSize)
	assert.Equal(t, sgns.MIN_COUNT, cfg.Training.MinCountOrDefault())
	assert.Equal(t, sgns.OOV_VALUE, cfg.Similarity.OOVValue)
	assert.Equal(t, "dir", cfg.Storage.Backend)
}

func TestLoad_explicitZeroMinCount(t *testing.T) {
	cfg, err := Load(writeConfig(t, "training:\n  min_count: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Training.MinCountOrDefault())
	assert.Equal(t, 0, cfg.Training.ToSGNS().MinCount)
}

func TestLoad_explicitZeroWindowSize(t *testing.T) {
	cfg, err := Load(writeConfig(t, "training:\n  window_size: 0\n"))
	require.NoError(t, err)
	require.NotNil(t, cfg.Training.WindowSize)
	assert.Equal(t, 0, *cfg.Training.WindowSize)
	assert.Equal(t, 0, cfg.Training.ToSGNS().WindowSize)

	cfg, err = Load(writeConfig(t, "training:\n  epochs: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, sgns.WINDOW_SIZE, cfg.Training.ToSGNS().WindowSize)
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: sqlite
  path: "./data/models.db"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "data", "models.db"), cfg.Storage.Path)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
}

func TestLoad_absolutePathUnchanged(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "models")
	cfg, err := Load(writeConfig(t, "storage:\n  path: "+abs+"\n"))
	require.NoError(t, err)
	assert.Equal(t, abs, cfg.Storage.Path)
}

func TestLoad_errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"Malformed yaml", "training: [unclosed"},
		{"Unknown backend", "storage:\n  backend: s3\n"},
		{"Negative window", "training:\n  window_size: -2\n"},
		{"Negative top k", "similarity:\n  top_k: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestToSGNS(t *testing.T) {
	cfg := Default()
	assert.Equal(t, sgns.DefaultConfig(), cfg.Training.ToSGNS())
	assert.NoError(t, cfg.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := Default()
	cfg.Debug = true
	cfg.Training.Epochs = 12
	cfg.Storage.Path = filepath.Join(t.TempDir(), "models")

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
