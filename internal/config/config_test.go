package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lloyd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig().Workers, cfg.Workers)
	assert.Nil(t, cfg.Seed)
	assert.Equal(t, 5, cfg.PixelsPerLine)
	assert.True(t, cfg.Storage.S3.Checksum)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
	assert.False(t, cfg.Log.JSON())
}

func TestLoad_File(t *testing.T) {
	t.Setenv("MINIO_ACCESS_KEY", "ak")
	t.Setenv("MINIO_SECRET_KEY", "sk")

	path := writeConfig(t, `
seed: 42
tolerance: 0.001
max_iterations: 300
workers: 4
pixels_per_line: 12
log:
  level: debug
  format: json
storage:
  minio:
    endpoint: minio.internal:9000
    secure: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.Seed)
	assert.Equal(t, int64(42), *cfg.Seed)
	assert.Equal(t, 0.001, cfg.Tolerance)
	assert.Equal(t, 300, cfg.MaxIterations)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 12, cfg.PixelsPerLine)
	assert.True(t, cfg.Log.JSON())
	assert.Equal(t, "minio.internal:9000", cfg.Storage.MinIO.Endpoint)
	assert.True(t, cfg.Storage.MinIO.Secure)
	assert.Equal(t, "ak", cfg.Storage.MinIO.AccessKey)
	assert.Equal(t, "sk", cfg.Storage.MinIO.SecretKey)

	// Untouched sections keep their defaults.
	assert.Equal(t, int64(8*1024*1024), cfg.Storage.S3.PartSize)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "workers: [1"))
	assert.ErrorContains(t, err, "parsing config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"NegativeTolerance", func(c *Config) { c.Tolerance = -1 }},
		{"NegativeMaxIterations", func(c *Config) { c.MaxIterations = -1 }},
		{"ZeroWorkers", func(c *Config) { c.Workers = 0 }},
		{"NegativeScratch", func(c *Config) { c.ScratchLimitBytes = -1 }},
		{"ZeroPixelsPerLine", func(c *Config) { c.PixelsPerLine = 0 }},
		{"BadLevel", func(c *Config) { c.Log.Level = "loud" }},
		{"BadFormat", func(c *Config) { c.Log.Format = "xml" }},
		{"NegativeIOLimit", func(c *Config) { c.Storage.IOLimitBytesPerSec = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}

	assert.NoError(t, DefaultConfig().Validate())
}
