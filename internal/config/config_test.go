package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "training_planner", cfg.Database.Name)
	assert.Equal(t, 500, cfg.Generation.SetBatchSize)
	assert.Equal(t, 30*time.Second, cfg.Generation.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.S3.Enabled())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  address: ":9090"
generation:
  set_batch_size: 200
  timeout: 1m
s3:
  bucket_name: archives
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_NAME", "from_env")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 200, cfg.Generation.SetBatchSize)
	assert.Equal(t, time.Minute, cfg.Generation.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "from_env", cfg.Database.Name)
	assert.True(t, cfg.S3.Enabled())
}

func TestLoadConfig_RejectsBadBatchSize(t *testing.T) {
	t.Setenv("GENERATION_SET_BATCH_SIZE", "5000")

	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Database:   DatabaseConfig{URI: "mongodb://localhost", Name: "db"},
		Generation: GenerationConfig{SetBatchSize: 500, Timeout: time.Second},
	}
	assert.NoError(t, valid.Validate())

	noTimeout := valid
	noTimeout.Generation.Timeout = 0
	assert.Error(t, noTimeout.Validate())

	noDB := valid
	noDB.Database.Name = ""
	assert.Error(t, noDB.Validate())
}
