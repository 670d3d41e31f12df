package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetViper clears the global viper instance the loader binds to, so tests
// do not see each other's state.
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadDefaults(t *testing.T) {
	resetViper(t)
	t.Chdir(t.TempDir()) // no docr.yaml in reach

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, def.LogLevel, cfg.LogLevel)
	assert.Equal(t, def.Pipeline, cfg.Pipeline)
	assert.Equal(t, def.Server, cfg.Server)
}

func TestLoadWithFile(t *testing.T) {
	resetViper(t)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "docr.yaml")
	content := `log_level: debug
pipeline:
  engine: tesseract
  language: deu
  scale: 1.5
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))

	cfg, err := NewLoader().LoadWithFile(configPath)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "deu", cfg.Pipeline.Language)
	assert.InDelta(t, 1.5, cfg.Pipeline.Scale, 1e-9)
	assert.Equal(t, 9090, cfg.Server.Port)

	// Values the file omits keep their defaults.
	assert.Equal(t, "tesseract", cfg.Pipeline.Engine)
	assert.Equal(t, 50, cfg.Server.MaxUploadMB)
}

func TestLoadWithMissingFile(t *testing.T) {
	resetViper(t)

	_, err := NewLoader().LoadWithFile("/nonexistent/docr.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoadWithInvalidValues(t *testing.T) {
	resetViper(t)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "docr.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("pipeline:\n  engine: magic\n"), 0o600))

	_, err := NewLoader().LoadWithFile(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadFromEnvironment(t *testing.T) {
	resetViper(t)
	t.Chdir(t.TempDir())

	t.Setenv("DOCR_PIPELINE_LANGUAGE", "fra")
	t.Setenv("DOCR_SERVER_PORT", "3000")
	t.Setenv("DOCR_LOG_LEVEL", "warn")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "fra", cfg.Pipeline.Language)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestGenerateDefaultConfigFile(t *testing.T) {
	resetViper(t)

	path := filepath.Join(t.TempDir(), "docr.yaml")
	require.NoError(t, GenerateDefaultConfigFile(path))

	cfg, err := NewLoader().LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}
