package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	// Create temp config file
	content := `{
		"port": 9090,
		"database_url": "postgres://localhost/journeys",
		"owner_id": "550e8400-e29b-41d4-a716-446655440000",
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "postgres://localhost/journeys", cfg.DatabaseURL)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", cfg.OwnerID)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(`{not valid json`), 0644)
	require.NoError(t, err)

	_, err = LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestValidate_PortRange(t *testing.T) {
	cfg := &Config{Port: 70000}
	assert.Error(t, cfg.Validate())

	cfg = &Config{Port: 8080}
	assert.NoError(t, cfg.Validate())
}

func TestValidate_TemplatesDir(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		cfg := &Config{TemplatesDir: filepath.Join(t.TempDir(), "nope")}
		assert.Error(t, cfg.Validate())
	})

	t.Run("file instead of directory", func(t *testing.T) {
		f := filepath.Join(t.TempDir(), "templates")
		require.NoError(t, os.WriteFile(f, []byte("x"), 0644))
		cfg := &Config{TemplatesDir: f}
		assert.Error(t, cfg.Validate())
	})

	t.Run("valid directory", func(t *testing.T) {
		cfg := &Config{TemplatesDir: t.TempDir()}
		assert.NoError(t, cfg.Validate())
	})
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{DatabaseURL: "postgres://from-file/db"}
	merged := cfg.MergeWithDefaults(Config{
		DatabaseURL:      "postgres://default/db",
		APIKey:           "default-key",
		OwnerTokenSecret: "default-secret",
		Port:             9999,
	})

	assert.Equal(t, "postgres://from-file/db", merged.DatabaseURL)
	assert.Equal(t, "default-key", merged.APIKey)
	assert.Equal(t, "default-secret", merged.OwnerTokenSecret)
	assert.Equal(t, 9999, merged.Port)
}

func TestMergeWithDefaults_PortFallback(t *testing.T) {
	cfg := Config{}
	merged := cfg.MergeWithDefaults(Config{})
	assert.Equal(t, 8080, merged.Port)
}
