package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "dev-secret-key", cfg.APIKey)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, 30*time.Minute, cfg.ResetWindow)
	assert.Equal(t, "@every 1m", cfg.ResetSweep)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "0.0.0.0:8000", cfg.HTTPServer.Addr())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("API_KEY", "prod-key")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("RESET_WINDOW", "5m")
	t.Setenv("PORT", "9090")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "prod-key", cfg.APIKey)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.ResetWindow)
	assert.Equal(t, 9090, cfg.Port)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment: staging
api_key: from-yaml
http_server:
  port: 8081
demo:
  reset_window: 10m
storage:
  backend: sqlite
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsStaging())
	assert.Equal(t, "from-yaml", cfg.APIKey)
	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, 10*time.Minute, cfg.ResetWindow)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "postgres")
	_, err := Load("")
	assert.ErrorContains(t, err, "STORAGE_BACKEND")

	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("RESET_WINDOW", "0s")
	_, err = Load("")
	assert.ErrorContains(t, err, "RESET_WINDOW")
}
