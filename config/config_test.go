package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("CATALOG_SESSION_SECRET", "s3cret")
	t.Setenv("CATALOG_SERVER_PORT", "9000")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Session.Secret)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "memory", cfg.State.Store)
	assert.Equal(t, 24, cfg.Session.TTLHours)
	assert.False(t, cfg.Auth.LocalLogin)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
session:
  secret: from-file
  ttl_hours: 2
database:
  driver: postgres
  name: catalog_test
auth:
  local_login: true
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Session.Secret)
	assert.Equal(t, 2, cfg.Session.TTLHours)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "catalog_test", cfg.Database.Name)
	assert.True(t, cfg.Auth.LocalLogin)
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("CATALOG_SESSION_SECRET", "")
	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{
		Session:  SessionConfig{Secret: "x"},
		Database: DatabaseConfig{Driver: "sqlite"},
		State:    StateConfig{Store: "redis"},
	}
	assert.Error(t, cfg.Validate())

	cfg.State.RedisURL = "redis://localhost:6379/0"
	assert.NoError(t, cfg.Validate())

	cfg.Database.Driver = "mysql"
	assert.Error(t, cfg.Validate())
}
