package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inDir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	inDir(t, t.TempDir())
	t.Setenv("CLINICDIR_JWT_SECRET", "s3cret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Search.MinQueryLen)
	assert.Equal(t, 8, cfg.Search.DefaultLimit)
	assert.Equal(t, 20, cfg.Search.MaxLimit)
	assert.Equal(t, 250*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, "@daily", cfg.Outbox.CleanupSchedule)
}

func TestLoadConfigFileThenEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	yml := []byte(`
server:
  port: 9000
database:
  host: db.internal
  port: 5433
  name: directory
jwt:
  secret: from-file
search:
  default_limit: 5
outbox:
  poll_interval: 500ms
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), yml, 0o600))
	inDir(t, dir)
	t.Setenv("CLINICDIR_DB_HOST", "db.override")
	t.Setenv("CLINICDIR_PORT", "9100")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "db.override", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, 5, cfg.Search.DefaultLimit)
	assert.Equal(t, 500*time.Millisecond, cfg.Outbox.PollInterval)
	assert.Contains(t, cfg.Database.DSN(), "host=db.override port=5433")
	assert.Equal(t, "postgres://postgres:@db.override:5433/directory?sslmode=disable", cfg.Database.URL())
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	inDir(t, t.TempDir())
	t.Setenv("CLINICDIR_JWT_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}
