package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
server:
  port: 9090
  mode: debug
database:
  driver: sqlite
  dsn: file:test.db
import:
  workers: 0
  lock_ttl: 3s
feed:
  type: redis
admin:
  user_ids:
    - 5d41402a-bc4b-4a76-b971-9d911017c592
platforms:
  steam:
    display_name: Steam
    enabled: true
  xbox:
    display_name: Xbox
    enabled: false
`

func writeConfig(t *testing.T, body string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.yaml"), []byte(body), 0o644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadConfig(t *testing.T) {
	writeConfig(t, testYAML)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 1, cfg.Import.Workers, "non-positive workers fall back to 1")
	assert.Equal(t, 3*time.Second, cfg.Import.LockTTL)
	assert.Equal(t, 5*time.Second, cfg.Import.LockWait)
	assert.Equal(t, "redis", cfg.Feed.Type)
	assert.Equal(t, "trophysync.imports", cfg.Feed.Topic)
	require.Contains(t, cfg.Platforms, "xbox")
	assert.False(t, cfg.Platforms["xbox"].Enabled)
	assert.Equal(t, "Steam", cfg.Platforms["steam"].DisplayName)
	assert.Equal(t, []string{"5d41402a-bc4b-4a76-b971-9d911017c592"}, cfg.Admin.UserIDs)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	writeConfig(t, testYAML)
	t.Setenv("DATABASE_DSN", "postgres://override")
	t.Setenv("RELAY_AUTH_TOKEN", "secret")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("ADMIN_USER_IDS", "a,b")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres://override", cfg.Database.DSN)
	assert.Equal(t, "secret", cfg.Relay.AuthToken)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Feed.Brokers)
	assert.Equal(t, []string{"a", "b"}, cfg.Admin.UserIDs)
}

func TestLoadConfigMissingFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, err = LoadConfig()
	require.Error(t, err)
}
