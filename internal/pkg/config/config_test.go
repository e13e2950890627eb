package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	c, err := Parse([]byte("auth:\n  jwt_key: secret\n"))
	require.NoError(t, err)

	assert.Equal(t, DriverFile, c.Storage.Driver)
	assert.Equal(t, "./data", c.Storage.Dir)
	assert.Equal(t, DriverMemory, c.Auth.SessionDriver)
	assert.Equal(t, 12*time.Hour, c.Auth.TokenTTL)
	assert.Equal(t, "localhost:6379", c.Redis.Addr)
}

func TestParsePostgresRequiresCredentials(t *testing.T) {
	_, err := Parse([]byte("storage:\n  driver: postgres\nauth:\n  jwt_key: secret\n"))
	assert.EqualError(t, err, "missing required database configuration")
}

func TestParseRejectsUnknownDriver(t *testing.T) {
	_, err := Parse([]byte("storage:\n  driver: sqlite\nauth:\n  jwt_key: secret\n"))
	assert.Error(t, err)
}

func TestParseRequiresJWTKey(t *testing.T) {
	_, err := Parse([]byte("storage:\n  driver: memory\n"))
	assert.Error(t, err)
}

func TestNewConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
storage:
  driver: redis
redis:
  addr: redis:6379
auth:
  jwt_key: k
  token_ttl: 30m
  session_driver: redis
  hash_passwords: true
office:
  latitude: 35.7031509
  longitude: 139.7745439
  radius: 3000
allowed_origins:
  - http://localhost:3000
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	c, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, DriverRedis, c.Storage.Driver)
	assert.Equal(t, "redis:6379", c.Redis.Addr)
	assert.Equal(t, 30*time.Minute, c.Auth.TokenTTL)
	assert.True(t, c.Auth.HashPasswords)
	assert.Equal(t, 3000.0, c.Office.Radius)
	assert.Equal(t, []string{"http://localhost:3000"}, c.Origins)
}

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
