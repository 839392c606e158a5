package config_test

import (
	"crypto/rand"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claritydental/walkout/internal/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "walkoutd.yaml", `
listen: ":9090"
log:
  level: debug
  format: json
store:
  backend: redis
  maskPii: true
  redis:
    address: "localhost:6379"
    db: 2
    ttl: "720h"
ruleEngineUrl: "http://rules.internal"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.True(t, cfg.Store.MaskPII)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, "http://rules.internal", cfg.RuleEngineURL)

	ttl, err := cfg.Store.Redis.ParsedTTL()
	require.NoError(t, err)
	assert.Equal(t, 720*time.Hour, ttl)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "walkoutd.json", `{
		"listen": ":7070",
		"store": {"backend": "sqlite", "sqlite": {"path": "/tmp/wo.db"}}
	}`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Listen)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "/tmp/wo.db", cfg.Store.SQLite.Path)
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	path := writeFile(t, "bad.yaml", "store:\n  backend: mongo\n")

	_, err := config.Load(path)
	assert.ErrorContains(t, err, "unknown store backend")
}

func TestLoad_RedisRequiresAddress(t *testing.T) {
	path := writeFile(t, "bad.yaml", "store:\n  backend: redis\n")

	_, err := config.Load(path)
	assert.ErrorContains(t, err, "requires an address")
}

func TestLoad_EncryptionKeyFromEnv(t *testing.T) {
	raw := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, raw)
	require.NoError(t, err)
	t.Setenv("WALKOUT_ENCRYPTION_KEY", base64.StdEncoding.EncodeToString(raw))

	cfg, err := config.Load("")
	require.NoError(t, err)

	key, err := cfg.DecodedEncryptionKey()
	require.NoError(t, err)
	assert.Equal(t, raw, key)
}

func TestLoad_RejectsShortEncryptionKey(t *testing.T) {
	t.Setenv("WALKOUT_ENCRYPTION_KEY", base64.StdEncoding.EncodeToString([]byte("short")))

	_, err := config.Load("")
	assert.ErrorContains(t, err, "32 bytes")
}

func TestDecodedFallbackKeys(t *testing.T) {
	raw := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, raw)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Store.FallbackKeys = []string{base64.StdEncoding.EncodeToString(raw)}

	keys, err := cfg.DecodedFallbackKeys()
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, raw, keys[0])
}
