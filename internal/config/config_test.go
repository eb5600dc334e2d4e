package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FLOWMIND_JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8686", cfg.ListenAddr)
	assert.Equal(t, 30*24*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 90*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 100, cfg.AuthRateLimit)
	assert.Equal(t, 15*time.Minute, cfg.AuthRateWindow)
	assert.Equal(t, "ws://localhost:8000/rpc", cfg.SurrealDBURL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("FLOWMIND_JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FLOWMIND_JWT_SECRET", "test-secret")
	t.Setenv("FLOWMIND_LISTEN_ADDR", ":9090")
	t.Setenv("FLOWMIND_ACCESS_TOKEN_TTL", "1h")
	t.Setenv("FLOWMIND_AUTH_RATE_LIMIT", "10")
	t.Setenv("FLOWMIND_ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")
	t.Setenv("FLOWMIND_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 10, cfg.AuthRateLimit)
	assert.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowmind.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"listen_addr: \":7070\"\njwt_secret: file-secret\nauth_rate_limit: 42\nlog_level: warn\n",
	), 0644))

	t.Setenv("FLOWMIND_CONFIG", path)
	t.Setenv("FLOWMIND_JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.ListenAddr)
	assert.Equal(t, "file-secret", cfg.JWTSecret)
	assert.Equal(t, 42, cfg.AuthRateLimit)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	// untouched keys keep their defaults
	assert.Equal(t, 15*time.Minute, cfg.AuthRateWindow)
}

func TestEnvWinsOverYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowmind.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: \":7070\"\njwt_secret: file-secret\n"), 0644))

	t.Setenv("FLOWMIND_CONFIG", path)
	t.Setenv("FLOWMIND_LISTEN_ADDR", ":9090")
	t.Setenv("FLOWMIND_JWT_SECRET", "env-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "env-secret", cfg.JWTSecret)
}

func TestLoadBadConfigFile(t *testing.T) {
	t.Setenv("FLOWMIND_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}
