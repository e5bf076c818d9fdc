package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE", "sqlite")
	t.Setenv("ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("LOCK_TTL", "")
	t.Setenv("HEARTBEAT_INTERVAL", "")
	t.Setenv("HEARTBEAT_STALE_AFTER", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store)
	assert.Equal(t, "dev-secret-key", cfg.JWTSecret)
	assert.Equal(t, 5*time.Second, cfg.LockTTL)
	assert.Equal(t, time.Minute, cfg.HeartbeatInterval)
	assert.Equal(t, 5*time.Minute, cfg.HeartbeatStaleAfter)
}

func TestLoadConfig_InvalidStore(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE", "mongo")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfig_ProductionRequiresSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE", "postgres")
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("SOME_DURATION", "250ms")
	d, err := GetEnvDuration("SOME_DURATION", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)

	t.Setenv("SOME_DURATION", "soon")
	_, err = GetEnvDuration("SOME_DURATION", time.Second)
	require.Error(t, err)
}
