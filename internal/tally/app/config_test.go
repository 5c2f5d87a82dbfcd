package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	require.Equal(t, "tally.db", cfg.DatabaseFile)
	require.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	require.Equal(t, 300*time.Second, cfg.CacheTTL)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("TALLY_SECRET", "s3cret")
	t.Setenv("TALLY_DATABASE_FILE", "/var/lib/tally/tally.db")
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("SHUTDOWN_GRACE_PERIOD", "30")

	cfg := LoadConfig()

	require.Equal(t, "s3cret", cfg.TokenSecret)
	require.Equal(t, "/var/lib/tally/tally.db", cfg.DatabaseFile)
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, 2*time.Minute, cfg.CacheTTL)
	require.Equal(t, 30*time.Second, cfg.ShutdownGracePeriod)
}

func TestLoadConfigIgnoresGarbageNumbers(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("CACHE_TTL", "soon")

	cfg := LoadConfig()

	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 300*time.Second, cfg.CacheTTL)
}
