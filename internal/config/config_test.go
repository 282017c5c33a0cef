package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"STORAGE_DRIVER", "SESSION_DURATION", "SESSION_SWEEP_INTERVAL", "PROFILE_COOKIE",
		"SERVER_HOST", "SERVER_PORT", "DATABASE_URL", "DB_USER", "DB_PASSWORD", "DB_HOST", "DB_PORT", "DB_NAME", "DB_SSLMODE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 7*24*time.Hour, cfg.Session.Duration)
	assert.Equal(t, 5*time.Minute, cfg.Session.SweepInterval)
	assert.Equal(t, "sf_profile", cfg.Session.ProfileCookie)
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
	assert.Equal(t, "postgres://storefront:@localhost:5432/storefront?sslmode=disable", cfg.Database.URL)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORAGE_DRIVER", "Redis")
	t.Setenv("SESSION_DURATION", "48h")
	t.Setenv("SESSION_SWEEP_INTERVAL", "30")
	t.Setenv("SHOP_API_TIMEOUT", "3s")
	t.Setenv("DATABASE_URL", "postgres://x@db/y")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverRedis, cfg.Storage.Driver)
	assert.Equal(t, 48*time.Hour, cfg.Session.Duration)
	assert.Equal(t, 30*time.Second, cfg.Session.SweepInterval)
	assert.Equal(t, 3*time.Second, cfg.ShopAPI.Timeout)
	assert.Equal(t, "postgres://x@db/y", cfg.Database.URL)
	assert.Equal(t, "0.0.0.0:9090", cfg.Address())
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORAGE_DRIVER", "sqlite")

	_, err := Load()
	assert.ErrorContains(t, err, "STORAGE_DRIVER")
}

func TestLoadRejectsNonPositiveDuration(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SESSION_DURATION", "-1h")

	_, err := Load()
	assert.ErrorContains(t, err, "SESSION_DURATION")
}

// chdir switches into dir for the duration of the test (testing.T.Chdir needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
