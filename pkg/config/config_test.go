package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	assert.Equal(t, "admin01", cfg.Bootstrap.AdminID)
	assert.Equal(t, "admin@example.com", cfg.Bootstrap.AdminEmail)
	assert.NotEmpty(t, cfg.Bootstrap.AdminPassword)

	assert.False(t, cfg.Grades.CacheEnabled)
	assert.Equal(t, 5*time.Minute, cfg.Grades.CacheTTL)
	assert.Equal(t, 5*time.Second, cfg.Redis.PingTimeout)
}

func TestLoadWithoutEnvFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BOOTSTRAP_ADMIN_ID", "root01")
	t.Setenv("GRADES_CACHE_TTL", "90s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "root01", cfg.Bootstrap.AdminID)
	assert.Equal(t, 90*time.Second, cfg.Grades.CacheTTL)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("nonsense", time.Minute))
	assert.Equal(t, 30*time.Second, parseDuration("30s", time.Minute))
}
