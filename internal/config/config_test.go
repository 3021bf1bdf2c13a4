package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://crm@localhost/crm")
	t.Setenv("PORT", "")
	t.Setenv("MATCH_CACHE_TTL", "")
	t.Setenv("TASK_SWEEP_INTERVAL", "")
	t.Setenv("STORE_IDLE_TTL", "")
	t.Setenv("CORS_ORIGINS", "https://painel.imob.com.br, https://imob.com.br")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Minute, cfg.MatchCacheTTL)
	assert.Equal(t, time.Minute, cfg.TaskSweepInterval)
	assert.Equal(t, 30*time.Minute, cfg.StoreIdleTTL)
	assert.Equal(t, []string{"https://painel.imob.com.br", "https://imob.com.br"}, cfg.CORSOrigins)
}

func TestLoadRequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()

	assert.Error(t, err)
}

func TestGetDuration(t *testing.T) {
	t.Setenv("X_DURATION", "90")
	assert.Equal(t, 90*time.Second, GetDuration("X_DURATION", time.Minute))

	t.Setenv("X_DURATION", "2m")
	assert.Equal(t, 2*time.Minute, GetDuration("X_DURATION", time.Minute))

	t.Setenv("X_DURATION", "nunca")
	assert.Equal(t, time.Minute, GetDuration("X_DURATION", time.Minute))
}

func TestGetIntAndBool(t *testing.T) {
	t.Setenv("X_INT", "abc")
	assert.Equal(t, 587, GetInt("X_INT", 587))
	t.Setenv("X_BOOL", "true")
	assert.True(t, GetBool("X_BOOL", false))
}
