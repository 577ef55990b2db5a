package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "survey-builder", cfg.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, 2*time.Hour, cfg.Session.SnapshotTTL)
	assert.False(t, cfg.SnapshotsEnabled())
}

func TestLoadRequiresSessionSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")

	_, err := Load(context.Background())
	assert.Error(t, err)
}

func TestLoadRedisEnablesSnapshots(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("SESSION_IDLE_TIMEOUT", "5m")

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.True(t, cfg.SnapshotsEnabled())
	assert.Equal(t, 5*time.Minute, cfg.Session.IdleTimeout)
}

func TestLoadRejectsNonPositiveIdleTimeout(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("SESSION_IDLE_TIMEOUT", "0s")

	_, err := Load(context.Background())
	assert.Error(t, err)
}
