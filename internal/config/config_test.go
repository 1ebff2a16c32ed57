package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, float64(50), cfg.RateLimit)
	assert.Equal(t, 50, cfg.RateBurst)
	assert.Equal(t, []string{"hq"}, cfg.PermanentRooms)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("QUIZROOM_ADDR", ":9000")
	t.Setenv("QUIZROOM_LOG_LEVEL", "debug")
	t.Setenv("QUIZROOM_RATE_LIMIT", "10")
	t.Setenv("QUIZROOM_PERMANENT_ROOMS", "hq,lounge")
	t.Setenv("QUIZROOM_DENYLIST", "bad,worse")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, float64(10), cfg.RateLimit)
	assert.Equal(t, []string{"hq", "lounge"}, cfg.PermanentRooms)
	assert.Equal(t, []string{"bad", "worse"}, cfg.Denylist)
}
