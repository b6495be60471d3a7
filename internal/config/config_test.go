package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, DevJWTSecret, cfg.App.JWTSecret)
	assert.False(t, cfg.IsProduction())
}

func TestProductionRequiresExplicitJWTSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := New()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "rotated-prod-secret")
	cfg, err := New()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "rotated-prod-secret", cfg.App.JWTSecret)
}
