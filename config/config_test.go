package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tournament")
	t.Setenv("JWT_SECRET_KEY", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 8, cfg.TotalQualifiers)
	assert.Equal(t, 2, cfg.AutoQualifiersPerGroup)
	assert.Equal(t, 3, cfg.GroupMatchFormat)
	assert.Equal(t, 5, cfg.KnockoutMatchFormat)
	assert.Equal(t, 30*time.Second, cfg.ReconcileInterval)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.ArchiveEnabled())
	assert.Nil(t, cfg.BracketSeed)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("TOTAL_QUALIFIERS", "16")
	t.Setenv("RECONCILE_INTERVAL", "1m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("BRACKET_SEED", "42")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, 16, cfg.TotalQualifiers)
	assert.Equal(t, time.Minute, cfg.ReconcileInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	require.NotNil(t, cfg.BracketSeed)
	assert.Equal(t, int64(42), *cfg.BracketSeed)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "SERVER_PORT", "70000"},
		{"qualifiers not power of two", "TOTAL_QUALIFIERS", "6"},
		{"even knockout format", "KNOCKOUT_MATCH_FORMAT", "4"},
		{"bad interval", "RECONCILE_INTERVAL", "soon"},
		{"non numeric", "GROUP_MATCH_FORMAT", "three"},
		{"non numeric bracket seed", "BRACKET_SEED", "random"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET_KEY", "secret")
	_, err := Load()
	assert.Error(t, err)
}
