package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "ai-chat-studio", cfg.App.Name)
	assert.Equal(t, 30, cfg.Auth.SessionTTLDays)
	assert.False(t, cfg.Auth.BypassAuth)
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, "data", cfg.Database.DataDir)
	assert.Equal(t, "chat.message.archive", cfg.RabbitMQ.ArchiveQueue)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("BYPASS_AUTH", "true")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("APPROVED_DOMAINS", "example.com, other.org ,")
	t.Setenv("SESSION_TTL_DAYS", "7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.App.Port)
	assert.True(t, cfg.Auth.BypassAuth)
	assert.Equal(t, "gem-key", cfg.Providers.GeminiAPIKey)
	assert.Equal(t, []string{"example.com", "other.org"}, cfg.OAuth.ApprovedDomains)
	assert.Equal(t, 7, cfg.Auth.SessionTTLDays)
}

func TestPostgresURLPrecedence(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("DATABASE_URL", "postgres://from-database-url")
	t.Setenv("POSTGRESQL_URL", "postgres://from-postgresql-url")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://from-postgresql-url", cfg.Database.URL)
}

func TestDatabaseURLAloneApplies(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("DATABASE_URL", "postgres://from-database-url")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://from-database-url", cfg.Database.URL)
}

func TestInvalidEnvValuesKeepDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("APP_PORT", "not-a-number")
	t.Setenv("BYPASS_AUTH", "not-a-bool")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.False(t, cfg.Auth.BypassAuth)
}
