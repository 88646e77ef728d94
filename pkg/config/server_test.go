package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOriginsSplitsTrimsAndFiltersEmpty(t *testing.T) {
	got := parseOrigins(" https://a.example.com, https://b.example.com ,, ")
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, got)
}

func TestParseOriginsWildcard(t *testing.T) {
	got := parseOrigins("*")
	assert.Equal(t, []string{"*"}, got)
}

func TestLoadServerConfigDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_PORT", "JWT_SECRET", "JWT_SECRET_LEGACY", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg := LoadServerConfig()

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Empty(t, cfg.JWTSecret)
	assert.Empty(t, cfg.JWTSecretLegacy)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)
}

func TestLoadServerConfigReadsOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("JWT_SECRET", "primary")
	t.Setenv("JWT_SECRET_LEGACY", "legacy")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg := LoadServerConfig()

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "primary", cfg.JWTSecret)
	assert.Equal(t, "legacy", cfg.JWTSecretLegacy)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowOrigins)
}
