package config

import (
	"os"
	"strings"
)

// ServerConfig carries the HTTP facade's own knobs: listen port, JWT
// verification secrets, and CORS origin policy. Loaded once at startup from
// environment variables, matching the teacher's CONFIG_DIR/.env convention.
type ServerConfig struct {
	HTTPPort         string
	JWTSecret        string
	JWTSecretLegacy  string // fallback secret, checked if primary verification fails
	CORSAllowOrigins []string
}

// LoadServerConfig reads HTTP_PORT, JWT_SECRET, JWT_SECRET_LEGACY, and
// CORS_ALLOWED_ORIGINS from the environment.
func LoadServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTSecretLegacy:  os.Getenv("JWT_SECRET_LEGACY"),
		CORSAllowOrigins: parseOrigins(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}
}

func parseOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
