package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string) string {
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newAuthTestEcho(primary, legacy string) *echo.Echo {
	e := echo.New()
	e.Use(jwtAuth(primary, legacy))
	e.GET("/api/protected", func(c *echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	e.GET("/health", func(c *echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return e
}

func TestJWTAuthAllowsPublicPathsWithoutToken(t *testing.T) {
	e := newAuthTestEcho("primary-secret", "")
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	e := newAuthTestEcho("primary-secret", "")
	req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthAcceptsPrimarySecret(t *testing.T) {
	e := newAuthTestEcho("primary-secret", "legacy-secret")
	req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "primary-secret"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthFallsBackToLegacySecret(t *testing.T) {
	e := newAuthTestEcho("primary-secret", "legacy-secret")
	req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "legacy-secret"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthRejectsTokenSignedWithUnknownSecret(t *testing.T) {
	e := newAuthTestEcho("primary-secret", "legacy-secret")
	req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "wrong-secret"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthDisabledWhenNoPrimarySecretConfigured(t *testing.T) {
	e := newAuthTestEcho("", "")
	req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
