package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	echo "github.com/labstack/echo/v5"
)

var (
	errMissingAuthHeader       = errors.New("missing Authorization header")
	errMalformedAuthHeader     = errors.New("Authorization header must be a Bearer token")
	errUnexpectedSigningMethod = errors.New("unexpected JWT signing method")
)

// publicPaths never require a bearer token.
var publicPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// jwtAuth builds bearer-token auth middleware. A token is accepted if it
// verifies against the primary secret; failing that, the legacy secret is
// tried before the request is rejected. Generalizes the gateway's
// Supabase-then-legacy verification chain into a primary/legacy pair.
func jwtAuth(primarySecret, legacySecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			if publicPaths[c.Request().URL.Path] {
				return next(c)
			}
			if primarySecret == "" {
				// No secret configured: auth is disabled (local/dev mode).
				return next(c)
			}

			token, err := bearerToken(c)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			if verifyToken(token, primarySecret) {
				return next(c)
			}
			if legacySecret != "" && verifyToken(token, legacySecret) {
				return next(c)
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}
	}
}

func bearerToken(c *echo.Context) (string, error) {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return "", errMissingAuthHeader
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", errMalformedAuthHeader
	}
	return strings.TrimPrefix(header, prefix), nil
}

func verifyToken(tokenString, secret string) bool {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnexpectedSigningMethod
		}
		return []byte(secret), nil
	})
	return err == nil && token.Valid
}

// extractAuthor extracts the acting identity from oauth2-proxy-style
// forwarded headers, falling back to a generic client label.
func extractAuthor(c *echo.Context) string {
	if user := c.Request().Header.Get("X-Forwarded-User"); user != "" {
		return user
	}
	if email := c.Request().Header.Get("X-Forwarded-Email"); email != "" {
		return email
	}
	return "api-client"
}
